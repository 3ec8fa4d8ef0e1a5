package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// supabaseInvoice maps the invoices table.
type supabaseInvoice struct {
	ID              string  `json:"id"`
	VendorName      string  `json:"vendor_name"`
	InvoiceDate     string  `json:"invoice_date"`
	TotalAmount     float64 `json:"total_amount"`
	TransactionType string  `json:"transaction_type"`
	CreatedAt       string  `json:"created_at"`
}

// supabaseInvoiceItem maps the invoice_items table.
type supabaseInvoiceItem struct {
	ID         string  `json:"id"`
	InvoiceID  string  `json:"invoice_id"`
	ItemName   string  `json:"item_name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// QueryRecords fetches ledger records ordered by date descending,
// optionally bounded below by since. Implements port.LedgerQuery.
func (c *Client) QueryRecords(ctx context.Context, since *time.Time) ([]domain.LedgerRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.QueryRecords")
	defer span.End()

	path := "invoices?order=invoice_date.desc"
	if since != nil {
		path += "&invoice_date=gte." + since.Format("2006-01-02")
		span.SetAttributes(attribute.String("ledger.since", since.Format("2006-01-02")))
	}

	var records []domain.LedgerRecord

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				records = []domain.LedgerRecord{}
				return nil
			}

			var rows []supabaseInvoice
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode invoices: %w", err)
			}

			records = make([]domain.LedgerRecord, 0, len(rows))
			for _, r := range rows {
				created, _ := time.Parse(time.RFC3339, r.CreatedAt)
				records = append(records, domain.LedgerRecord{
					ID:        r.ID,
					Vendor:    r.VendorName,
					Date:      r.InvoiceDate,
					Amount:    r.TotalAmount,
					Type:      domain.ParseTransactionType(r.TransactionType),
					CreatedAt: created,
				})
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/invoices", Err: err}
	}
	return records, nil
}

// QueryLineItems fetches the line items belonging to the given records.
func (c *Client) QueryLineItems(ctx context.Context, recordIDs []string) ([]domain.LineItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.QueryLineItems")
	defer span.End()
	span.SetAttributes(attribute.Int("ledger.record_count", len(recordIDs)))

	if len(recordIDs) == 0 {
		return []domain.LineItem{}, nil
	}

	path := fmt.Sprintf("invoice_items?invoice_id=in.(%s)", strings.Join(recordIDs, ","))

	var items []domain.LineItem

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				items = []domain.LineItem{}
				return nil
			}

			var rows []supabaseInvoiceItem
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode invoice items: %w", err)
			}

			items = make([]domain.LineItem, 0, len(rows))
			for _, r := range rows {
				items = append(items, domain.LineItem{
					ID:         r.ID,
					RecordID:   r.InvoiceID,
					Name:       r.ItemName,
					Quantity:   r.Quantity,
					UnitPrice:  r.UnitPrice,
					TotalPrice: r.TotalPrice,
				})
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/invoice_items", Err: err}
	}
	return items, nil
}

// InsertRecord persists a record with its line items. Implements
// port.LedgerWriter. IDs are assigned by the caller before insertion.
func (c *Client) InsertRecord(ctx context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertRecord")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.record_id", rec.ID))

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			_, err := c.doPost(ctx, "invoices", map[string]any{
				"id":               rec.ID,
				"vendor_name":      rec.Vendor,
				"invoice_date":     rec.Date,
				"total_amount":     rec.Amount,
				"transaction_type": string(rec.Type),
				"created_at":       rec.CreatedAt.Format(time.RFC3339),
			})
			if err != nil {
				return err
			}

			for _, item := range rec.Items {
				_, err := c.doPost(ctx, "invoice_items", map[string]any{
					"id":          item.ID,
					"invoice_id":  rec.ID,
					"item_name":   item.Name,
					"quantity":    item.Quantity,
					"unit_price":  item.UnitPrice,
					"total_price": item.TotalPrice,
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/invoices", Err: err}
	}
	return rec, nil
}

// DeleteRecord removes a record and its line items.
func (c *Client) DeleteRecord(ctx context.Context, recordID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteRecord")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.record_id", recordID))

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			// items first: the record owns them
			if err := c.doDelete(ctx, fmt.Sprintf("invoice_items?invoice_id=eq.%s", recordID)); err != nil {
				return err
			}
			return c.doDelete(ctx, fmt.Sprintf("invoices?id=eq.%s", recordID))
		})
	})

	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/invoices", Err: err}
	}
	return nil
}
