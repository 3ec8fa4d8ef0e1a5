// Package sqlite provides an embedded implementation of the ledger and
// budget ports, backed by modernc.org/sqlite. Useful for local runs and
// as the fallback when Supabase is not configured.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prasetya/spendsight/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("sqlite")

// Store implements port.LedgerQuery, port.LedgerWriter and
// port.BudgetStore against a local sqlite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens (creating if needed) the database at dbPath and runs
// pending migrations.
func NewStore(dbPath string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite store ready", zap.String("path", dbPath))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// QueryRecords returns ledger records ordered by date descending,
// optionally bounded below by since.
func (s *Store) QueryRecords(ctx context.Context, since *time.Time) ([]domain.LedgerRecord, error) {
	ctx, span := tracer.Start(ctx, "SQLite.QueryRecords")
	defer span.End()

	query := `SELECT id, vendor_name, invoice_date, total_amount, transaction_type, created_at
	          FROM invoices`
	var args []any
	if since != nil {
		query += ` WHERE invoice_date >= ?`
		args = append(args, since.Format("2006-01-02"))
		span.SetAttributes(attribute.String("ledger.since", since.Format("2006-01-02")))
	}
	query += ` ORDER BY invoice_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/invoices", Err: err}
	}
	defer rows.Close()

	records := []domain.LedgerRecord{}
	for rows.Next() {
		var rec domain.LedgerRecord
		var txType, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Vendor, &rec.Date, &rec.Amount, &txType, &createdAt); err != nil {
			return nil, &domain.ErrExternalService{Service: "sqlite/invoices", Err: err}
		}
		rec.Type = domain.ParseTransactionType(txType)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/invoices", Err: err}
	}
	return records, nil
}

// QueryLineItems returns the line items belonging to the given records.
func (s *Store) QueryLineItems(ctx context.Context, recordIDs []string) ([]domain.LineItem, error) {
	ctx, span := tracer.Start(ctx, "SQLite.QueryLineItems")
	defer span.End()
	span.SetAttributes(attribute.Int("ledger.record_count", len(recordIDs)))

	if len(recordIDs) == 0 {
		return []domain.LineItem{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(recordIDs)), ",")
	query := fmt.Sprintf(`SELECT id, invoice_id, item_name, quantity, unit_price, total_price
	          FROM invoice_items WHERE invoice_id IN (%s)`, placeholders)
	args := make([]any, len(recordIDs))
	for i, id := range recordIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/invoice_items", Err: err}
	}
	defer rows.Close()

	items := []domain.LineItem{}
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.RecordID, &item.Name, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, &domain.ErrExternalService{Service: "sqlite/invoice_items", Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/invoice_items", Err: err}
	}
	return items, nil
}

// InsertRecord persists a record and its line items in one transaction.
func (s *Store) InsertRecord(ctx context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error) {
	ctx, span := tracer.Start(ctx, "SQLite.InsertRecord")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.record_id", rec.ID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/invoices", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoices (id, vendor_name, invoice_date, total_amount, transaction_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Vendor, rec.Date, rec.Amount, string(rec.Type), rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/invoices", Err: err}
	}

	for _, item := range rec.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO invoice_items (id, invoice_id, item_name, quantity, unit_price, total_price)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, rec.ID, item.Name, item.Quantity, item.UnitPrice, item.TotalPrice)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "sqlite/invoice_items", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/invoices", Err: err}
	}

	s.logger.Debug("record saved",
		zap.String("record_id", rec.ID),
		zap.String("vendor", rec.Vendor),
		zap.Float64("amount", rec.Amount),
		zap.Int("items", len(rec.Items)),
	)
	return rec, nil
}

// DeleteRecord removes a record; the ON DELETE CASCADE constraint
// removes its line items with it.
func (s *Store) DeleteRecord(ctx context.Context, recordID string) error {
	ctx, span := tracer.Start(ctx, "SQLite.DeleteRecord")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.record_id", recordID))

	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, recordID)
	if err != nil {
		return &domain.ErrExternalService{Service: "sqlite/invoices", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "record", ID: recordID}
	}
	return nil
}

// GetMonthlyLimit returns the configured monthly limit for a user, or
// nil when none is set.
func (s *Store) GetMonthlyLimit(ctx context.Context, userID string) (*float64, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetMonthlyLimit")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var limit float64
	err := s.db.QueryRowContext(ctx,
		`SELECT monthly_limit FROM spending_limits WHERE user_id = ?`, userID).Scan(&limit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "sqlite/spending_limits", Err: err}
	}
	return &limit, nil
}

// SetMonthlyLimit creates or replaces the monthly limit for a user.
func (s *Store) SetMonthlyLimit(ctx context.Context, userID string, limit float64) error {
	ctx, span := tracer.Start(ctx, "SQLite.SetMonthlyLimit")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spending_limits (user_id, monthly_limit) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET monthly_limit = excluded.monthly_limit`,
		userID, limit)
	if err != nil {
		return &domain.ErrExternalService{Service: "sqlite/spending_limits", Err: err}
	}
	return nil
}
