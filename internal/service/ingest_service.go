package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prasetya/spendsight/internal/currency"
	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/infra/observability"
	"github.com/prasetya/spendsight/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxGenerateCount = 200

// IngestService validates and persists incoming ledger records. Raw
// amount strings are normalized here so the stores only ever see clean
// float values.
type IngestService struct {
	writer     port.LedgerWriter
	normalizer *currency.Normalizer
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func NewIngestService(writer port.LedgerWriter, normalizer *currency.Normalizer, metrics *observability.Metrics, logger *zap.Logger) *IngestService {
	return &IngestService{
		writer:     writer,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger,
	}
}

// Ingest normalizes a raw extraction result and stores it.
func (s *IngestService) Ingest(ctx context.Context, req *domain.RecordIngestRequest) (*domain.LedgerRecord, error) {
	ctx, span := tracer.Start(ctx, "IngestService.Ingest")
	defer span.End()

	if req.Vendor == "" {
		return nil, &domain.ErrValidation{Field: "vendor", Message: "required"}
	}
	if req.Amount == "" {
		return nil, &domain.ErrValidation{Field: "amount", Message: "required"}
	}

	txType := domain.ParseTransactionType(req.Type)
	if req.Type == "" {
		txType = domain.DetectTransactionType(req.Vendor)
	}

	// Dates we can parse are stored in ISO form; anything else is kept
	// verbatim so the analysis layer can report it as undated.
	date := req.Date
	if parsed, ok := domain.ParseRecordDate(req.Date); ok {
		date = parsed.Format("2006-01-02")
	}

	rec := &domain.LedgerRecord{
		ID:        uuid.New().String(),
		Vendor:    req.Vendor,
		Date:      date,
		Amount:    s.normalizer.Normalize(req.Amount),
		Type:      txType,
		CreatedAt: time.Now().UTC(),
	}

	for _, item := range req.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		rec.Items = append(rec.Items, domain.LineItem{
			ID:         uuid.New().String(),
			RecordID:   rec.ID,
			Name:       item.Name,
			Quantity:   qty,
			UnitPrice:  s.normalizer.Normalize(item.UnitPrice),
			TotalPrice: s.normalizer.Normalize(item.TotalPrice),
		})
	}

	stored, err := s.writer.InsertRecord(ctx, rec)
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		return nil, err
	}

	s.metrics.IncrRecordIngested()
	s.logger.Info("record ingested",
		zap.String("record_id", stored.ID),
		zap.String("vendor", stored.Vendor),
		zap.Float64("amount", stored.Amount),
		zap.Int("items", len(stored.Items)),
	)
	return stored, nil
}

// Delete removes a record and its line items.
func (s *IngestService) Delete(ctx context.Context, recordID string) error {
	ctx, span := tracer.Start(ctx, "IngestService.Delete")
	defer span.End()

	if recordID == "" {
		return &domain.ErrValidation{Field: "recordId", Message: "required"}
	}
	return s.writer.DeleteRecord(ctx, recordID)
}

// GenerateRecords inserts synthetic ledger records for local testing of
// the analysis endpoints. Amounts and dates are randomized across the
// requested window.
func (s *IngestService) GenerateRecords(ctx context.Context, req *domain.GenerateRecordsRequest) (*domain.GenerateRecordsResponse, error) {
	ctx, span := tracer.Start(ctx, "IngestService.GenerateRecords")
	defer span.End()

	if req.Count <= 0 || req.Count > maxGenerateCount {
		return nil, &domain.ErrValidation{Field: "count", Message: fmt.Sprintf("must be between 1 and %d", maxGenerateCount)}
	}
	weeksBack := req.WeeksBack
	if weeksBack <= 0 {
		weeksBack = 4
	}
	daysSpan := weeksBack * 7

	vendors := []struct {
		Name  string
		Items []string
	}{
		{"Indomaret", []string{"Indomie Goreng", "Teh Botol", "Aqua 600ml", "Roti Tawar"}},
		{"Alfamart", []string{"Beras 5kg", "Minyak Goreng", "Gula Pasir"}},
		{"Shopee", []string{"Phone Case", "USB Cable", "Power Bank"}},
		{"Tokopedia", []string{"Keyboard", "Mouse Wireless"}},
		{"Warung Makan Sederhana", []string{"Nasi Goreng", "Ayam Bakar", "Es Teh"}},
		{"Bank Mandiri", nil},
		{"Grab", nil},
		{"Kopi Kenangan", []string{"Kopi Susu", "Americano"}},
	}

	now := time.Now().UTC()
	generated := 0
	var total float64

	for i := 0; i < req.Count; i++ {
		v := vendors[rand.Intn(len(vendors))]
		amount := float64(rand.Intn(1_990_000)+10_000) // Rp 10K to Rp 2M
		date := now.AddDate(0, 0, -rand.Intn(daysSpan))

		rec := &domain.LedgerRecord{
			ID:        uuid.New().String(),
			Vendor:    v.Name,
			Date:      date.Format("2006-01-02"),
			Amount:    amount,
			Type:      domain.DetectTransactionType(v.Name),
			CreatedAt: now,
		}

		if len(v.Items) > 0 {
			picks := rand.Intn(len(v.Items)) + 1
			share := amount / float64(picks)
			for j := 0; j < picks; j++ {
				qty := float64(rand.Intn(3) + 1)
				rec.Items = append(rec.Items, domain.LineItem{
					ID:         uuid.New().String(),
					RecordID:   rec.ID,
					Name:       v.Items[j],
					Quantity:   qty,
					UnitPrice:  share / qty,
					TotalPrice: share,
				})
			}
		}

		if _, err := s.writer.InsertRecord(ctx, rec); err != nil {
			s.logger.Warn("DEV: failed to insert generated record", zap.Int("index", i), zap.Error(err))
			continue
		}
		generated++
		total += amount
		s.metrics.IncrRecordIngested()
	}

	s.logger.Info("DEV: records generated",
		zap.Int("generated", generated),
		zap.Float64("total", total),
	)

	return &domain.GenerateRecordsResponse{
		Success:   true,
		Generated: generated,
		Total:     total,
		Message:   fmt.Sprintf("%d records generated", generated),
	}, nil
}
