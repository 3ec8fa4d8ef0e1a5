package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prasetya/spendsight/internal/currency"
	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/handler"
	"github.com/prasetya/spendsight/internal/infra/cache"
	"github.com/prasetya/spendsight/internal/infra/observability"
	"github.com/prasetya/spendsight/internal/infra/resilience"
	"github.com/prasetya/spendsight/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- In-memory stores ---

type fakeStore struct {
	records []domain.LedgerRecord
	items   []domain.LineItem
	limits  map[string]float64
}

func (f *fakeStore) QueryRecords(_ context.Context, _ *time.Time) ([]domain.LedgerRecord, error) {
	return f.records, nil
}

func (f *fakeStore) QueryLineItems(_ context.Context, _ []string) ([]domain.LineItem, error) {
	return f.items, nil
}

func (f *fakeStore) InsertRecord(_ context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error) {
	f.records = append(f.records, *rec)
	return rec, nil
}

func (f *fakeStore) DeleteRecord(_ context.Context, recordID string) error {
	for i, r := range f.records {
		if r.ID == recordID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "record", ID: recordID}
}

func (f *fakeStore) GetMonthlyLimit(_ context.Context, userID string) (*float64, error) {
	if v, ok := f.limits[userID]; ok {
		return &v, nil
	}
	return nil, nil
}

func (f *fakeStore) SetMonthlyLimit(_ context.Context, userID string, limit float64) error {
	if f.limits == nil {
		f.limits = make(map[string]float64)
	}
	f.limits[userID] = limit
	return nil
}

func newTestRouter(t *testing.T, store *fakeStore, authEnabled bool) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	analyticsSvc := service.NewAnalyticsService(
		store, store,
		cache.New[[]domain.LineItem](time.Minute),
		metrics,
		resilience.NewBulkhead(4),
		logger,
	)
	ingestSvc := service.NewIngestService(
		store,
		currency.NewNormalizer(logger, func(_, reason string) {
			metrics.IncrAmountRejected(reason)
		}),
		metrics,
		logger,
	)
	hash, err := bcrypt.GenerateFromPassword([]byte("test-api-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	tokenSvc := service.NewTokenService([]byte("test-secret"), string(hash), 15*time.Minute, logger)

	return handler.NewRouter(analyticsSvc, ingestSvc, tokenSvc, store, metrics, authEnabled, logger)
}

func doRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, false)

	for _, path := range []string{"/healthz", "/readyz", "/ping", "/metrics"} {
		rec := doRequest(router, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestComprehensiveAnalysisEndpoint(t *testing.T) {
	date := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	store := &fakeStore{
		records: []domain.LedgerRecord{
			{ID: "r1", Vendor: "Indomaret", Date: date, Amount: 59_385, Type: domain.TypeRetail},
		},
	}
	router := newTestRouter(t, store, false)

	rec := doRequest(router, http.MethodGet, "/v1/analysis?weeks=4", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report domain.AnalysisReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Period != "last_4_weeks" {
		t.Errorf("expected last_4_weeks, got %s", report.Period)
	}
	if report.Summary.TotalSpent != 59_385 {
		t.Errorf("expected total 59385, got %f", report.Summary.TotalSpent)
	}
	if report.Budget == nil || report.Budget.HasLimit {
		t.Errorf("expected budget status without limit, got %+v", report.Budget)
	}
}

func TestAnalysisRejectsBadWeeks(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, false)

	rec := doRequest(router, http.MethodGet, "/v1/analysis?weeks=soon", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTrendsRejectsBadGranularity(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, false)

	rec := doRequest(router, http.MethodGet, "/v1/analysis/trends?granularity=hourly", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRecordLifecycle(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(t, store, false)

	rec := doRequest(router, http.MethodPost, "/v1/records", domain.RecordIngestRequest{
		Vendor: "Alfamart",
		Date:   "15/01/2024",
		Amount: "Rp136.000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created domain.LedgerRecord
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Amount != 136_000 {
		t.Errorf("expected normalized amount 136000, got %f", created.Amount)
	}

	rec = doRequest(router, http.MethodGet, "/v1/records?weeks=0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listing struct {
		Records []domain.LedgerRecord `json:"records"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(listing.Records))
	}

	rec = doRequest(router, http.MethodDelete, "/v1/records/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodDelete, "/v1/records/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, false)

	rec := doRequest(router, http.MethodPut, "/v1/users/u1/budget/limit", domain.BudgetLimitRequest{MonthlyLimit: 2_000_000})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodGet, "/v1/users/u1/budget/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status domain.ProjectedBudgetStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.HasLimit || status.Limit != 2_000_000 {
		t.Errorf("expected stored limit, got %+v", status)
	}

	rec = doRequest(router, http.MethodPut, "/v1/users/u1/budget/limit", domain.BudgetLimitRequest{MonthlyLimit: -5})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative limit, got %d", rec.Code)
	}
}

func TestIngestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, false)

	doRequest(router, http.MethodPost, "/v1/records", domain.RecordIngestRequest{Vendor: "Warung", Amount: "10.000"})

	rec := doRequest(router, http.MethodGet, "/v1/metrics/ingest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snapshot domain.IngestMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.RecordsIngested != 1 {
		t.Errorf("expected 1 ingested, got %d", snapshot.RecordsIngested)
	}
}

func TestGenerateRecordsEndpoint(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(t, store, false)

	rec := doRequest(router, http.MethodPost, "/v1/dev/generate-records", domain.GenerateRecordsRequest{Count: 5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.records) != 5 {
		t.Errorf("expected 5 stored records, got %d", len(store.records))
	}
}

func TestAuthProtection(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, true)

	rec := doRequest(router, http.MethodGet, "/v1/analysis", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodPost, "/v1/auth/token", domain.TokenRequest{APIKey: "test-api-key"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 issuing token, got %d: %s", rec.Code, rec.Body.String())
	}
	var token domain.TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&token); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/analysis", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}

	rec = doRequest(router, http.MethodPost, "/v1/auth/token", domain.TokenRequest{APIKey: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad api key, got %d", rec.Code)
	}
}
