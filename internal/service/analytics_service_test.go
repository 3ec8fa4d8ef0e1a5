package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/infra/cache"
	"github.com/prasetya/spendsight/internal/infra/observability"
	"github.com/prasetya/spendsight/internal/infra/resilience"
	"github.com/prasetya/spendsight/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockLedger struct {
	records []domain.LedgerRecord
	items   []domain.LineItem
	err     error

	itemQueries int
	inserted    []*domain.LedgerRecord
	deleted     []string
}

func (m *mockLedger) QueryRecords(_ context.Context, _ *time.Time) ([]domain.LedgerRecord, error) {
	return m.records, m.err
}

func (m *mockLedger) QueryLineItems(_ context.Context, _ []string) ([]domain.LineItem, error) {
	m.itemQueries++
	return m.items, m.err
}

func (m *mockLedger) InsertRecord(_ context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inserted = append(m.inserted, rec)
	return rec, nil
}

func (m *mockLedger) DeleteRecord(_ context.Context, recordID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, recordID)
	return nil
}

type mockBudgets struct {
	limit *float64
	err   error

	setUser  string
	setLimit float64
}

func (m *mockBudgets) GetMonthlyLimit(_ context.Context, _ string) (*float64, error) {
	return m.limit, m.err
}

func (m *mockBudgets) SetMonthlyLimit(_ context.Context, userID string, limit float64) error {
	if m.err != nil {
		return m.err
	}
	m.setUser = userID
	m.setLimit = limit
	return nil
}

func newAnalytics(ledger *mockLedger, budgets *mockBudgets) *service.AnalyticsService {
	return service.NewAnalyticsService(
		ledger,
		budgets,
		cache.New[[]domain.LineItem](time.Minute),
		observability.NewMetrics(),
		resilience.NewBulkhead(4),
		zap.NewNop(),
	)
}

func daysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format("2006-01-02")
}

// --- Tests ---

func TestComprehensiveAnalysis(t *testing.T) {
	limit := 10_000_000.0
	ledger := &mockLedger{
		records: []domain.LedgerRecord{
			{ID: "r1", Vendor: "Indomaret", Date: daysAgo(1), Amount: 150_000, Type: domain.TypeRetail},
			{ID: "r2", Vendor: "Shopee", Date: daysAgo(8), Amount: 450_000, Type: domain.TypeECommerce},
			{ID: "r3", Vendor: "Indomaret", Date: daysAgo(16), Amount: 200_000, Type: domain.TypeRetail},
		},
		items: []domain.LineItem{
			{ID: "i1", RecordID: "r1", Name: "Indomie Goreng", Quantity: 5, TotalPrice: 17_500},
		},
	}
	svc := newAnalytics(ledger, &mockBudgets{limit: &limit})

	report, err := svc.ComprehensiveAnalysis(context.Background(), "default", 4)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.Period != "last_4_weeks" {
		t.Errorf("expected period last_4_weeks, got %s", report.Period)
	}
	if report.Granularity.Mode != domain.GranularityWeekly {
		t.Errorf("expected weekly granularity, got %s", report.Granularity.Mode)
	}
	if report.Summary.TotalSpent != 800_000 {
		t.Errorf("expected total 800000, got %f", report.Summary.TotalSpent)
	}
	if report.Summary.TransactionCount != 3 {
		t.Errorf("expected 3 transactions, got %d", report.Summary.TransactionCount)
	}
	if len(report.Buckets) == 0 {
		t.Error("expected buckets")
	}
	if report.Budget == nil || !report.Budget.HasLimit {
		t.Fatal("expected budget status with limit")
	}
	if report.Budget.Tier != domain.TierGoodStanding {
		t.Errorf("expected good_standing, got %s", report.Budget.Tier)
	}
	if len(report.TopSpending.ByVendor) == 0 || report.TopSpending.ByVendor[0].Name != "Indomaret" {
		t.Errorf("expected Indomaret as top vendor, got %+v", report.TopSpending.ByVendor)
	}
	if report.TopSpending.HighestSingleTransaction == nil || report.TopSpending.HighestSingleTransaction.Amount != 450_000 {
		t.Errorf("expected highest single 450000, got %+v", report.TopSpending.HighestSingleTransaction)
	}
	if len(report.ItemAnalysis.TopItems) != 1 || report.ItemAnalysis.TopItems[0].Name != "Indomie Goreng" {
		t.Errorf("expected item ranking, got %+v", report.ItemAnalysis.TopItems)
	}
	if len(report.Insights) == 0 {
		t.Error("expected insights")
	}
}

func TestComprehensiveAnalysisStoreError(t *testing.T) {
	ledger := &mockLedger{err: errors.New("connection refused")}
	svc := newAnalytics(ledger, &mockBudgets{})

	if _, err := svc.ComprehensiveAnalysis(context.Background(), "default", 4); err == nil {
		t.Fatal("expected error")
	}
}

func TestComprehensiveAnalysisCachesLineItems(t *testing.T) {
	ledger := &mockLedger{
		records: []domain.LedgerRecord{
			{ID: "r1", Vendor: "Indomaret", Date: daysAgo(1), Amount: 50_000, Type: domain.TypeRetail},
		},
	}
	svc := newAnalytics(ledger, &mockBudgets{})

	for i := 0; i < 2; i++ {
		if _, err := svc.ComprehensiveAnalysis(context.Background(), "default", 4); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if ledger.itemQueries != 1 {
		t.Errorf("expected 1 line-item query, got %d", ledger.itemQueries)
	}
}

func TestSummaryCapsTopVendors(t *testing.T) {
	ledger := &mockLedger{}
	for _, v := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		ledger.records = append(ledger.records, domain.LedgerRecord{
			ID: "r" + v, Vendor: v, Date: daysAgo(1), Amount: 10_000, Type: domain.TypeRetail,
		})
	}
	svc := newAnalytics(ledger, &mockBudgets{})

	report, err := svc.Summary(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Period != "all_time" {
		t.Errorf("expected all_time, got %s", report.Period)
	}
	if len(report.TopVendors) != 5 {
		t.Errorf("expected 5 vendors, got %d", len(report.TopVendors))
	}
}

func TestTrendsInvalidGranularity(t *testing.T) {
	svc := newAnalytics(&mockLedger{}, &mockBudgets{})

	_, err := svc.Trends(context.Background(), 4, "hourly")
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTrendsForcedGranularity(t *testing.T) {
	ledger := &mockLedger{
		records: []domain.LedgerRecord{
			{ID: "r1", Vendor: "Grab", Date: daysAgo(1), Amount: 25_000, Type: domain.TypeRetail},
			{ID: "r2", Vendor: "Grab", Date: daysAgo(20), Amount: 30_000, Type: domain.TypeRetail},
		},
	}
	svc := newAnalytics(ledger, &mockBudgets{})

	report, err := svc.Trends(context.Background(), 4, "daily")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Granularity.Mode != domain.GranularityDaily {
		t.Errorf("expected forced daily mode, got %s", report.Granularity.Mode)
	}
	if len(report.Buckets) != 2 {
		t.Errorf("expected 2 daily buckets, got %d", len(report.Buckets))
	}
}

func TestBudgetStatusProjection(t *testing.T) {
	limit := 1_000_000.0
	ledger := &mockLedger{
		records: []domain.LedgerRecord{
			{ID: "r1", Vendor: "Tokopedia", Date: daysAgo(0), Amount: 500_000, Type: domain.TypeECommerce},
		},
	}
	svc := newAnalytics(ledger, &mockBudgets{limit: &limit})

	status, err := svc.BudgetStatus(context.Background(), "default", 600_000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !status.WouldExceed {
		t.Error("expected projection to exceed the limit")
	}
	if status.Spent != 500_000 {
		t.Errorf("expected spent 500000, got %f", status.Spent)
	}
	if status.ProjectedTotal != 1_100_000 {
		t.Errorf("expected projected 1100000, got %f", status.ProjectedTotal)
	}
}

func TestBudgetStatusNegativePending(t *testing.T) {
	svc := newAnalytics(&mockLedger{}, &mockBudgets{})

	_, err := svc.BudgetStatus(context.Background(), "default", -1)
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetLimit(t *testing.T) {
	budgets := &mockBudgets{}
	svc := newAnalytics(&mockLedger{}, budgets)

	if err := svc.SetLimit(context.Background(), "u1", 0); err == nil {
		t.Fatal("expected validation error for zero limit")
	}
	if err := svc.SetLimit(context.Background(), "u1", 2_500_000); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if budgets.setUser != "u1" || budgets.setLimit != 2_500_000 {
		t.Errorf("limit not stored: %s %f", budgets.setUser, budgets.setLimit)
	}
}
