// Package service implements the business logic of the analytics engine,
// orchestrating the ledger stores and the pure analysis functions.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prasetya/spendsight/internal/analytics"
	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/infra/observability"
	"github.com/prasetya/spendsight/internal/infra/resilience"
	"github.com/prasetya/spendsight/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

const topVendorsSummaryCap = 5

// AnalyticsService answers analysis queries over the stored ledger.
// Every report is computed fresh from the records; only line-item
// lookups are cached.
type AnalyticsService struct {
	ledger   port.LedgerQuery
	budgets  port.BudgetStore
	items    port.Cache[[]domain.LineItem]
	metrics  *observability.Metrics
	bulkhead *resilience.Bulkhead
	logger   *zap.Logger
}

func NewAnalyticsService(
	ledger port.LedgerQuery,
	budgets port.BudgetStore,
	items port.Cache[[]domain.LineItem],
	metrics *observability.Metrics,
	bulkhead *resilience.Bulkhead,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		ledger:   ledger,
		budgets:  budgets,
		items:    items,
		metrics:  metrics,
		bulkhead: bulkhead,
		logger:   logger,
	}
}

// window translates a weeks-back parameter into a query lower bound and
// a period label. weeksBack <= 0 means the full ledger.
func window(weeksBack int) (*time.Time, string) {
	if weeksBack <= 0 {
		return nil, "all_time"
	}
	since := time.Now().UTC().AddDate(0, 0, -weeksBack*7)
	return &since, fmt.Sprintf("last_%d_weeks", weeksBack)
}

// attachItems loads the line items for the given records, from cache
// when possible, and attaches them to their owning record.
func (s *AnalyticsService) attachItems(ctx context.Context, records []domain.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	key := "items:" + strings.Join(ids, ",")

	items, ok := s.items.Get(key)
	if ok {
		s.metrics.IncrCacheHit("items")
	} else {
		s.metrics.IncrCacheMiss("items")
		var err error
		items, err = s.ledger.QueryLineItems(ctx, ids)
		if err != nil {
			s.metrics.IncrStoreError("ledger")
			return err
		}
		s.items.Set(key, items)
	}

	byRecord := make(map[string][]domain.LineItem, len(records))
	for _, it := range items {
		byRecord[it.RecordID] = append(byRecord[it.RecordID], it)
	}
	for i := range records {
		records[i].Items = byRecord[records[i].ID]
	}
	return nil
}

// ComprehensiveAnalysis produces the full report: granularity selection,
// time buckets, trend, rankings, budget status, and narrative insights.
func (s *AnalyticsService) ComprehensiveAnalysis(ctx context.Context, userID string, weeksBack int) (*domain.AnalysisReport, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.ComprehensiveAnalysis")
	defer span.End()

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "analysis"}
	}
	defer s.bulkhead.Release()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("comprehensive_analysis", time.Since(start))
	}()

	since, period := window(weeksBack)

	var (
		records []domain.LedgerRecord
		limit   *float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.ledger.QueryRecords(gctx, since)
		if err != nil {
			s.metrics.IncrStoreError("ledger")
		}
		return err
	})
	g.Go(func() error {
		var err error
		limit, err = s.budgets.GetMonthlyLimit(gctx, userID)
		if err != nil {
			s.metrics.IncrStoreError("budget")
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, records); err != nil {
		return nil, err
	}

	decision := analytics.SelectGranularity(records)
	agg := aggregateBy(records, decision.Mode)
	trend := trendFor(decision, agg)

	summary := domain.PeriodSummary{
		TotalSpent:           agg.TotalSpent,
		WeeklyAverage:        agg.WeeklyAverage(),
		ActivityDailyAverage: agg.ActivityDailyAverage(),
		WindowDailyAverage:   analytics.WindowDailyAverage(agg.TotalSpent, weeksBack),
		TransactionCount:     agg.TransactionCount,
	}

	byVendor := analytics.RankByVendor(records)
	byType := analytics.RankByType(records)
	byAmount, highest := analytics.TopByAmount(records)
	budget := analytics.EvaluateBudget(limit, agg.TotalSpent)

	report := &domain.AnalysisReport{
		Period:      period,
		Granularity: decision,
		Summary:     summary,
		Buckets:     agg.Buckets,
		Trend:       trend,
		TopSpending: domain.TopSpending{
			ByVendor:                 byVendor,
			ByAmount:                 byAmount,
			HighestSingleTransaction: highest,
		},
		ItemAnalysis:     domain.ItemAnalysis{TopItems: analytics.RankByItem(records)},
		TransactionTypes: domain.TransactionTypes{ByType: byType},
		Budget:           &budget,
		Insights:         analytics.ComposeInsights(summary, trend, byVendor, byType),
	}

	s.metrics.IncrAnalysis("comprehensive")
	s.logger.Info("analysis complete",
		zap.String("period", period),
		zap.String("granularity", string(decision.Mode)),
		zap.Int("records", len(records)),
	)
	return report, nil
}

// Summary produces the headline totals and the top vendors only.
func (s *AnalyticsService) Summary(ctx context.Context, weeksBack int) (*domain.SummaryReport, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Summary")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("summary", time.Since(start))
	}()

	since, period := window(weeksBack)
	records, err := s.ledger.QueryRecords(ctx, since)
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		return nil, err
	}

	decision := analytics.SelectGranularity(records)
	agg := aggregateBy(records, decision.Mode)

	vendors := analytics.RankByVendor(records)
	if len(vendors) > topVendorsSummaryCap {
		vendors = vendors[:topVendorsSummaryCap]
	}

	s.metrics.IncrAnalysis("summary")
	return &domain.SummaryReport{
		Period: period,
		Summary: domain.PeriodSummary{
			TotalSpent:           agg.TotalSpent,
			WeeklyAverage:        agg.WeeklyAverage(),
			ActivityDailyAverage: agg.ActivityDailyAverage(),
			WindowDailyAverage:   analytics.WindowDailyAverage(agg.TotalSpent, weeksBack),
			TransactionCount:     agg.TransactionCount,
		},
		TopVendors: vendors,
	}, nil
}

// Trends produces the bucket series and trend classification. granularity
// is "auto", "daily", or "weekly"; auto defers to the density heuristic.
func (s *AnalyticsService) Trends(ctx context.Context, weeksBack int, granularity string) (*domain.TrendReport, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Trends")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("trends", time.Since(start))
	}()

	switch granularity {
	case "", "auto", string(domain.GranularityDaily), string(domain.GranularityWeekly):
	default:
		return nil, &domain.ErrValidation{Field: "granularity", Message: "must be auto, daily, or weekly"}
	}

	since, period := window(weeksBack)
	records, err := s.ledger.QueryRecords(ctx, since)
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		return nil, err
	}

	decision := analytics.SelectGranularity(records)
	switch granularity {
	case string(domain.GranularityDaily):
		decision.Mode = domain.GranularityDaily
	case string(domain.GranularityWeekly):
		decision.Mode = domain.GranularityWeekly
	}
	agg := aggregateBy(records, decision.Mode)

	s.metrics.IncrAnalysis("trends")
	return &domain.TrendReport{
		Period:      period,
		Granularity: decision,
		Buckets:     agg.Buckets,
		Trend:       trendFor(decision, agg),
	}, nil
}

// ListRecords returns ledger records with their line items attached.
func (s *AnalyticsService) ListRecords(ctx context.Context, weeksBack int) ([]domain.LedgerRecord, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.ListRecords")
	defer span.End()

	since, _ := window(weeksBack)
	records, err := s.ledger.QueryRecords(ctx, since)
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		return nil, err
	}
	if err := s.attachItems(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// BudgetStatus evaluates the user's monthly limit against the current
// calendar month, optionally projecting a pending amount on top.
func (s *AnalyticsService) BudgetStatus(ctx context.Context, userID string, pending float64) (*domain.ProjectedBudgetStatus, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.BudgetStatus")
	defer span.End()

	if pending < 0 {
		return nil, &domain.ErrValidation{Field: "pendingAmount", Message: "must not be negative"}
	}

	limit, err := s.budgets.GetMonthlyLimit(ctx, userID)
	if err != nil {
		s.metrics.IncrStoreError("budget")
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	records, err := s.ledger.QueryRecords(ctx, &monthStart)
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		return nil, err
	}

	var spent float64
	for _, r := range records {
		spent += r.Amount
	}

	status := analytics.EvaluateProjectedBudget(limit, spent, pending)
	return &status, nil
}

// SetLimit stores the user's monthly spending limit.
func (s *AnalyticsService) SetLimit(ctx context.Context, userID string, limit float64) error {
	ctx, span := tracer.Start(ctx, "AnalyticsService.SetLimit")
	defer span.End()

	if limit <= 0 {
		return &domain.ErrValidation{Field: "monthlyLimit", Message: "must be positive"}
	}
	if err := s.budgets.SetMonthlyLimit(ctx, userID, limit); err != nil {
		s.metrics.IncrStoreError("budget")
		return err
	}
	s.logger.Info("monthly limit updated", zap.String("user_id", userID), zap.Float64("limit", limit))
	return nil
}

func aggregateBy(records []domain.LedgerRecord, mode domain.GranularityMode) analytics.Aggregation {
	if mode == domain.GranularityDaily {
		return analytics.AggregateDaily(records)
	}
	return analytics.AggregateWeekly(records)
}

func trendFor(decision domain.GranularityDecision, agg analytics.Aggregation) domain.TrendResult {
	if !decision.SufficientForTrend {
		return domain.TrendResult{Direction: domain.TrendInsufficientData}
	}
	return analytics.ClassifyTrend(agg.Buckets)
}
