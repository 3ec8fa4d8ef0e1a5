package analytics

import (
	"strings"
	"testing"

	"github.com/prasetya/spendsight/internal/domain"
)

func TestComposeInsights(t *testing.T) {
	summary := domain.PeriodSummary{
		TotalSpent:       6000000,
		WeeklyAverage:    1500000,
		TransactionCount: 25,
	}
	trend := domain.TrendResult{Direction: domain.TrendIncreasing, PercentChange: 42.5}
	byVendor := []domain.RankingEntry{{Name: "Shopee", Total: 3500000, Count: 10}}
	byType := []domain.RankingEntry{{Name: "e-commerce", Total: 4000000, Count: 15}}

	insights := ComposeInsights(summary, trend, byVendor, byType)
	if len(insights) != 5 {
		t.Fatalf("insights = %d, want 5: %v", len(insights), insights)
	}

	assertContains(t, insights[0], "quite high")
	assertContains(t, insights[0], "Rp 1.5M")
	assertContains(t, insights[1], "trending up 42.5%")
	assertContains(t, insights[2], "Shopee")
	assertContains(t, insights[3], "frequently")
	assertContains(t, insights[4], "e-commerce")
}

func TestComposeInsightsLowActivity(t *testing.T) {
	summary := domain.PeriodSummary{
		TotalSpent:       150000,
		WeeklyAverage:    150000,
		TransactionCount: 2,
	}
	trend := domain.TrendResult{Direction: domain.TrendInsufficientData}

	insights := ComposeInsights(summary, trend, nil, nil)
	if len(insights) != 2 {
		t.Fatalf("insights = %d, want 2: %v", len(insights), insights)
	}
	assertContains(t, insights[0], "low")
	assertContains(t, insights[1], "Only 2 transactions")
}

func TestComposeInsightsEmpty(t *testing.T) {
	insights := ComposeInsights(domain.PeriodSummary{}, domain.TrendResult{Direction: domain.TrendInsufficientData}, nil, nil)
	if len(insights) != 0 {
		t.Errorf("zero activity should produce no insights, got %v", insights)
	}
	for _, s := range insights {
		if s == "" {
			t.Error("insights must never be empty strings")
		}
	}
}

func TestComposeInsightsSkipsUnknownType(t *testing.T) {
	byType := []domain.RankingEntry{{Name: "unknown", Total: 100}}
	insights := ComposeInsights(domain.PeriodSummary{}, domain.TrendResult{Direction: domain.TrendInsufficientData}, nil, byType)
	for _, s := range insights {
		if strings.Contains(s, "unknown") {
			t.Errorf("unknown type should not produce an insight: %q", s)
		}
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}
