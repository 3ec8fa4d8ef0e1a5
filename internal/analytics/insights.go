package analytics

import (
	"fmt"

	"github.com/prasetya/spendsight/internal/currency"
	"github.com/prasetya/spendsight/internal/domain"
)

// Thresholds for the natural-language insight triggers.
const (
	highWeeklyAverage    = 1_000_000
	lowWeeklyAverage     = 200_000
	frequentTransactions = 20
	sparseTransactions   = 5
)

// ComposeInsights turns the analysis outputs into short natural-language
// bullets. Each bullet is emitted only when its trigger condition holds;
// an empty slice is a valid result.
func ComposeInsights(summary domain.PeriodSummary, trend domain.TrendResult, byVendor, byType []domain.RankingEntry) []string {
	var insights []string

	switch {
	case summary.WeeklyAverage > highWeeklyAverage:
		insights = append(insights, fmt.Sprintf(
			"Your weekly spending average is quite high (%s)",
			currency.FormatRupiah(summary.WeeklyAverage)))
	case summary.WeeklyAverage > 0 && summary.WeeklyAverage < lowWeeklyAverage:
		insights = append(insights, fmt.Sprintf(
			"Your weekly spending average is low (%s)",
			currency.FormatRupiah(summary.WeeklyAverage)))
	}

	switch trend.Direction {
	case domain.TrendIncreasing:
		insights = append(insights, fmt.Sprintf(
			"Spending is trending up %.1f%% versus the previous period", trend.PercentChange))
	case domain.TrendDecreasing:
		insights = append(insights, fmt.Sprintf(
			"Spending is trending down %.1f%% versus the previous period", -trend.PercentChange))
	case domain.TrendStable:
		insights = append(insights, "Spending is stable period over period")
	}

	if len(byVendor) > 0 {
		top := byVendor[0]
		insights = append(insights, fmt.Sprintf(
			"Most spending goes to %s (%s across %d transactions)",
			top.Name, currency.FormatRupiah(top.Total), top.Count))
	}

	switch {
	case summary.TransactionCount > frequentTransactions:
		insights = append(insights, fmt.Sprintf(
			"You transact frequently: %d transactions this period", summary.TransactionCount))
	case summary.TransactionCount > 0 && summary.TransactionCount < sparseTransactions:
		insights = append(insights, fmt.Sprintf(
			"Only %d transactions recorded this period", summary.TransactionCount))
	}

	if len(byType) > 0 && byType[0].Name != string(domain.TypeUnknown) {
		insights = append(insights, fmt.Sprintf(
			"Most of your spending is %s (%s)",
			byType[0].Name, currency.FormatRupiah(byType[0].Total)))
	}

	return insights
}
