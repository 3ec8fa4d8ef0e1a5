// Package analytics implements the pure spending-analytics core:
// granularity selection, temporal aggregation, trend classification,
// rankings, budget evaluation, and insight composition. Every function
// here is a pure, synchronous transformation of a ledger snapshot.
package analytics

import (
	"fmt"
	"time"

	"github.com/prasetya/spendsight/internal/domain"
)

// mondayOf returns the Monday of the ISO week containing t.
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// weekKey returns the ISO year-week key for t, anchored on its Monday.
func weekKey(t time.Time) string {
	year, week := mondayOf(t).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SelectGranularity inspects the date span and density of a record set
// and decides whether daily or weekly bucketing is appropriate. A short
// observation window cannot support week-over-week comparison, so daily
// buckets are used below 14 days of span or 2 distinct ISO weeks.
func SelectGranularity(records []domain.LedgerRecord) domain.GranularityDecision {
	if len(records) == 0 {
		return domain.GranularityDecision{
			Mode:   domain.GranularityDaily,
			Reason: domain.ReasonNoData,
		}
	}

	var minDate, maxDate time.Time
	days := make(map[string]struct{})
	weeks := make(map[string]struct{})
	for _, rec := range records {
		t, ok := domain.ParseRecordDate(rec.Date)
		if !ok {
			continue
		}
		if minDate.IsZero() || t.Before(minDate) {
			minDate = t
		}
		if t.After(maxDate) {
			maxDate = t
		}
		days[dayKey(t)] = struct{}{}
		weeks[weekKey(t)] = struct{}{}
	}

	if len(days) == 0 {
		return domain.GranularityDecision{
			Mode:   domain.GranularityDaily,
			Reason: domain.ReasonNoValidDates,
		}
	}

	spanDays := int(maxDate.Sub(minDate).Hours()/24) + 1

	if spanDays < 14 || len(weeks) < 2 {
		return domain.GranularityDecision{
			Mode:               domain.GranularityDaily,
			Reason:             domain.ReasonShortRange,
			SpanDays:           spanDays,
			SufficientForTrend: len(days) >= 3,
		}
	}
	return domain.GranularityDecision{
		Mode:               domain.GranularityWeekly,
		Reason:             domain.ReasonSufficientRange,
		SpanDays:           spanDays,
		SufficientForTrend: len(weeks) >= 2,
	}
}
