package analytics

import (
	"sort"
	"time"

	"github.com/prasetya/spendsight/internal/domain"
)

// Aggregation is the result of bucketing a record set. TotalSpent and
// TransactionCount cover every record; Buckets cover only records with
// a parsable date.
type Aggregation struct {
	Buckets          []domain.TimeBucket // chronological
	TotalSpent       float64
	TransactionCount int
	DaysWithData     int
	WeeksWithData    int
}

// ActivityDailyAverage is total spend over days that saw activity.
func (a Aggregation) ActivityDailyAverage() float64 {
	return a.TotalSpent / float64(max(a.DaysWithData, 1))
}

// WeeklyAverage is total spend over weeks that saw activity.
func (a Aggregation) WeeklyAverage() float64 {
	return a.TotalSpent / float64(max(a.WeeksWithData, 1))
}

// WindowDailyAverage is a flat-rate average over the full requested
// window, regardless of how many days actually saw activity. It
// coexists with ActivityDailyAverage; downstream consumers rely on both.
func WindowDailyAverage(totalSpent float64, weeksBack int) float64 {
	if weeksBack <= 0 {
		return 0
	}
	return totalSpent / float64(weeksBack*7)
}

// AggregateDaily buckets records by calendar day. Labels are "DD/MM".
func AggregateDaily(records []domain.LedgerRecord) Aggregation {
	return aggregate(records, func(t time.Time) (key, label string) {
		return dayKey(t), t.Format("02/01")
	})
}

// AggregateWeekly buckets records by ISO week, keyed on the Monday of
// each week. Labels span Monday through Sunday as "DD/MM-DD/MM".
func AggregateWeekly(records []domain.LedgerRecord) Aggregation {
	return aggregate(records, func(t time.Time) (key, label string) {
		monday := mondayOf(t)
		sunday := monday.AddDate(0, 0, 6)
		return weekKey(t), monday.Format("02/01") + "-" + sunday.Format("02/01")
	})
}

func aggregate(records []domain.LedgerRecord, keyFn func(time.Time) (string, string)) Aggregation {
	agg := Aggregation{}
	buckets := make(map[string]*domain.TimeBucket)
	days := make(map[string]struct{})
	weeks := make(map[string]struct{})

	for _, rec := range records {
		agg.TotalSpent += rec.Amount
		agg.TransactionCount++

		t, ok := domain.ParseRecordDate(rec.Date)
		if !ok {
			continue
		}
		days[dayKey(t)] = struct{}{}
		weeks[weekKey(t)] = struct{}{}

		key, label := keyFn(t)
		b, exists := buckets[key]
		if !exists {
			b = &domain.TimeBucket{Key: key, Label: label}
			buckets[key] = b
		}
		b.Total += rec.Amount
		b.Count++
	}

	agg.DaysWithData = len(days)
	agg.WeeksWithData = len(weeks)

	agg.Buckets = make([]domain.TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		agg.Buckets = append(agg.Buckets, *b)
	}
	// Day keys are ISO dates and week keys are zero-padded year-weeks,
	// so lexical order is chronological order.
	sort.Slice(agg.Buckets, func(i, j int) bool {
		return agg.Buckets[i].Key < agg.Buckets[j].Key
	})
	return agg
}
