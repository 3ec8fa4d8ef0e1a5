package analytics

import (
	"testing"

	"github.com/prasetya/spendsight/internal/domain"
)

func rec(vendor, date string, amount float64) domain.LedgerRecord {
	return domain.LedgerRecord{Vendor: vendor, Date: date, Amount: amount}
}

func TestSelectGranularityNoData(t *testing.T) {
	d := SelectGranularity(nil)
	if d.Mode != domain.GranularityDaily || d.Reason != domain.ReasonNoData {
		t.Errorf("got %+v, want daily/no_data", d)
	}
	if d.SufficientForTrend {
		t.Error("no data must not be sufficient for trend")
	}
}

func TestSelectGranularityNoValidDates(t *testing.T) {
	records := []domain.LedgerRecord{
		rec("A", "", 100),
		rec("B", "not-a-date", 200),
	}
	d := SelectGranularity(records)
	if d.Mode != domain.GranularityDaily || d.Reason != domain.ReasonNoValidDates {
		t.Errorf("got %+v, want daily/no_valid_dates", d)
	}
}

func TestSelectGranularityBoundary(t *testing.T) {
	// 13-day span stays daily even across two ISO weeks.
	short := []domain.LedgerRecord{
		rec("A", "2024-01-01", 100),
		rec("A", "2024-01-05", 100),
		rec("A", "2024-01-13", 100),
	}
	d := SelectGranularity(short)
	if d.Mode != domain.GranularityDaily || d.Reason != domain.ReasonShortRange {
		t.Errorf("13-day span: got %+v, want daily/short_range", d)
	}
	if d.SpanDays != 13 {
		t.Errorf("spanDays = %d, want 13", d.SpanDays)
	}
	if !d.SufficientForTrend {
		t.Error("3 distinct days should be sufficient for a daily trend")
	}

	// Exactly 14 days with two ISO weeks flips to weekly.
	long := []domain.LedgerRecord{
		rec("A", "2024-01-01", 100),
		rec("A", "2024-01-14", 100),
	}
	d = SelectGranularity(long)
	if d.Mode != domain.GranularityWeekly || d.Reason != domain.ReasonSufficientRange {
		t.Errorf("14-day span: got %+v, want weekly/sufficient_range", d)
	}
	if d.SpanDays != 14 {
		t.Errorf("spanDays = %d, want 14", d.SpanDays)
	}
	if !d.SufficientForTrend {
		t.Error("2 distinct weeks should be sufficient for a weekly trend")
	}
}

func TestSelectGranularityDailyTrendNeedsThreeDays(t *testing.T) {
	records := []domain.LedgerRecord{
		rec("A", "2024-01-01", 100),
		rec("A", "2024-01-02", 100),
	}
	d := SelectGranularity(records)
	if d.Mode != domain.GranularityDaily {
		t.Fatalf("mode = %s, want daily", d.Mode)
	}
	if d.SufficientForTrend {
		t.Error("2 distinct days must not be sufficient for trend")
	}
}
