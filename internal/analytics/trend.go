package analytics

import "github.com/prasetya/spendsight/internal/domain"

// trendBand is the fixed noise threshold, in percent, below which
// movement between two buckets counts as stable.
const trendBand = 10.0

// ClassifyTrend compares the two most recent buckets of a chronological
// bucket list. A zero-total baseline yields a zero percent change, which
// falls inside the stable band.
func ClassifyTrend(buckets []domain.TimeBucket) domain.TrendResult {
	if len(buckets) < 2 {
		return domain.TrendResult{Direction: domain.TrendInsufficientData}
	}

	old := buckets[len(buckets)-2]
	newest := buckets[len(buckets)-1]

	var pct float64
	if old.Total > 0 {
		pct = (newest.Total - old.Total) / old.Total * 100
	}

	switch {
	case pct > trendBand:
		return domain.TrendResult{Direction: domain.TrendIncreasing, PercentChange: pct}
	case pct < -trendBand:
		return domain.TrendResult{Direction: domain.TrendDecreasing, PercentChange: pct}
	default:
		return domain.TrendResult{Direction: domain.TrendStable, PercentChange: pct}
	}
}
