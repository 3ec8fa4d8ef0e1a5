package domain

// ============================================================
// Analytics report types
// ============================================================

// GranularityMode is the bucketing resolution chosen for a query.
type GranularityMode string

const (
	GranularityDaily  GranularityMode = "daily"
	GranularityWeekly GranularityMode = "weekly"
)

// GranularityReason explains why a mode was chosen.
type GranularityReason string

const (
	ReasonNoData          GranularityReason = "no_data"
	ReasonNoValidDates    GranularityReason = "no_valid_dates"
	ReasonShortRange      GranularityReason = "short_range"
	ReasonSufficientRange GranularityReason = "sufficient_range"
)

// GranularityDecision is the outcome of inspecting a record set's
// date span and density.
type GranularityDecision struct {
	Mode               GranularityMode   `json:"mode"`
	Reason             GranularityReason `json:"reason"`
	SpanDays           int               `json:"spanDays"`
	SufficientForTrend bool              `json:"sufficientForTrend"`
}

// TimeBucket is one day- or week-keyed aggregation unit. Produced fresh
// on every call, never persisted.
type TimeBucket struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// TrendDirection classifies the movement between the two most recent buckets.
type TrendDirection string

const (
	TrendIncreasing       TrendDirection = "increasing"
	TrendDecreasing       TrendDirection = "decreasing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// TrendResult compares the last two buckets of an aggregation.
type TrendResult struct {
	Direction     TrendDirection `json:"direction"`
	PercentChange float64        `json:"percentChange"`
}

// RankingEntry is one row of a vendor or category ranking.
type RankingEntry struct {
	Name    string  `json:"name"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// ItemRankingEntry is one row of the line-item ranking.
type ItemRankingEntry struct {
	Name          string   `json:"name"`
	TotalSpent    float64  `json:"totalSpent"`
	TotalQuantity float64  `json:"totalQuantity"`
	Vendors       []string `json:"vendors"`
}

// TransactionHighlight is a single notable record in the report.
type TransactionHighlight struct {
	Vendor string  `json:"vendor"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"`
}

// BudgetTier is a named budget-usage band.
type BudgetTier string

const (
	TierGoodStanding BudgetTier = "good_standing"
	TierGettingClose BudgetTier = "getting_close"
	TierNearLimit    BudgetTier = "near_limit"
	TierOverLimit    BudgetTier = "over_limit"
)

// BudgetStatus is computed on demand from the stored limit and the
// current period total; it is never cached across calls.
type BudgetStatus struct {
	HasLimit    bool       `json:"hasLimit"`
	Limit       float64    `json:"limit,omitempty"`
	Spent       float64    `json:"spent"`
	Remaining   float64    `json:"remaining"`
	PercentUsed float64    `json:"percentUsed"`
	Tier        BudgetTier `json:"tier,omitempty"`
	Message     string     `json:"message"`
}

// ProjectedBudgetStatus extends BudgetStatus with the effect of a
// pending amount that has not yet been recorded.
type ProjectedBudgetStatus struct {
	BudgetStatus
	PendingAmount  float64 `json:"pendingAmount,omitempty"`
	ProjectedTotal float64 `json:"projectedTotal,omitempty"`
	WouldExceed    bool    `json:"wouldExceed"`
}

// PeriodSummary holds the headline totals of an analysis window.
// The two daily averages differ on purpose: one is over days with
// activity, the other over the full requested window.
type PeriodSummary struct {
	TotalSpent           float64 `json:"totalSpent"`
	WeeklyAverage        float64 `json:"weeklyAverage"`
	ActivityDailyAverage float64 `json:"activityDailyAverage"`
	WindowDailyAverage   float64 `json:"windowDailyAverage"`
	TransactionCount     int     `json:"transactionCount"`
}

// TopSpending groups the ranking outputs of a report.
type TopSpending struct {
	ByVendor                 []RankingEntry         `json:"byVendor"`
	ByAmount                 []TransactionHighlight `json:"byAmount"`
	HighestSingleTransaction *TransactionHighlight  `json:"highestSingleTransaction,omitempty"`
}

// ItemAnalysis wraps the top line items.
type ItemAnalysis struct {
	TopItems []ItemRankingEntry `json:"topItems"`
}

// TransactionTypes wraps the per-type ranking.
type TransactionTypes struct {
	ByType []RankingEntry `json:"byType"`
}

// AnalysisReport is the full structured output of a comprehensive analysis.
type AnalysisReport struct {
	Period           string              `json:"period"`
	Granularity      GranularityDecision `json:"granularity"`
	Summary          PeriodSummary       `json:"summary"`
	Buckets          []TimeBucket        `json:"buckets"`
	Trend            TrendResult         `json:"trend"`
	TopSpending      TopSpending         `json:"topSpending"`
	ItemAnalysis     ItemAnalysis        `json:"itemAnalysis"`
	TransactionTypes TransactionTypes    `json:"transactionTypes"`
	Budget           *BudgetStatus       `json:"budget,omitempty"`
	Insights         []string            `json:"insights"`
}

// SummaryReport is the lighter-weight output of GET /v1/analysis/summary.
type SummaryReport struct {
	Period     string         `json:"period"`
	Summary    PeriodSummary  `json:"summary"`
	TopVendors []RankingEntry `json:"topVendors"`
}

// TrendReport is the output of GET /v1/analysis/trends.
type TrendReport struct {
	Period      string              `json:"period"`
	Granularity GranularityDecision `json:"granularity"`
	Buckets     []TimeBucket        `json:"buckets"`
	Trend       TrendResult         `json:"trend"`
}
