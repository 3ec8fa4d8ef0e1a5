package domain

// ============================================================
// Ingest API requests
// ============================================================

// RecordIngestRequest is the body of POST /v1/records. Amounts arrive
// as raw text exactly as extracted upstream and are normalized before
// storage.
type RecordIngestRequest struct {
	Vendor string           `json:"vendor"`
	Date   string           `json:"date,omitempty"`
	Amount string           `json:"amount"`
	Type   string           `json:"transactionType,omitempty"`
	Items  []LineItemIngest `json:"items,omitempty"`
}

// LineItemIngest is one raw line item in an ingest request.
type LineItemIngest struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity,omitempty"`
	UnitPrice  string  `json:"unitPrice,omitempty"`
	TotalPrice string  `json:"totalPrice,omitempty"`
}

// BudgetLimitRequest is the body of PUT /v1/users/{userID}/budget/limit.
type BudgetLimitRequest struct {
	MonthlyLimit float64 `json:"monthlyLimit"`
}

// GenerateRecordsRequest is the body of POST /v1/dev/generate-records.
type GenerateRecordsRequest struct {
	Count     int `json:"count"`
	WeeksBack int `json:"weeksBack,omitempty"`
}

// GenerateRecordsResponse reports the outcome of synthetic record generation.
type GenerateRecordsResponse struct {
	Success   bool    `json:"success"`
	Generated int     `json:"generated"`
	Total     float64 `json:"total"`
	Message   string  `json:"message"`
}
