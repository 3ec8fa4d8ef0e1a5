package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// IngestMetrics is returned by GET /v1/metrics/ingest.
type IngestMetrics struct {
	RecordsIngested int64   `json:"recordsIngested"`
	AmountsRejected int64   `json:"amountsRejected"`
	RejectionRate   float64 `json:"rejectionRate"`
	AnalysesRun     int64   `json:"analysesRun"`
	StoreErrors     int64   `json:"storeErrors"`
	CacheHitRate    float64 `json:"cacheHitRate"`
	Period          string  `json:"period"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
