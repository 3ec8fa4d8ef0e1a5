package observability

import (
	"time"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	recordsIngested prometheus.Counter
	amountsRejected *prometheus.CounterVec
	analysesRun     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spendsight_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendsight_store_errors_total",
				Help: "Total errors from the ledger and budget stores.",
			},
			[]string{"store"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendsight_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendsight_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		recordsIngested: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "spendsight_records_ingested_total",
				Help: "Total ledger records accepted for storage.",
			},
		),
		amountsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendsight_amounts_rejected_total",
				Help: "Total raw amounts the normalizer rejected to zero.",
			},
			[]string{"reason"},
		),
		analysesRun: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendsight_analyses_total",
				Help: "Total analysis runs by kind.",
			},
			[]string{"kind"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the store error counter.
func (m *Metrics) IncrStoreError(store string) {
	m.storeErrors.WithLabelValues(store).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRecordIngested counts an accepted ledger record.
func (m *Metrics) IncrRecordIngested() {
	m.recordsIngested.Inc()
}

// IncrAmountRejected counts a normalizer rejection by reason.
func (m *Metrics) IncrAmountRejected(reason string) {
	m.amountsRejected.WithLabelValues(reason).Inc()
}

// IncrAnalysis counts an analysis run by kind (comprehensive, summary, trends).
func (m *Metrics) IncrAnalysis(kind string) {
	m.analysesRun.WithLabelValues(kind).Inc()
}

// GetIngestSnapshot returns a snapshot of ingest-related counters for
// the GET /v1/metrics/ingest endpoint.
func (m *Metrics) GetIngestSnapshot() *domain.IngestMetrics {
	ingested := counterValue(m.recordsIngested)
	rejected := counterVecTotal(m.amountsRejected)
	analyses := counterVecTotal(m.analysesRun)
	storeErrs := counterVecTotal(m.storeErrors)
	hits := counterVecTotal(m.cacheHits)
	misses := counterVecTotal(m.cacheMisses)

	rejectionRate := float64(0)
	if ingested+rejected > 0 {
		rejectionRate = rejected / (ingested + rejected)
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.IngestMetrics{
		RecordsIngested: int64(ingested),
		AmountsRejected: int64(rejected),
		RejectionRate:   rejectionRate,
		AnalysesRun:     int64(analyses),
		StoreErrors:     int64(storeErrs),
		CacheHitRate:    cacheHitRate,
		Period:          "all_time",
	}
}

// counterValue extracts the current float64 value from a Counter.
func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// counterVecTotal sums the current values of all children of a CounterVec.
func counterVecTotal(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
