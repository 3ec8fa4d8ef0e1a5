package handler

import (
	"net/http"
	"time"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/infra/observability"
	"github.com/prasetya/spendsight/internal/port"
	"github.com/prasetya/spendsight/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	analyticsSvc *service.AnalyticsService,
	ingestSvc *service.IngestService,
	tokenSvc *service.TokenService,
	ledger port.LedgerQuery,
	metrics *observability.Metrics,
	authEnabled bool,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(ledger, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Token exchange stays public.
		r.Post("/auth/token", issueTokenHandler(tokenSvc, logger))

		r.Group(func(r chi.Router) {
			if authEnabled {
				r.Use(JWTAuthMiddleware(tokenSvc, logger))
			}

			// Analysis
			r.Get("/analysis", comprehensiveAnalysisHandler(analyticsSvc, logger))
			r.Get("/analysis/summary", summaryHandler(analyticsSvc, logger))
			r.Get("/analysis/trends", trendsHandler(analyticsSvc, logger))

			// Records
			r.Get("/records", listRecordsHandler(analyticsSvc, logger))
			r.Post("/records", ingestRecordHandler(ingestSvc, logger))
			r.Delete("/records/{recordId}", deleteRecordHandler(ingestSvc, logger))

			// Budget
			r.Get("/users/{userId}/budget/status", budgetStatusHandler(analyticsSvc, logger))
			r.Put("/users/{userId}/budget/limit", setBudgetLimitHandler(analyticsSvc, logger))

			// Metrics snapshot
			r.Get("/metrics/ingest", ingestMetricsHandler(metrics))

			// Dev tools
			r.Post("/dev/generate-records", generateRecordsHandler(ingestSvc, logger))
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(ledger port.LedgerQuery, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().UTC()

		services := []domain.ServiceHealth{
			{Name: "spendsight-api", Status: "healthy", LatencyMs: 0, LastChecked: now.Format(time.RFC3339)},
		}

		// Probe the ledger store with a window that should be near empty.
		probe := now.Add(time.Minute)
		start := time.Now()
		_, err := ledger.QueryRecords(ctx, &probe)
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			logger.Warn("healthz: ledger probe failed", zap.Error(err))
			status = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "ledger-store", Status: status, LatencyMs: latency,
			LastChecked: now.Format(time.RFC3339),
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ingestMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetIngestSnapshot())
	}
}
