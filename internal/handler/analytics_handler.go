package handler

import (
	"net/http"

	"github.com/prasetya/spendsight/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Analysis — GET /v1/analysis, /summary, /trends
// ============================================================

func comprehensiveAnalysisHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analysis")
		defer span.End()

		weeks, err := parseWeeksBack(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("analysis.weeks", weeks))

		userID := UserIDFromContext(ctx)
		if userID == "" {
			userID = "default"
		}

		report, err := svc.ComprehensiveAnalysis(ctx, userID, weeks)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func summaryHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analysis/summary")
		defer span.End()

		weeks, err := parseWeeksBack(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		report, err := svc.Summary(ctx, weeks)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func trendsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analysis/trends")
		defer span.End()

		weeks, err := parseWeeksBack(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		granularity := r.URL.Query().Get("granularity")

		report, err := svc.Trends(ctx, weeks, granularity)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
