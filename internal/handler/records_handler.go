package handler

import (
	"encoding/json"
	"net/http"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Records — GET/POST /v1/records, DELETE /v1/records/{recordId}
// ============================================================

func listRecordsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/records")
		defer span.End()

		weeks, err := parseWeeksBack(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		records, err := svc.ListRecords(ctx, weeks)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if records == nil {
			records = []domain.LedgerRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})
	}
}

func ingestRecordHandler(svc *service.IngestService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/records")
		defer span.End()

		var req domain.RecordIngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("record.vendor", req.Vendor))

		rec, err := svc.Ingest(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func deleteRecordHandler(svc *service.IngestService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/records/{recordId}")
		defer span.End()

		recordID := chi.URLParam(r, "recordId")
		if err := svc.Delete(ctx, recordID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
