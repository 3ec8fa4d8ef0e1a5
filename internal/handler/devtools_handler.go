package handler

import (
	"encoding/json"
	"net/http"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dev Tools — POST /v1/dev/generate-records
// ============================================================

func generateRecordsHandler(svc *service.IngestService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dev/generate-records")
		defer span.End()

		var req domain.GenerateRecordsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.GenerateRecords(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}
