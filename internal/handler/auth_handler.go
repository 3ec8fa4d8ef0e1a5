package handler

import (
	"encoding/json"
	"net/http"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Auth — POST /v1/auth/token
// ============================================================

func issueTokenHandler(svc *service.TokenService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/token")
		defer span.End()

		var req domain.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.IssueToken(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
