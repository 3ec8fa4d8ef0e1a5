package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Budget — GET /v1/users/{userId}/budget/status, PUT .../limit
// ============================================================

func budgetStatusHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{userId}/budget/status")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}

		var pending float64
		if v := r.URL.Query().Get("pendingAmount"); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "pendingAmount must be a number")
				return
			}
			pending = parsed
		}

		status, err := svc.BudgetStatus(ctx, userID, pending)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func setBudgetLimitHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{userId}/budget/limit")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}

		var req domain.BudgetLimitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.SetLimit(ctx, userID, req.MonthlyLimit); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "monthly limit updated", ID: userID})
	}
}
