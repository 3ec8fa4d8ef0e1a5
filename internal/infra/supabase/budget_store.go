package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prasetya/spendsight/internal/domain"
	"github.com/prasetya/spendsight/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// supabaseSpendingLimit maps the spending_limits table.
type supabaseSpendingLimit struct {
	UserID       string  `json:"user_id"`
	MonthlyLimit float64 `json:"monthly_limit"`
}

// GetMonthlyLimit returns the configured monthly limit for a user, or
// nil when none is set. Implements port.BudgetStore.
func (c *Client) GetMonthlyLimit(ctx context.Context, userID string) (*float64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetMonthlyLimit")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var limit *float64

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("spending_limits?user_id=eq.%s&limit=1", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				limit = nil
				return nil
			}

			var rows []supabaseSpendingLimit
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode spending limits: %w", err)
			}
			if len(rows) == 0 {
				limit = nil
				return nil
			}
			limit = &rows[0].MonthlyLimit
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/spending_limits", Err: err}
	}
	return limit, nil
}

// SetMonthlyLimit creates or replaces the monthly limit for a user.
func (c *Client) SetMonthlyLimit(ctx context.Context, userID string, limit float64) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetMonthlyLimit")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("spending_limits?user_id=eq.%s&limit=1", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body != nil && string(body) != "[]" {
				return c.doPatch(ctx, fmt.Sprintf("spending_limits?user_id=eq.%s", userID),
					map[string]any{"monthly_limit": limit})
			}
			_, err = c.doPost(ctx, "spending_limits", map[string]any{
				"user_id":       userID,
				"monthly_limit": limit,
			})
			return err
		})
	})

	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/spending_limits", Err: err}
	}
	return nil
}
