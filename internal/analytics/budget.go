package analytics

import (
	"fmt"

	"github.com/prasetya/spendsight/internal/currency"
	"github.com/prasetya/spendsight/internal/domain"
)

// Fixed tier boundaries as percent of the monthly limit.
const (
	tierOverLimit    = 100.0
	tierNearLimit    = 90.0
	tierGettingClose = 75.0
)

// EvaluateBudget derives a budget status from the stored monthly limit
// and the amount spent so far. A nil limit means no limit is configured,
// which is not an error.
func EvaluateBudget(limit *float64, spent float64) domain.BudgetStatus {
	if limit == nil {
		return domain.BudgetStatus{
			HasLimit: false,
			Spent:    spent,
			Message:  "No monthly limit set",
		}
	}

	status := domain.BudgetStatus{
		HasLimit:  true,
		Limit:     *limit,
		Spent:     spent,
		Remaining: *limit - spent, // may go negative
	}
	if *limit > 0 {
		status.PercentUsed = spent / *limit * 100
	}

	switch {
	case status.PercentUsed >= tierOverLimit:
		status.Tier = domain.TierOverLimit
		status.Message = fmt.Sprintf("Monthly limit of %s exceeded", currency.FormatRupiah(*limit))
	case status.PercentUsed >= tierNearLimit:
		status.Tier = domain.TierNearLimit
		status.Message = fmt.Sprintf("Approaching your monthly limit, %s remaining", currency.FormatRupiah(status.Remaining))
	case status.PercentUsed >= tierGettingClose:
		status.Tier = domain.TierGettingClose
		status.Message = fmt.Sprintf("Getting close to your monthly limit, %s remaining", currency.FormatRupiah(status.Remaining))
	default:
		status.Tier = domain.TierGoodStanding
		status.Message = "Spending is within your monthly limit"
	}
	return status
}

// EvaluateProjectedBudget evaluates the budget as if a pending amount
// had already been spent, reporting whether it would cross the limit.
func EvaluateProjectedBudget(limit *float64, spent, pending float64) domain.ProjectedBudgetStatus {
	projected := spent + pending
	status := domain.ProjectedBudgetStatus{
		BudgetStatus:   EvaluateBudget(limit, projected),
		PendingAmount:  pending,
		ProjectedTotal: projected,
	}
	// report the already-settled figure, not the projection
	status.Spent = spent
	if limit != nil {
		status.WouldExceed = projected > *limit
	}
	return status
}
