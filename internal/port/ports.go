// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/prasetya/spendsight/internal/domain"
)

// LedgerQuery is the read side of the ledger. Exactly one implementation
// is active at a time, selected by configuration at startup.
type LedgerQuery interface {
	// QueryRecords returns ledger records ordered by date descending.
	// A nil since returns the full ledger.
	QueryRecords(ctx context.Context, since *time.Time) ([]domain.LedgerRecord, error)

	// QueryLineItems returns the line items belonging to the given records.
	QueryLineItems(ctx context.Context, recordIDs []string) ([]domain.LineItem, error)
}

// LedgerWriter persists new ledger records with their line items.
type LedgerWriter interface {
	InsertRecord(ctx context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error)

	// DeleteRecord removes a record and, because a record exclusively
	// owns its line items, all of its items.
	DeleteRecord(ctx context.Context, recordID string) error
}

// BudgetStore holds per-user monthly spending limits.
type BudgetStore interface {
	// GetMonthlyLimit returns nil when no limit is configured.
	GetMonthlyLimit(ctx context.Context, userID string) (*float64, error)
	SetMonthlyLimit(ctx context.Context, userID string, limit float64) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
