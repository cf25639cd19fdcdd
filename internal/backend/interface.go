package backend

import (
	"context"

	"cambio/internal/core"
	"cambio/internal/report"
)

// Backend is the full persistence surface the HTTP layer works
// against. The read side reuses the report interfaces so the
// dashboard builder accepts any backend unchanged.
type Backend interface {
	report.EntryWriter
	report.EntryLister
	report.CategoryReader
	report.RateReader
	report.BudgetLister

	DeleteEntry(ctx context.Context, id int64) error

	CreateRate(ctx context.Context, rate core.CurrencyRate) (int64, error)
	DeleteRate(ctx context.Context, id int64) error

	CreateBudget(ctx context.Context, budget core.RecurringBudget) (int64, error)
	DeactivateBudget(ctx context.Context, id int64) error
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// BackendResult pairs a ready backend with its cleanup hook. Cleanup
// is nil when the backend holds nothing worth closing.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory builds a backend from its configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
