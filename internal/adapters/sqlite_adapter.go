package adapters

import (
	"context"

	"cambio/internal/core"
	"cambio/internal/services"
	"cambio/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and LedgerService to the backend
// interface. Entry writes and deletes go through the service so export
// events are published; everything else reads or mutates storage directly.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.LedgerService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.LedgerService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements report.EntryWriter
func (a *SQLiteAdapter) Append(ctx context.Context, e core.Entry) (string, error) {
	return a.service.CreateEntry(ctx, e)
}

// DeleteEntry soft-deletes an entry and publishes the delete event
func (a *SQLiteAdapter) DeleteEntry(ctx context.Context, id int64) error {
	return a.service.DeleteEntry(ctx, id)
}

// List implements report.CategoryReader
func (a *SQLiteAdapter) List(ctx context.Context) ([]string, []string, error) {
	return a.storage.List(ctx)
}

// ListEntries implements report.EntryLister
func (a *SQLiteAdapter) ListEntries(ctx context.Context, year int, month int) ([]core.Entry, error) {
	return a.storage.ListEntries(ctx, year, month)
}

// ListRates implements report.RateReader
func (a *SQLiteAdapter) ListRates(ctx context.Context) (core.RateTable, error) {
	return a.storage.ListRates(ctx)
}

// CreateRate stores a new conversion rate
func (a *SQLiteAdapter) CreateRate(ctx context.Context, rate core.CurrencyRate) (int64, error) {
	return a.storage.CreateRate(ctx, rate)
}

// DeleteRate removes a conversion rate
func (a *SQLiteAdapter) DeleteRate(ctx context.Context, id int64) error {
	return a.storage.DeleteRate(ctx, id)
}

// ListActiveBudgets implements report.BudgetLister
func (a *SQLiteAdapter) ListActiveBudgets(ctx context.Context) ([]core.RecurringBudget, error) {
	return a.storage.ListActiveBudgets(ctx)
}

// CreateBudget stores a new recurring budget
func (a *SQLiteAdapter) CreateBudget(ctx context.Context, budget core.RecurringBudget) (int64, error) {
	return a.storage.CreateBudget(ctx, budget)
}

// DeactivateBudget stops a recurring budget from posting further entries
func (a *SQLiteAdapter) DeactivateBudget(ctx context.Context, id int64) error {
	return a.storage.DeactivateBudget(ctx, id)
}
