package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cambio/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database connection is healthy.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateRate validates and stores a new rate row. Rows with rate <= 0
// never reach the table.
func (r *SQLiteRepository) CreateRate(ctx context.Context, rate core.CurrencyRate) (int64, error) {
	if err := rate.Validate(); err != nil {
		return 0, fmt.Errorf("validate rate: %w", err)
	}

	row, err := r.queries.CreateRate(ctx, CreateRateParams{
		BaseCurrency:   rate.Base,
		TargetCurrency: rate.Target,
		Rate:           rate.Rate,
	})
	if err != nil {
		return 0, fmt.Errorf("create rate: %w", err)
	}

	slog.InfoContext(ctx, "Rate saved to SQLite",
		"id", row.ID,
		"base", row.BaseCurrency,
		"target", row.TargetCurrency,
		"rate", row.Rate)

	return row.ID, nil
}

// ListRates implements report.RateReader. The returned table preserves
// insertion order, which is the order the resolver scans in.
func (r *SQLiteRepository) ListRates(ctx context.Context) (core.RateTable, error) {
	rows, err := r.queries.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}

	table := make(core.RateTable, len(rows))
	for i, row := range rows {
		table[i] = core.CurrencyRate{
			ID:     row.ID,
			Base:   row.BaseCurrency,
			Target: row.TargetCurrency,
			Rate:   row.Rate,
		}
	}
	return table, nil
}

func (r *SQLiteRepository) DeleteRate(ctx context.Context, id int64) error {
	if err := r.queries.DeleteRate(ctx, id); err != nil {
		return fmt.Errorf("delete rate: %w", err)
	}
	slog.InfoContext(ctx, "Rate deleted", "id", id)
	return nil
}

// Append implements report.EntryWriter for the sqlite backend.
func (r *SQLiteRepository) Append(ctx context.Context, e core.Entry) (string, error) {
	entry, err := r.queries.CreateEntry(ctx, CreateEntryParams{
		EntryDate:   e.Date.Format(dateLayout),
		Description: e.Description,
		Value:       e.Amount.Value,
		Currency:    e.Amount.Currency,
		Kind:        string(e.Kind),
		Category:    e.Category,
	})
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", entry.ID,
		"description", entry.Description,
		"value", entry.Value,
		"currency", entry.Currency,
		"kind", entry.Kind)

	return strconv.FormatInt(entry.ID, 10), nil
}

// GetEntry retrieves a single entry by ID, soft-deleted ones included.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry by id: %w", err)
	}
	return entryFromRow(row), nil
}

func (r *SQLiteRepository) SoftDeleteEntry(ctx context.Context, id int64) error {
	if err := r.queries.SoftDeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}
	slog.InfoContext(ctx, "Entry soft deleted", "id", id)
	return nil
}

// ListEntries implements report.EntryLister for one month.
func (r *SQLiteRepository) ListEntries(ctx context.Context, year int, month int) ([]core.Entry, error) {
	start, end := monthRange(year, month)
	rows, err := r.queries.ListEntriesByDateRange(ctx, ListEntriesByDateRangeParams{Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("list entries by month: %w", err)
	}

	entries := make([]core.Entry, len(rows))
	for i, row := range rows {
		entries[i] = entryFromRow(row)
	}
	return entries, nil
}

// MarkExported marks an entry as successfully exported to the report.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntryExported(ctx, id); err != nil {
		return fmt.Errorf("mark entry exported: %w", err)
	}
	slog.InfoContext(ctx, "Entry marked as exported", "id", id)
	return nil
}

// MarkExportError marks an entry whose export failed permanently.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntryExportError(ctx, id); err != nil {
		return fmt.Errorf("mark entry export error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with export error", "id", id)
	return nil
}

// PendingExportEntry is the minimal data the export worker needs to
// pick an entry up again.
type PendingExportEntry struct {
	ID        int64
	CreatedAt time.Time
}

func (r *SQLiteRepository) GetPendingExportEntries(ctx context.Context, limit int) ([]PendingExportEntry, error) {
	rows, err := r.queries.GetPendingExportEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending export entries: %w", err)
	}

	pending := make([]PendingExportEntry, len(rows))
	for i, row := range rows {
		pending[i] = PendingExportEntry{
			ID:        row.ID,
			CreatedAt: row.CreatedAt.Time,
		}
	}
	return pending, nil
}

// CreateBudget validates and stores a recurring budget line.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.RecurringBudget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("validate budget: %w", err)
	}

	endDate := sql.NullString{}
	if !b.EndDate.IsEmpty() {
		endDate = sql.NullString{String: b.EndDate.Format(dateLayout), Valid: true}
	}

	row, err := r.queries.CreateBudget(ctx, CreateBudgetParams{
		Description: b.Description,
		Value:       b.Amount.Value,
		Currency:    b.Amount.Currency,
		Period:      string(b.Period),
		Kind:        string(b.Kind),
		Category:    b.Category,
		StartDate:   b.StartDate.Format(dateLayout),
		EndDate:     endDate,
		PlaceName:   b.PlaceName,
		PlaceLat:    b.PlaceLat,
		PlaceLon:    b.PlaceLon,
	})
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Recurring budget saved",
		"id", row.ID,
		"description", row.Description,
		"value", row.Value,
		"currency", row.Currency,
		"period", row.Period)

	return row.ID, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.RecurringBudget, error) {
	row, err := r.queries.GetBudget(ctx, id)
	if err != nil {
		return core.RecurringBudget{}, fmt.Errorf("get budget by id: %w", err)
	}
	return budgetFromRow(row), nil
}

// ListActiveBudgets implements report.BudgetLister.
func (r *SQLiteRepository) ListActiveBudgets(ctx context.Context) ([]core.RecurringBudget, error) {
	rows, err := r.queries.ListActiveBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active budgets: %w", err)
	}

	budgets := make([]core.RecurringBudget, len(rows))
	for i, row := range rows {
		budgets[i] = budgetFromRow(row)
	}
	return budgets, nil
}

func (r *SQLiteRepository) DeactivateBudget(ctx context.Context, id int64) error {
	if err := r.queries.DeactivateBudget(ctx, id); err != nil {
		return fmt.Errorf("deactivate budget: %w", err)
	}
	slog.InfoContext(ctx, "Recurring budget deactivated", "id", id)
	return nil
}

// BudgetSchedule pairs a budget with its posting state for the
// recurring processor.
type BudgetSchedule struct {
	Budget       core.RecurringBudget
	LastPostedAt time.Time
}

// DueCandidateBudgets returns every active budget whose date window
// contains now, with its last posting date, in one query.
func (r *SQLiteRepository) DueCandidateBudgets(ctx context.Context, now time.Time) ([]BudgetSchedule, error) {
	rows, err := r.queries.ListDueCandidateBudgets(ctx, ListDueCandidateBudgetsParams{Now: now.Format(dateLayout)})
	if err != nil {
		return nil, fmt.Errorf("list due candidate budgets: %w", err)
	}

	schedules := make([]BudgetSchedule, len(rows))
	for i, row := range rows {
		schedules[i] = BudgetSchedule{Budget: budgetFromRow(row)}
		if row.LastPostedAt.Valid {
			schedules[i].LastPostedAt = row.LastPostedAt.Time
		}
	}
	return schedules, nil
}

func (r *SQLiteRepository) UpdateBudgetLastPosted(ctx context.Context, id int64, when time.Time) error {
	err := r.queries.UpdateBudgetLastPosted(ctx, UpdateBudgetLastPostedParams{
		LastPostedAt: when.Format(dateLayout),
		ID:           id,
	})
	if err != nil {
		return fmt.Errorf("update budget last posted: %w", err)
	}
	return nil
}

// List implements report.CategoryReader: income category names first,
// then expense ones, each alphabetical.
func (r *SQLiteRepository) List(ctx context.Context) ([]string, []string, error) {
	income, err := r.queries.ListCategoriesByKind(ctx, string(core.Income))
	if err != nil {
		return nil, nil, fmt.Errorf("get income categories: %w", err)
	}

	expense, err := r.queries.ListCategoriesByKind(ctx, string(core.Expense))
	if err != nil {
		return nil, nil, fmt.Errorf("get expense categories: %w", err)
	}

	return income, expense, nil
}

// GetCategoryCount returns the total number of categories.
func (r *SQLiteRepository) GetCategoryCount(ctx context.Context) (int64, error) {
	count, err := r.queries.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}

// EnqueueExport adds a queue item for the fallback export processor.
func (r *SQLiteRepository) EnqueueExport(ctx context.Context, entryID int64, operation string) error {
	err := r.queries.EnqueueExport(ctx, EnqueueExportParams{EntryID: entryID, Operation: operation})
	if err != nil {
		return fmt.Errorf("enqueue export: %w", err)
	}
	slog.InfoContext(ctx, "Export queued", "entry_id", entryID, "operation", operation)
	return nil
}

func (r *SQLiteRepository) DequeueExportBatch(ctx context.Context, limit int64) ([]ExportQueue, error) {
	items, err := r.queries.DequeueExportBatch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("dequeue export batch: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) MarkExportProcessing(ctx context.Context, id int64) error {
	return r.queries.MarkExportProcessing(ctx, id)
}

func (r *SQLiteRepository) MarkExportComplete(ctx context.Context, id int64) error {
	return r.queries.MarkExportComplete(ctx, id)
}

func (r *SQLiteRepository) MarkExportFailed(ctx context.Context, id int64, lastError string) error {
	return r.queries.MarkExportFailed(ctx, MarkExportFailedParams{LastError: lastError, ID: id})
}

func (r *SQLiteRepository) IncrementExportAttempt(ctx context.Context, id int64, lastError string) error {
	return r.queries.IncrementExportAttempt(ctx, IncrementExportAttemptParams{LastError: lastError, ID: id})
}

func (r *SQLiteRepository) CleanupCompletedExports(ctx context.Context, cutoff time.Time) error {
	return r.queries.CleanupCompletedExports(ctx, cutoff)
}

func (r *SQLiteRepository) ResetStaleExports(ctx context.Context) error {
	return r.queries.ResetStaleExports(ctx)
}

func (r *SQLiteRepository) GetExportQueueStats(ctx context.Context) (GetExportQueueStatsRow, error) {
	return r.queries.GetExportQueueStats(ctx)
}

func (r *SQLiteRepository) RetryFailedExports(ctx context.Context) error {
	return r.queries.RetryFailedExports(ctx)
}

func entryFromRow(row Entry) core.Entry {
	return core.Entry{
		ID:          row.ID,
		Date:        core.Date{Time: row.EntryDate},
		Description: row.Description,
		Amount:      core.Amount{Value: row.Value, Currency: row.Currency},
		Kind:        core.EntryKind(row.Kind),
		Category:    row.Category,
	}
}

func budgetFromRow(row RecurringBudget) core.RecurringBudget {
	b := core.RecurringBudget{
		ID:          row.ID,
		Description: row.Description,
		Amount:      core.Amount{Value: row.Value, Currency: row.Currency},
		Period:      core.Period(row.Period),
		Kind:        core.EntryKind(row.Kind),
		Category:    row.Category,
		StartDate:   core.Date{Time: row.StartDate},
		PlaceName:   row.PlaceName,
		PlaceLat:    row.PlaceLat,
		PlaceLon:    row.PlaceLon,
	}
	if row.EndDate.Valid {
		b.EndDate = core.Date{Time: row.EndDate.Time}
	}
	return b
}

// monthRange returns the [start, end) date strings covering one month.
func monthRange(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start.Format(dateLayout), end.Format(dateLayout)
}
