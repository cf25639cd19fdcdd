package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cambio/internal/core"
	"cambio/internal/storage"
)

// RecurringProcessor posts ledger entries from recurring budget lines.
type RecurringProcessor struct {
	storage       *storage.SQLiteRepository
	ledgerService *LedgerService
}

// NewRecurringProcessor creates a new recurring budget processor
func NewRecurringProcessor(storage *storage.SQLiteRepository, ledgerService *LedgerService) *RecurringProcessor {
	return &RecurringProcessor{
		storage:       storage,
		ledgerService: ledgerService,
	}
}

// ProcessDueBudgets posts an entry for every budget whose cadence has come
// around and returns the number posted. One failing budget does not stop
// the others.
func (p *RecurringProcessor) ProcessDueBudgets(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.ledgerService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	candidates, err := p.storage.DueCandidateBudgets(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to get due candidate budgets: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring budgets",
		"total_active", len(candidates),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, c := range candidates {
		checker, err := GetScheduleChecker(c.Budget.Period)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping budget with unknown period",
				"budget_id", c.Budget.ID,
				"period", c.Budget.Period)
			continue
		}

		if !checker.IsDue(c.LastPostedAt, now, c.Budget.StartDate) {
			continue
		}

		entry := core.Entry{
			Date:        core.Date{Time: now},
			Description: c.Budget.Description,
			Amount:      c.Budget.Amount,
			Kind:        c.Budget.Kind,
			Category:    c.Budget.Category,
		}

		if _, err := p.ledgerService.CreateEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to create entry from budget",
				"budget_id", c.Budget.ID,
				"description", c.Budget.Description,
				"error", err)
			continue
		}

		if err := p.storage.UpdateBudgetLastPosted(ctx, c.Budget.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update last posted date",
				"budget_id", c.Budget.ID,
				"error", err)
			// Continue anyway - the entry was created successfully
		}

		processedCount++
		slog.InfoContext(ctx, "Posted entry from recurring budget",
			"budget_id", c.Budget.ID,
			"description", c.Budget.Description,
			"value", c.Budget.Amount.Value,
			"currency", c.Budget.Amount.Currency,
			"period", c.Budget.Period)
	}

	slog.InfoContext(ctx, "Recurring budget processing complete",
		"posted", processedCount,
		"total_checked", len(candidates))

	return processedCount, nil
}
