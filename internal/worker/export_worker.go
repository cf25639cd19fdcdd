package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cambio/internal/amqp"
	"cambio/internal/core"
	"cambio/internal/report"
	"cambio/internal/storage"
)

// ExportWorker drains entry events from SQLite into the report target and
// keeps the month summary rows current.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	writer    report.EntryWriter
	deleter   report.EntryDeleter
	summary   report.SummaryWriter
	display   string
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, writer report.EntryWriter, deleter report.EntryDeleter, summary report.SummaryWriter, display string, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		summary:   summary,
		display:   display,
		batchSize: batchSize,
	}
}

// HandleEntryRecorded processes a single entry-recorded message from AMQP
func (w *ExportWorker) HandleEntryRecorded(ctx context.Context, msg *amqp.EntryRecordedMessage) error {
	slog.InfoContext(ctx, "Processing entry-recorded message",
		"id", msg.ID,
		"version", msg.Version)

	// Get the entry from SQLite by ID
	entry, err := w.storage.GetEntry(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.exportEntry(ctx, msg.ID, entry); err != nil {
		return fmt.Errorf("export entry: %w", err)
	}

	w.refreshMonthSummary(ctx, entry.Date.Year(), entry.Date.Month())

	return nil
}

// HandleEntryDeleted processes a single entry-deleted message from AMQP
func (w *ExportWorker) HandleEntryDeleted(ctx context.Context, msg *amqp.EntryDeletedMessage) error {
	slog.InfoContext(ctx, "Processing entry-deleted message",
		"id", msg.ID)

	// Check if we have a deleter configured
	if w.deleter == nil {
		slog.WarnContext(ctx, "No entry deleter configured, skipping report deletion",
			"id", msg.ID)
		return nil
	}

	// The report row is matched by date, description and amount, so the
	// entry is rebuilt from the message payload rather than fetched: the
	// source row may already be purged by the time this message arrives.
	day, err := time.Parse("2006-01-02", msg.Date)
	if err != nil {
		return fmt.Errorf("parse message date %q: %w", msg.Date, err)
	}

	entry := core.Entry{
		ID:          msg.ID,
		Date:        core.Date{Time: day},
		Description: msg.Description,
		Amount:      core.Amount{Value: msg.Value, Currency: msg.Currency},
	}

	if err := w.deleter.DeleteEntry(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "Failed to delete entry from report",
			"id", msg.ID,
			"error", err,
			"timestamp", msg.Timestamp)
		return fmt.Errorf("delete entry from report: %w", err)
	}

	slog.InfoContext(ctx, "Removed entry from report",
		"id", msg.ID,
		"timestamp", msg.Timestamp)

	w.refreshMonthSummary(ctx, day.Year(), int(day.Month()))

	return nil
}

// ProcessPendingEntries processes any entries that haven't been exported yet
// This is a backup mechanism in case AMQP messages are lost
func (w *ExportWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.GetPendingExportEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	// Touched months share one summary refresh at the end of the batch
	months := make(map[[2]int]struct{})

	for _, p := range pending {
		entry, err := w.storage.GetEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry", "id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.exportEntry(ctx, p.ID, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry", "id", p.ID, "error", err)
			continue
		}

		months[[2]int{entry.Date.Year(), entry.Date.Month()}] = struct{}{}
	}

	for m := range months {
		w.refreshMonthSummary(ctx, m[0], m[1])
	}

	return nil
}

// StartupExportCheck verifies and exports any pending entries at worker startup
// This is useful to recover from missed AMQP messages or worker downtime
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.GetPendingExportEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	months := make(map[[2]int]struct{})

	for _, p := range pending {
		entry, err := w.storage.GetEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry for startup export",
				"id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.exportEntry(ctx, p.ID, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		months[[2]int{entry.Date.Year(), entry.Date.Month()}] = struct{}{}
		successCount++
	}

	for m := range months {
		w.refreshMonthSummary(ctx, m[0], m[1])
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportEntry(ctx context.Context, id int64, entry core.Entry) error {
	ref, err := w.writer.Append(ctx, entry)
	if err != nil {
		// Mark as export error
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to report: %w", err)
	}

	// Mark as successfully exported
	if err := w.storage.MarkExported(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Exported entry",
		"id", id,
		"report_ref", ref,
		"description", entry.Description,
		"value", entry.Amount.Value,
		"currency", entry.Amount.Currency)

	return nil
}

// refreshMonthSummary rebuilds the summary row of one month. Best effort: a
// stale row is repaired by the next export touching the same month.
func (w *ExportWorker) refreshMonthSummary(ctx context.Context, year, month int) {
	if w.summary == nil {
		return
	}

	entries, err := w.storage.ListEntries(ctx, year, month)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load entries for summary refresh",
			"year", year, "month", month, "error", err)
		return
	}

	rates, err := w.storage.ListRates(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load rates for summary refresh",
			"year", year, "month", month, "error", err)
		return
	}

	overview := report.BuildMonthOverview(year, month, w.display, entries, rates)
	if err := w.summary.WriteMonthSummary(ctx, overview); err != nil {
		slog.WarnContext(ctx, "Failed to write month summary",
			"year", year, "month", month, "error", err)
		return
	}

	slog.DebugContext(ctx, "Month summary refreshed",
		"year", year, "month", month, "display", w.display)
}
