package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cambio/internal/report"
	"cambio/internal/storage"
)

// ExportProcessorConfig holds configuration for the export queue processor
type ExportProcessorConfig struct {
	// PollInterval is how often to check for pending items (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of items to process per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the maximum retry attempts before marking as failed (default: 3)
	MaxRetries int

	// CleanupInterval is how often to clean up completed items (default: 1h)
	CleanupInterval time.Duration

	// CleanupAge is how old completed items must be before cleanup (default: 24h)
	CleanupAge time.Duration
}

// DefaultExportProcessorConfig returns sensible defaults
func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval:    10 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
		CleanupInterval: 1 * time.Hour,
		CleanupAge:      24 * time.Hour,
	}
}

// ExportProcessor drains the SQLite export queue. It is the no-broker
// alternative to the AMQP worker: the ledger service enqueues here when no
// client is configured.
type ExportProcessor struct {
	storage *storage.SQLiteRepository
	writer  report.EntryWriter
	deleter report.EntryDeleter
	config  ExportProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewExportProcessor creates a new export queue processor
func NewExportProcessor(
	storage *storage.SQLiteRepository,
	writer report.EntryWriter,
	deleter report.EntryDeleter,
	config ExportProcessorConfig,
) *ExportProcessor {
	return &ExportProcessor{
		storage: storage,
		writer:  writer,
		deleter: deleter,
		config:  config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	// Reset any stale processing items from previous crashes
	if err := p.storage.ResetStaleExports(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to reset stale export items", "error", err)
	}

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	// Signal stop
	close(p.stopCh)

	// Wait for completion or context cancellation
	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// runLoop is the main processing loop
func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	// Process immediately on startup
	p.processBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.processBatch(ctx)
		case <-cleanupTicker.C:
			p.cleanupCompleted(ctx)
		}
	}
}

// processBatch processes a single batch of pending items
func (p *ExportProcessor) processBatch(ctx context.Context) {
	items, err := p.storage.DequeueExportBatch(ctx, int64(p.config.BatchSize))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to dequeue export batch", "error", err)
		return
	}

	if len(items) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing export batch", "count", len(items))

	for _, item := range items {
		// Check if we should stop
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.storage.MarkExportProcessing(ctx, item.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark item as processing",
				"id", item.ID, "error", err)
			continue
		}

		var processErr error
		switch item.Operation {
		case "export":
			processErr = p.processExportItem(ctx, item)
		case "delete":
			processErr = p.processDeleteItem(ctx, item)
		default:
			processErr = fmt.Errorf("unknown operation: %s", item.Operation)
		}

		if processErr != nil {
			p.handleFailure(ctx, item, processErr)
		} else {
			p.handleSuccess(ctx, item)
		}
	}
}

// processExportItem writes an entry to the report target
func (p *ExportProcessor) processExportItem(ctx context.Context, item storage.ExportQueue) error {
	entry, err := p.storage.GetEntry(ctx, item.EntryID)
	if err != nil {
		return fmt.Errorf("get entry %d: %w", item.EntryID, err)
	}

	ref, err := p.writer.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("append to report: %w", err)
	}

	// Mark entry as exported in the entries table
	if err := p.storage.MarkExported(ctx, item.EntryID); err != nil {
		slog.WarnContext(ctx, "Failed to mark entry as exported",
			"entry_id", item.EntryID, "error", err)
		// Don't fail the queue item - the export actually succeeded
	}

	slog.InfoContext(ctx, "Exported entry",
		"entry_id", item.EntryID,
		"report_ref", ref)

	return nil
}

// processDeleteItem removes an entry from the report target. The source row
// is soft-deleted, so GetEntry still serves its content.
func (p *ExportProcessor) processDeleteItem(ctx context.Context, item storage.ExportQueue) error {
	if p.deleter == nil {
		slog.WarnContext(ctx, "No deleter configured, skipping delete",
			"entry_id", item.EntryID)
		return nil // Not an error - just skip
	}

	entry, err := p.storage.GetEntry(ctx, item.EntryID)
	if err != nil {
		return fmt.Errorf("get entry %d: %w", item.EntryID, err)
	}

	if err := p.deleter.DeleteEntry(ctx, entry); err != nil {
		return fmt.Errorf("delete from report: %w", err)
	}

	slog.InfoContext(ctx, "Removed entry from report",
		"entry_id", item.EntryID)

	return nil
}

// handleSuccess marks an item as completed
func (p *ExportProcessor) handleSuccess(ctx context.Context, item storage.ExportQueue) {
	if err := p.storage.MarkExportComplete(ctx, item.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark export complete",
			"id", item.ID, "error", err)
	}
}

// handleFailure handles a failed export attempt with retry logic
func (p *ExportProcessor) handleFailure(ctx context.Context, item storage.ExportQueue, processErr error) {
	slog.WarnContext(ctx, "Export processing failed",
		"id", item.ID,
		"operation", item.Operation,
		"attempt", item.Attempts+1,
		"error", processErr)

	if item.Attempts+1 >= int64(p.config.MaxRetries) {
		// Max retries exceeded - mark as failed
		if err := p.storage.MarkExportFailed(ctx, item.ID, processErr.Error()); err != nil {
			slog.ErrorContext(ctx, "Failed to mark export as failed",
				"id", item.ID, "error", err)
		}

		// Also flag the entry itself
		if item.Operation == "export" {
			if err := p.storage.MarkExportError(ctx, item.EntryID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark entry export error",
					"entry_id", item.EntryID, "error", err)
			}
		}

		slog.ErrorContext(ctx, "Export item failed permanently after max retries",
			"id", item.ID,
			"entry_id", item.EntryID,
			"attempts", item.Attempts+1)
	} else {
		// Schedule retry on the next poll
		if err := p.storage.IncrementExportAttempt(ctx, item.ID, processErr.Error()); err != nil {
			slog.ErrorContext(ctx, "Failed to increment export attempt",
				"id", item.ID, "error", err)
		}
	}
}

// cleanupCompleted removes old completed items
func (p *ExportProcessor) cleanupCompleted(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupAge)
	if err := p.storage.CleanupCompletedExports(ctx, cutoff); err != nil {
		slog.ErrorContext(ctx, "Failed to cleanup completed exports", "error", err)
	}
}

// Stats returns current queue statistics
func (p *ExportProcessor) Stats(ctx context.Context) (storage.GetExportQueueStatsRow, error) {
	return p.storage.GetExportQueueStats(ctx)
}

// RetryFailed resets all failed items for retry
func (p *ExportProcessor) RetryFailed(ctx context.Context) error {
	return p.storage.RetryFailedExports(ctx)
}
