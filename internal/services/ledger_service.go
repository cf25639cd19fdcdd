package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"cambio/internal/amqp"
	"cambio/internal/core"
	"cambio/internal/storage"
)

// LedgerService orchestrates entry operations across SQLite and AMQP.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateEntry saves an entry locally and hands it to the export pipeline.
func (s *LedgerService) CreateEntry(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	// Save to SQLite first (fast, reliable)
	ref, err := s.storage.Append(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse entry ID", "ref", ref, "error", err)
		return ref, nil // Return anyway, SQLite save succeeded
	}

	// Publish async export message (non-blocking, version 1 for new entry)
	if err := s.publishRecorded(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", id, "error", err)
		// Don't fail the request - the entry is saved locally and the
		// pending-export catch-up picks it up later
	}

	return ref, nil
}

// DeleteEntry soft deletes an entry locally and hands the removal to the
// export pipeline. The entry is read first because the delete event carries
// its content.
func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	e, err := s.storage.GetEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("load entry: %w", err)
	}

	if err := s.storage.SoftDeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}

	if err := s.publishDeleted(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
		// Don't fail the request - the entry is deleted locally
	}

	return nil
}

// publishRecorded sends the recorded event, or enqueues it for the fallback
// processor when no broker is configured.
func (s *LedgerService) publishRecorded(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		return s.storage.EnqueueExport(ctx, id, "export")
	}
	return s.amqpClient.PublishEntryRecorded(ctx, id, version)
}

func (s *LedgerService) publishDeleted(ctx context.Context, e core.Entry) error {
	if s.amqpClient == nil {
		return s.storage.EnqueueExport(ctx, e.ID, "delete")
	}
	return s.amqpClient.PublishEntryDeleted(ctx, amqp.NewEntryDeletedMessage(e))
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
