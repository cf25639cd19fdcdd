package storage

import (
	"context"
	"time"
)

const enqueueExport = `
INSERT INTO export_queue (entry_id, operation)
VALUES (?, ?)
`

type EnqueueExportParams struct {
	EntryID   int64
	Operation string
}

func (q *Queries) EnqueueExport(ctx context.Context, arg EnqueueExportParams) error {
	_, err := q.db.ExecContext(ctx, enqueueExport, arg.EntryID, arg.Operation)
	return err
}

const dequeueExportBatch = `
SELECT id, entry_id, operation, status, attempts, last_error, created_at, updated_at
FROM export_queue
WHERE status = 'pending'
ORDER BY id
LIMIT ?
`

func (q *Queries) DequeueExportBatch(ctx context.Context, limit int64) ([]ExportQueue, error) {
	rows, err := q.db.QueryContext(ctx, dequeueExportBatch, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExportQueue
	for rows.Next() {
		var item ExportQueue
		if err := rows.Scan(
			&item.ID,
			&item.EntryID,
			&item.Operation,
			&item.Status,
			&item.Attempts,
			&item.LastError,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const markExportProcessing = `
UPDATE export_queue SET status = 'processing', updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) MarkExportProcessing(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markExportProcessing, id)
	return err
}

const markExportComplete = `
UPDATE export_queue SET status = 'completed', updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) MarkExportComplete(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markExportComplete, id)
	return err
}

const markExportFailed = `
UPDATE export_queue SET status = 'failed', last_error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

type MarkExportFailedParams struct {
	LastError string
	ID        int64
}

func (q *Queries) MarkExportFailed(ctx context.Context, arg MarkExportFailedParams) error {
	_, err := q.db.ExecContext(ctx, markExportFailed, arg.LastError, arg.ID)
	return err
}

const incrementExportAttempt = `
UPDATE export_queue SET status = 'pending', attempts = attempts + 1, last_error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

type IncrementExportAttemptParams struct {
	LastError string
	ID        int64
}

func (q *Queries) IncrementExportAttempt(ctx context.Context, arg IncrementExportAttemptParams) error {
	_, err := q.db.ExecContext(ctx, incrementExportAttempt, arg.LastError, arg.ID)
	return err
}

const cleanupCompletedExports = `
DELETE FROM export_queue WHERE status = 'completed' AND updated_at < ?
`

func (q *Queries) CleanupCompletedExports(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, cleanupCompletedExports, cutoff.UTC().Format("2006-01-02 15:04:05"))
	return err
}

const resetStaleExports = `
UPDATE export_queue
SET status = 'pending', updated_at = CURRENT_TIMESTAMP
WHERE status = 'processing' AND updated_at < datetime('now', '-10 minutes')
`

func (q *Queries) ResetStaleExports(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, resetStaleExports)
	return err
}

const getExportQueueStats = `
SELECT
    COUNT(CASE WHEN status = 'pending' THEN 1 END),
    COUNT(CASE WHEN status = 'processing' THEN 1 END),
    COUNT(CASE WHEN status = 'completed' THEN 1 END),
    COUNT(CASE WHEN status = 'failed' THEN 1 END)
FROM export_queue
`

type GetExportQueueStatsRow struct {
	Pending    int64
	Processing int64
	Completed  int64
	Failed     int64
}

func (q *Queries) GetExportQueueStats(ctx context.Context) (GetExportQueueStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getExportQueueStats)
	var s GetExportQueueStatsRow
	err := row.Scan(&s.Pending, &s.Processing, &s.Completed, &s.Failed)
	return s, err
}

const retryFailedExports = `
UPDATE export_queue SET status = 'pending', attempts = 0, updated_at = CURRENT_TIMESTAMP WHERE status = 'failed'
`

func (q *Queries) RetryFailedExports(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, retryFailedExports)
	return err
}
