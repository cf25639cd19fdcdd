package storage

import (
	"context"
	"database/sql"
)

const createEntry = `
INSERT INTO entries (entry_date, description, value, currency, kind, category)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, entry_date, description, value, currency, kind, category, export_status, exported_at, created_at, deleted_at
`

type CreateEntryParams struct {
	EntryDate   string
	Description string
	Value       float64
	Currency    string
	Kind        string
	Category    string
}

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) (Entry, error) {
	row := q.db.QueryRowContext(ctx, createEntry,
		arg.EntryDate,
		arg.Description,
		arg.Value,
		arg.Currency,
		arg.Kind,
		arg.Category,
	)
	var e Entry
	err := row.Scan(
		&e.ID,
		&e.EntryDate,
		&e.Description,
		&e.Value,
		&e.Currency,
		&e.Kind,
		&e.Category,
		&e.ExportStatus,
		&e.ExportedAt,
		&e.CreatedAt,
		&e.DeletedAt,
	)
	return e, err
}

const getEntry = `
SELECT id, entry_date, description, value, currency, kind, category, export_status, exported_at, created_at, deleted_at
FROM entries
WHERE id = ?
`

func (q *Queries) GetEntry(ctx context.Context, id int64) (Entry, error) {
	row := q.db.QueryRowContext(ctx, getEntry, id)
	var e Entry
	err := row.Scan(
		&e.ID,
		&e.EntryDate,
		&e.Description,
		&e.Value,
		&e.Currency,
		&e.Kind,
		&e.Category,
		&e.ExportStatus,
		&e.ExportedAt,
		&e.CreatedAt,
		&e.DeletedAt,
	)
	return e, err
}

const listEntriesByDateRange = `
SELECT id, entry_date, description, value, currency, kind, category, export_status, exported_at, created_at, deleted_at
FROM entries
WHERE deleted_at IS NULL AND entry_date >= ? AND entry_date < ?
ORDER BY entry_date, id
`

type ListEntriesByDateRangeParams struct {
	Start string
	End   string
}

func (q *Queries) ListEntriesByDateRange(ctx context.Context, arg ListEntriesByDateRangeParams) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, listEntriesByDateRange, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.EntryDate,
			&e.Description,
			&e.Value,
			&e.Currency,
			&e.Kind,
			&e.Category,
			&e.ExportStatus,
			&e.ExportedAt,
			&e.CreatedAt,
			&e.DeletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const softDeleteEntry = `
UPDATE entries SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) SoftDeleteEntry(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, softDeleteEntry, id)
	return err
}

const markEntryExported = `
UPDATE entries SET export_status = 'exported', exported_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) MarkEntryExported(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markEntryExported, id)
	return err
}

const markEntryExportError = `
UPDATE entries SET export_status = 'error' WHERE id = ?
`

func (q *Queries) MarkEntryExportError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markEntryExportError, id)
	return err
}

const getPendingExportEntries = `
SELECT id, created_at
FROM entries
WHERE export_status = 'pending' AND deleted_at IS NULL
ORDER BY id
LIMIT ?
`

type GetPendingExportEntriesRow struct {
	ID        int64
	CreatedAt sql.NullTime
}

func (q *Queries) GetPendingExportEntries(ctx context.Context, limit int64) ([]GetPendingExportEntriesRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingExportEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetPendingExportEntriesRow
	for rows.Next() {
		var r GetPendingExportEntriesRow
		if err := rows.Scan(&r.ID, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
