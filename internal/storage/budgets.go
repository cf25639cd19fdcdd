package storage

import (
	"context"
	"database/sql"
)

const budgetColumns = `id, description, value, currency, period, kind, category, start_date, end_date, place_name, place_lat, place_lon, last_posted_at, active, created_at`

func scanBudget(row interface{ Scan(...interface{}) error }) (RecurringBudget, error) {
	var b RecurringBudget
	err := row.Scan(
		&b.ID,
		&b.Description,
		&b.Value,
		&b.Currency,
		&b.Period,
		&b.Kind,
		&b.Category,
		&b.StartDate,
		&b.EndDate,
		&b.PlaceName,
		&b.PlaceLat,
		&b.PlaceLon,
		&b.LastPostedAt,
		&b.Active,
		&b.CreatedAt,
	)
	return b, err
}

const createBudget = `
INSERT INTO recurring_budgets (description, value, currency, period, kind, category, start_date, end_date, place_name, place_lat, place_lon)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + budgetColumns

type CreateBudgetParams struct {
	Description string
	Value       float64
	Currency    string
	Period      string
	Kind        string
	Category    string
	StartDate   string
	EndDate     sql.NullString
	PlaceName   string
	PlaceLat    float64
	PlaceLon    float64
}

func (q *Queries) CreateBudget(ctx context.Context, arg CreateBudgetParams) (RecurringBudget, error) {
	row := q.db.QueryRowContext(ctx, createBudget,
		arg.Description,
		arg.Value,
		arg.Currency,
		arg.Period,
		arg.Kind,
		arg.Category,
		arg.StartDate,
		arg.EndDate,
		arg.PlaceName,
		arg.PlaceLat,
		arg.PlaceLon,
	)
	return scanBudget(row)
}

const getBudget = `
SELECT ` + budgetColumns + `
FROM recurring_budgets
WHERE id = ?
`

func (q *Queries) GetBudget(ctx context.Context, id int64) (RecurringBudget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudget, id))
}

const listActiveBudgets = `
SELECT ` + budgetColumns + `
FROM recurring_budgets
WHERE active = 1
ORDER BY id
`

func (q *Queries) ListActiveBudgets(ctx context.Context) ([]RecurringBudget, error) {
	rows, err := q.db.QueryContext(ctx, listActiveBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringBudget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const listDueCandidateBudgets = `
SELECT ` + budgetColumns + `
FROM recurring_budgets
WHERE active = 1 AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
ORDER BY id
`

type ListDueCandidateBudgetsParams struct {
	Now string
}

func (q *Queries) ListDueCandidateBudgets(ctx context.Context, arg ListDueCandidateBudgetsParams) ([]RecurringBudget, error) {
	rows, err := q.db.QueryContext(ctx, listDueCandidateBudgets, arg.Now, arg.Now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringBudget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const deactivateBudget = `
UPDATE recurring_budgets SET active = 0 WHERE id = ?
`

func (q *Queries) DeactivateBudget(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deactivateBudget, id)
	return err
}

const updateBudgetLastPosted = `
UPDATE recurring_budgets SET last_posted_at = ? WHERE id = ?
`

type UpdateBudgetLastPostedParams struct {
	LastPostedAt string
	ID           int64
}

func (q *Queries) UpdateBudgetLastPosted(ctx context.Context, arg UpdateBudgetLastPostedParams) error {
	_, err := q.db.ExecContext(ctx, updateBudgetLastPosted, arg.LastPostedAt, arg.ID)
	return err
}
