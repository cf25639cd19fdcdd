package storage

import "context"

const createRate = `
INSERT INTO currency_rates (base_currency, target_currency, rate)
VALUES (?, ?, ?)
RETURNING id, base_currency, target_currency, rate, created_at
`

type CreateRateParams struct {
	BaseCurrency   string
	TargetCurrency string
	Rate           float64
}

func (q *Queries) CreateRate(ctx context.Context, arg CreateRateParams) (CurrencyRate, error) {
	row := q.db.QueryRowContext(ctx, createRate, arg.BaseCurrency, arg.TargetCurrency, arg.Rate)
	var r CurrencyRate
	err := row.Scan(&r.ID, &r.BaseCurrency, &r.TargetCurrency, &r.Rate, &r.CreatedAt)
	return r, err
}

const listRates = `
SELECT id, base_currency, target_currency, rate, created_at
FROM currency_rates
ORDER BY id
`

// ListRates returns rows in insertion order; the resolver's
// first-match rule depends on this ordering.
func (q *Queries) ListRates(ctx context.Context) ([]CurrencyRate, error) {
	rows, err := q.db.QueryContext(ctx, listRates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CurrencyRate
	for rows.Next() {
		var r CurrencyRate
		if err := rows.Scan(&r.ID, &r.BaseCurrency, &r.TargetCurrency, &r.Rate, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteRate = `
DELETE FROM currency_rates WHERE id = ?
`

func (q *Queries) DeleteRate(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteRate, id)
	return err
}
