package storage

import "context"

const listCategoriesByKind = `
SELECT name
FROM categories
WHERE kind = ?
ORDER BY name
`

func (q *Queries) ListCategoriesByKind(ctx context.Context, kind string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategoriesByKind, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const countCategories = `
SELECT COUNT(*) FROM categories
`

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCategories).Scan(&count)
	return count, err
}
