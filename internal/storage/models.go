package storage

import (
	"database/sql"
	"time"
)

// Row types mirror the migration schema one to one. Dates are written
// as "2006-01-02" strings and come back as time.Time through the
// driver's declared-type parsing.
type (
	CurrencyRate struct {
		ID             int64
		BaseCurrency   string
		TargetCurrency string
		Rate           float64
		CreatedAt      sql.NullTime
	}

	Entry struct {
		ID           int64
		EntryDate    time.Time
		Description  string
		Value        float64
		Currency     string
		Kind         string
		Category     string
		ExportStatus string
		ExportedAt   sql.NullTime
		CreatedAt    sql.NullTime
		DeletedAt    sql.NullTime
	}

	RecurringBudget struct {
		ID           int64
		Description  string
		Value        float64
		Currency     string
		Period       string
		Kind         string
		Category     string
		StartDate    time.Time
		EndDate      sql.NullTime
		PlaceName    string
		PlaceLat     float64
		PlaceLon     float64
		LastPostedAt sql.NullTime
		Active       int64
		CreatedAt    sql.NullTime
	}

	Category struct {
		ID   int64
		Name string
		Kind string
	}

	ExportQueue struct {
		ID        int64
		EntryID   int64
		Operation string
		Status    string
		Attempts  int64
		LastError sql.NullString
		CreatedAt sql.NullTime
		UpdatedAt sql.NullTime
	}
)
