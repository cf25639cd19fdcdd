package report

import (
	"context"

	"cambio/internal/core"
)

// Ports for outbound report targets.
type (
	EntryWriter interface {
		Append(ctx context.Context, e core.Entry) (rowRef string, err error)
	}

	// EntryDeleter removes an exported entry from the report target. The full
	// entry is passed because the source row is already soft-deleted.
	EntryDeleter interface {
		DeleteEntry(ctx context.Context, e core.Entry) error
	}

	// SummaryWriter publishes a month overview to the report target.
	SummaryWriter interface {
		WriteMonthSummary(ctx context.Context, ov core.MonthOverview) error
	}

	CategoryReader interface {
		List(ctx context.Context) (income []string, expense []string, err error)
	}

	// RateReader returns the rate table in insertion order, the order the
	// resolver scans in.
	RateReader interface {
		ListRates(ctx context.Context) (core.RateTable, error)
	}

	// EntryLister returns the entries recorded in a given month.
	EntryLister interface {
		ListEntries(ctx context.Context, year int, month int) ([]core.Entry, error)
	}

	BudgetLister interface {
		ListActiveBudgets(ctx context.Context) ([]core.RecurringBudget, error)
	}
)
