package memory

import (
	"context"
	"testing"

	"cambio/internal/core"
)

func TestStoreAppendAndList(t *testing.T) {
	s := New([]string{"Stipendio", "Stipendio"}, []string{"Casa", "Spesa", "Casa"}, nil)
	income, expense, err := s.List(context.Background())
	if err != nil || len(income) != 1 || len(expense) != 2 {
		t.Fatalf("unexpected list: income=%v expense=%v err=%v", income, expense, err)
	}

	ref, err := s.Append(context.Background(), core.Entry{
		Date:        core.NewDate(2026, 1, 10),
		Description: "t",
		Amount:      core.Amount{Value: 12.5, Currency: "EUR"},
		Kind:        core.Expense,
		Category:    "Casa",
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	entries, err := s.ListEntries(context.Background(), 2026, 1)
	if err != nil || len(entries) != 1 || entries[0].ID != 1 {
		t.Fatalf("unexpected entries: %v err=%v", entries, err)
	}
	if got, _ := s.ListEntries(context.Background(), 2026, 2); len(got) != 0 {
		t.Fatalf("expected empty month, got %v", got)
	}
}

func TestStoreAppendValidates(t *testing.T) {
	s := New(nil, nil, nil)
	_, err := s.Append(context.Background(), core.Entry{
		Date:        core.NewDate(2026, 1, 10),
		Description: "t",
		Amount:      core.Amount{Value: 0, Currency: "EUR"},
		Kind:        core.Expense,
		Category:    "Casa",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestStoreDeleteEntry(t *testing.T) {
	s := New(nil, nil, nil)
	ctx := context.Background()
	e := core.Entry{
		Date:        core.NewDate(2026, 3, 1),
		Description: "t",
		Amount:      core.Amount{Value: 5, Currency: "EUR"},
		Kind:        core.Expense,
		Category:    "Casa",
	}
	if _, err := s.Append(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx, 1); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if entries, _ := s.ListEntries(ctx, 2026, 3); len(entries) != 0 {
		t.Fatalf("entry should be gone, got %v", entries)
	}
	if err := s.DeleteEntry(ctx, 1); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestStoreRatesPreserveOrder(t *testing.T) {
	s := New(nil, nil, nil)
	ctx := context.Background()

	first, err := s.CreateRate(ctx, core.CurrencyRate{Base: "EUR", Target: "USD", Rate: 1.08})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRate(ctx, core.CurrencyRate{Base: "EUR", Target: "USD", Rate: 2.00}); err != nil {
		t.Fatal(err)
	}

	table, err := s.ListRates(ctx)
	if err != nil || len(table) != 2 {
		t.Fatalf("unexpected rates: %v err=%v", table, err)
	}
	// Insertion order feeds the resolver's first-match rule.
	if rate, ok := table.Resolve("EUR", "USD"); !ok || rate != 1.08 {
		t.Errorf("Resolve() = %v, %v; want 1.08 from the first row", rate, ok)
	}

	if err := s.DeleteRate(ctx, first); err != nil {
		t.Fatalf("DeleteRate() error = %v", err)
	}
	table, _ = s.ListRates(ctx)
	if rate, ok := table.Resolve("EUR", "USD"); !ok || rate != 2.00 {
		t.Errorf("after delete Resolve() = %v, %v; want 2.00", rate, ok)
	}

	if _, err := s.CreateRate(ctx, core.CurrencyRate{Base: "EUR", Target: "EUR", Rate: 1}); err == nil {
		t.Fatal("expected validation error for same pair")
	}
}

func TestStoreBudgets(t *testing.T) {
	s := New(nil, nil, nil)
	ctx := context.Background()

	id, err := s.CreateBudget(ctx, core.RecurringBudget{
		Description: "Affitto",
		Amount:      core.Amount{Value: 950, Currency: "EUR"},
		Period:      core.Monthly,
		Kind:        core.Expense,
		Category:    "Casa",
		StartDate:   core.NewDate(2026, 1, 1),
	})
	if err != nil {
		t.Fatal(err)
	}
	budgets, err := s.ListActiveBudgets(ctx)
	if err != nil || len(budgets) != 1 || budgets[0].ID != id {
		t.Fatalf("unexpected budgets: %v err=%v", budgets, err)
	}
	if err := s.DeactivateBudget(ctx, id); err != nil {
		t.Fatalf("DeactivateBudget() error = %v", err)
	}
	if budgets, _ := s.ListActiveBudgets(ctx); len(budgets) != 0 {
		t.Fatalf("budget should be gone, got %v", budgets)
	}
}

func TestNewSeeded(t *testing.T) {
	s := NewSeeded()
	income, expense, _ := s.List(context.Background())
	if len(income) == 0 || len(expense) == 0 {
		t.Fatal("seeded store should have categories")
	}

	table, err := s.ListRates(context.Background())
	if err != nil || len(table) == 0 {
		t.Fatalf("seeded store should have rates: %v", err)
	}
	// Every seeded currency reaches every other through the USD bridge.
	if _, ok := table.Resolve("EUR", "JPY"); !ok {
		t.Error("EUR should reach JPY via the bridge")
	}
	if _, ok := table.Resolve("GBP", "KRW"); !ok {
		t.Error("GBP should reach KRW via the bridge")
	}
}
