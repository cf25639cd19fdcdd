package report

import (
	"math"
	"testing"

	"cambio/internal/core"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMonthName(t *testing.T) {
	cases := []struct {
		month int
		want  string
	}{
		{1, "Gennaio"},
		{6, "Giugno"},
		{12, "Dicembre"},
		{0, ""},
		{13, ""},
	}
	for _, tc := range cases {
		if got := MonthName(tc.month); got != tc.want {
			t.Errorf("MonthName(%d) = %q, want %q", tc.month, got, tc.want)
		}
	}
}

func TestBuildMonthOverview(t *testing.T) {
	rates := core.RateTable{
		{Base: "EUR", Target: "USD", Rate: 1.08},
		{Base: "USD", Target: "JPY", Rate: 147.0},
	}
	entries := []core.Entry{
		{Date: core.NewDate(2026, 3, 1), Description: "Stipendio", Amount: core.Amount{Value: 2000, Currency: "EUR"}, Kind: core.Income, Category: "Stipendio"},
		{Date: core.NewDate(2026, 3, 5), Description: "Spesa settimanale", Amount: core.Amount{Value: 150, Currency: "EUR"}, Kind: core.Expense, Category: "Spesa"},
		{Date: core.NewDate(2026, 3, 8), Description: "Streaming", Amount: core.Amount{Value: 10, Currency: "USD"}, Kind: core.Expense, Category: "Divertimento"},
		{Date: core.NewDate(2026, 3, 12), Description: "Regalo", Amount: core.Amount{Value: 5000, Currency: "KRW"}, Kind: core.Expense, Category: "Regali"},
		{Date: core.NewDate(2026, 3, 20), Description: "Spesa", Amount: core.Amount{Value: 50, Currency: "EUR"}, Kind: core.Expense, Category: "Spesa"},
	}

	ov := BuildMonthOverview(2026, 3, "EUR", entries, rates)

	if ov.Year != 2026 || ov.Month != 3 || ov.Display != "EUR" {
		t.Fatalf("unexpected header: %+v", ov)
	}
	if !almostEqual(ov.Income.Value, 2000) {
		t.Errorf("Income = %v, want 2000", ov.Income.Value)
	}
	wantExpense := 150 + 10*(1.0/1.08) + 50
	if !almostEqual(ov.Expense.Value, wantExpense) {
		t.Errorf("Expense = %v, want %v", ov.Expense.Value, wantExpense)
	}
	if !almostEqual(ov.Balance.Value, 2000-wantExpense) {
		t.Errorf("Balance = %v, want %v", ov.Balance.Value, 2000-wantExpense)
	}
	if ov.Unconverted != 1 {
		t.Errorf("Unconverted = %d, want 1", ov.Unconverted)
	}
	if ov.Income.Currency != "EUR" || ov.Expense.Currency != "EUR" {
		t.Errorf("totals should carry the display currency, got %q/%q", ov.Income.Currency, ov.Expense.Currency)
	}

	if len(ov.ByCategory) != 2 {
		t.Fatalf("ByCategory = %v, want 2 entries", ov.ByCategory)
	}
	if ov.ByCategory[0].Name != "Spesa" || !almostEqual(ov.ByCategory[0].Amount.Value, 200) {
		t.Errorf("top category = %+v, want Spesa 200", ov.ByCategory[0])
	}
	if ov.ByCategory[1].Name != "Divertimento" {
		t.Errorf("second category = %+v, want Divertimento", ov.ByCategory[1])
	}
}

func TestBuildMonthOverviewEmpty(t *testing.T) {
	ov := BuildMonthOverview(2026, 1, "EUR", nil, nil)
	if ov.Income.Value != 0 || ov.Expense.Value != 0 || ov.Balance.Value != 0 {
		t.Errorf("empty month should have zero totals: %+v", ov)
	}
	if ov.Unconverted != 0 || len(ov.ByCategory) != 0 {
		t.Errorf("empty month should have no categories: %+v", ov)
	}
}

func TestBuildBudgetOverview(t *testing.T) {
	rates := core.RateTable{
		{Base: "GBP", Target: "USD", Rate: 1.27},
		{Base: "EUR", Target: "USD", Rate: 1.08},
	}
	budgets := []core.RecurringBudget{
		{ID: 1, Description: "Affitto", Amount: core.Amount{Value: 950, Currency: "EUR"}, Period: core.Monthly, Kind: core.Expense, Category: "Casa", StartDate: core.NewDate(2026, 1, 1)},
		{ID: 2, Description: "Spesa cibo", Amount: core.Amount{Value: 100, Currency: "GBP"}, Period: core.Weekly, Kind: core.Expense, Category: "Spesa", StartDate: core.NewDate(2026, 1, 1)},
		{ID: 3, Description: "Stipendio", Amount: core.Amount{Value: 36000, Currency: "USD"}, Period: core.Annual, Kind: core.Income, Category: "Stipendio", StartDate: core.NewDate(2026, 1, 1)},
		{ID: 4, Description: "Palestra", Amount: core.Amount{Value: 3000, Currency: "CZK"}, Period: core.Monthly, Kind: core.Expense, Category: "Salute", StartDate: core.NewDate(2026, 1, 1)},
	}

	ov := BuildBudgetOverview("USD", budgets, rates)

	if len(ov.Lines) != 4 {
		t.Fatalf("Lines = %d, want 4", len(ov.Lines))
	}
	if !almostEqual(ov.Lines[0].Monthly.Value, 950*1.08) || ov.Lines[0].Monthly.Currency != "USD" {
		t.Errorf("Affitto line = %+v, want %v USD", ov.Lines[0].Monthly, 950*1.08)
	}
	if !almostEqual(ov.Lines[1].Monthly.Value, 433.0*1.27) {
		t.Errorf("weekly line = %v, want %v", ov.Lines[1].Monthly.Value, 433.0*1.27)
	}
	if !almostEqual(ov.Lines[2].Monthly.Value, 3000) {
		t.Errorf("annual line = %v, want 3000", ov.Lines[2].Monthly.Value)
	}

	// No path for CZK: the line keeps its own currency and is flagged.
	if !ov.Lines[3].Unconverted {
		t.Error("CZK line should be flagged unconverted")
	}
	if ov.Lines[3].Monthly.Currency != "CZK" || !almostEqual(ov.Lines[3].Monthly.Value, 3000) {
		t.Errorf("CZK line = %+v, want 3000 CZK unchanged", ov.Lines[3].Monthly)
	}

	if !almostEqual(ov.MonthlyIncome.Value, 3000) {
		t.Errorf("MonthlyIncome = %v, want 3000", ov.MonthlyIncome.Value)
	}
	wantExpense := 950*1.08 + 433.0*1.27
	if !almostEqual(ov.MonthlyExpense.Value, wantExpense) {
		t.Errorf("MonthlyExpense = %v, want %v", ov.MonthlyExpense.Value, wantExpense)
	}
	if ov.Unconverted != 1 {
		t.Errorf("Unconverted = %d, want 1", ov.Unconverted)
	}
}
