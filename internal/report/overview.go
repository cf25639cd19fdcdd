package report

import (
	"sort"

	"cambio/internal/core"
)

var monthNames = [12]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// MonthName returns the Italian name for a month index (1-12).
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// BuildMonthOverview aggregates a month of entries into totals expressed in
// the display currency. Entries with no conversion path keep their original
// amount and are excluded from the totals; they are reported through the
// Unconverted counter instead.
func BuildMonthOverview(year, month int, display string, entries []core.Entry, rates core.RateTable) core.MonthOverview {
	ov := core.MonthOverview{
		Year:    year,
		Month:   month,
		Display: display,
		Income:  core.Amount{Currency: display},
		Expense: core.Amount{Currency: display},
		Balance: core.Amount{Currency: display},
	}
	byCat := map[string]float64{}
	for _, e := range entries {
		conv := rates.Convert(e.Amount, display)
		if conv.Missing {
			ov.Unconverted++
			continue
		}
		switch e.Kind {
		case core.Income:
			ov.Income.Value += conv.Amount.Value
		case core.Expense:
			ov.Expense.Value += conv.Amount.Value
			byCat[e.Category] += conv.Amount.Value
		}
	}
	ov.Balance.Value = ov.Income.Value - ov.Expense.Value

	ov.ByCategory = make([]core.CategoryAmount, 0, len(byCat))
	for name, value := range byCat {
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{
			Name:   name,
			Amount: core.Amount{Value: value, Currency: display},
		})
	}
	sort.Slice(ov.ByCategory, func(i, j int) bool {
		a, b := ov.ByCategory[i], ov.ByCategory[j]
		if a.Amount.Value != b.Amount.Value {
			return a.Amount.Value > b.Amount.Value
		}
		return a.Name < b.Name
	})
	return ov
}

// BuildBudgetOverview normalizes each recurring budget to its monthly
// equivalent and converts it to the display currency. Lines with no
// conversion path keep the normalized amount in their own currency, carry
// the Unconverted flag, and stay out of the totals.
func BuildBudgetOverview(display string, budgets []core.RecurringBudget, rates core.RateTable) core.BudgetOverview {
	ov := core.BudgetOverview{
		Display:        display,
		MonthlyIncome:  core.Amount{Currency: display},
		MonthlyExpense: core.Amount{Currency: display},
	}
	for _, b := range budgets {
		monthly := core.MonthlyEquivalent(b.Amount.Value, b.Period)
		conv := rates.Convert(core.Amount{Value: monthly, Currency: b.Amount.Currency}, display)
		line := core.BudgetLine{Budget: b, Monthly: conv.Amount}
		if conv.Missing {
			line.Unconverted = true
			ov.Unconverted++
		} else {
			switch b.Kind {
			case core.Income:
				ov.MonthlyIncome.Value += conv.Amount.Value
			case core.Expense:
				ov.MonthlyExpense.Value += conv.Amount.Value
			}
		}
		ov.Lines = append(ov.Lines, line)
	}
	return ov
}
