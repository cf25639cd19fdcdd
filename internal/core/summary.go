package core

// CategoryAmount is a per-category total in the display currency.
type CategoryAmount struct {
	Name   string
	Amount Amount
}

// MonthOverview is a compact summary for a specific year+month with
// every entry converted into one display currency. Unconverted counts
// the entries kept at face value because no rate chain existed.
type MonthOverview struct {
	Year        int
	Month       int // 1-12
	Display     string
	Income      Amount
	Expense     Amount
	Balance     Amount
	ByCategory  []CategoryAmount
	Unconverted int
}

// BudgetLine is one recurring budget normalized to its monthly
// equivalent in the display currency.
type BudgetLine struct {
	Budget      RecurringBudget
	Monthly     Amount
	Unconverted bool
}

// BudgetOverview aggregates the normalized budget lines per kind.
type BudgetOverview struct {
	Display        string
	Lines          []BudgetLine
	MonthlyIncome  Amount
	MonthlyExpense Amount
	Unconverted    int
}
