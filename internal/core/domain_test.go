package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestAmountValidate(t *testing.T) {
	cases := []struct {
		a  Amount
		ok bool
	}{
		{Amount{Value: 1, Currency: "EUR"}, true},
		{Amount{Value: 0.01, Currency: "USD"}, true},
		{Amount{Value: 0, Currency: "EUR"}, false},
		{Amount{Value: -5, Currency: "EUR"}, false},
		{Amount{Value: 1, Currency: "eur"}, false},
		{Amount{Value: 1, Currency: ""}, false},
	}
	for i, tc := range cases {
		err := tc.a.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Amount{Value: 1, Currency: "EUR"},
		Kind:        Expense,
		Category:    "Spesa",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Entry{
		{Date: Date{Time: time.Time{}}, Description: "a", Amount: Amount{Value: 1, Currency: "EUR"}, Kind: Expense, Category: "c"}, // zero date
		{Date: NewDate(2025, 1, 1), Description: "", Amount: Amount{Value: 1, Currency: "EUR"}, Kind: Expense, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Amount{Value: 0, Currency: "EUR"}, Kind: Expense, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Amount{Value: 1, Currency: "EUR"}, Kind: EntryKind("transfer"), Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Amount{Value: 1, Currency: "EUR"}, Kind: Income, Category: ""},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecurringBudgetValidate(t *testing.T) {
	good := RecurringBudget{
		Description: "Affitto",
		Amount:      Amount{Value: 950, Currency: "EUR"},
		Period:      Monthly,
		Kind:        Expense,
		Category:    "Casa",
		StartDate:   NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	withEnd := good
	withEnd.EndDate = NewDate(2025, 12, 31)
	if err := withEnd.Validate(); err != nil {
		t.Fatalf("expected ok with end date, got %v", err)
	}

	bads := []RecurringBudget{
		func() RecurringBudget { b := good; b.Period = Period("daily"); return b }(),
		func() RecurringBudget { b := good; b.StartDate = Date{Time: time.Time{}}; return b }(),
		func() RecurringBudget { b := good; b.EndDate = NewDate(2024, 12, 31); return b }(), // end before start
		func() RecurringBudget { b := good; b.Description = ""; return b }(),
		func() RecurringBudget { b := good; b.Amount = Amount{Value: -1, Currency: "EUR"}; return b }(),
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNormalizeCurrencyCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"eur", "EUR"},
		{" usd ", "USD"},
		{"JPY", "JPY"},
		{"", ""},
	}
	for i, tc := range cases {
		if got := NormalizeCurrencyCode(tc.in); got != tc.want {
			t.Fatalf("case %d got %q, want %q", i, got, tc.want)
		}
	}
}
