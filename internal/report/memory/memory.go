package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cambio/assets"
	"cambio/internal/core"
	"cambio/internal/report"
)

// Store is an in-memory backend for demos and tests. Nothing survives a
// restart and nothing is exported.
type Store struct {
	mu      sync.Mutex
	income  []string
	expense []string
	rates   core.RateTable
	entries []core.Entry
	budgets []core.RecurringBudget

	nextEntryID  int64
	nextRateID   int64
	nextBudgetID int64
}

// Ensure interface conformance
var (
	_ report.EntryWriter    = (*Store)(nil)
	_ report.EntryLister    = (*Store)(nil)
	_ report.CategoryReader = (*Store)(nil)
	_ report.RateReader     = (*Store)(nil)
	_ report.BudgetLister   = (*Store)(nil)
)

func New(income, expense []string, rates core.RateTable) *Store {
	s := &Store{income: dedupe(income), expense: dedupe(expense)}
	for _, r := range rates {
		s.nextRateID++
		r.ID = s.nextRateID
		s.rates = append(s.rates, r)
	}
	return s
}

// NewSeeded returns a store preloaded with the same categories and starter
// rates the sqlite migrations seed.
func NewSeeded() *Store {
	income := []string{"Altre entrate", "Bonus", "Dividendi", "Rimborsi", "Stipendio"}
	expense := []string{
		"Altre spese", "Casa", "Divertimento", "Regali", "Ristoranti",
		"Salute", "Spesa", "Tasse", "Trasporti", "Vestiti", "Viaggi",
	}
	rates, err := core.ParseRatesCSV(bytes.NewReader(assets.StarterRatesCSV()))
	if err != nil || len(rates) == 0 {
		rates = core.RateTable{{Base: "EUR", Target: "USD", Rate: 1.08}}
	}
	return New(income, expense, rates)
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntryID++
	e.ID = s.nextEntryID
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", e.ID), nil
}

func (s *Store) ListEntries(_ context.Context, year, month int) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Entry
	for _, e := range s.entries {
		if e.Date.Year() == year && int(e.Date.Month()) == month {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry %d not found", id)
}

// List returns income and expense category names.
func (s *Store) List(_ context.Context) ([]string, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	income := append([]string(nil), s.income...)
	expense := append([]string(nil), s.expense...)
	return income, expense, nil
}

// ListRates returns rates in insertion order, the order the resolver scans in.
func (s *Store) ListRates(_ context.Context) (core.RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(core.RateTable(nil), s.rates...), nil
}

func (s *Store) CreateRate(_ context.Context, r core.CurrencyRate) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRateID++
	r.ID = s.nextRateID
	s.rates = append(s.rates, r)
	return r.ID, nil
}

func (s *Store) DeleteRate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rates {
		if r.ID == id {
			s.rates = append(s.rates[:i], s.rates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("rate %d not found", id)
}

func (s *Store) ListActiveBudgets(_ context.Context) ([]core.RecurringBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringBudget(nil), s.budgets...), nil
}

func (s *Store) CreateBudget(_ context.Context, b core.RecurringBudget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBudgetID++
	b.ID = s.nextBudgetID
	s.budgets = append(s.budgets, b)
	return b.ID, nil
}

func (s *Store) DeactivateBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.budgets {
		if b.ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("budget %d not found", id)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
