package http

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"cambio/internal/core"
)

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: parsedTime}, nil
}

// displayCurrency resolves the display currency for a request: the
// display query parameter when it holds a plausible code, the server
// default otherwise.
func (s *Server) displayCurrency(r *http.Request) string {
	code := core.NormalizeCurrencyCode(r.URL.Query().Get("display"))
	if core.ValidCurrencyCode(code) {
		return code
	}
	return s.display
}

// knownCurrencies returns the codes selectable in entry and budget
// forms: everything the rate table mentions plus the display currency.
// Errors degrade to the display currency alone; the form stays usable.
func (s *Server) knownCurrencies(ctx context.Context, display string) []string {
	codes := []string{display}
	rates, err := s.backend.ListRates(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Rate list error while building currency options", "error", err)
		return codes
	}
	for _, code := range rates.Currencies() {
		if code != display {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// periodOption pairs a budget cadence with its form label.
type periodOption struct {
	Value core.Period
	Label string
}

func periodOptions() []periodOption {
	return []periodOption{
		{core.Weekly, "Settimanale"},
		{core.Biweekly, "Quindicinale"},
		{core.Monthly, "Mensile"},
		{core.Annual, "Annuale"},
	}
}

// periodLabel returns the Italian label for a cadence.
func periodLabel(p core.Period) string {
	for _, opt := range periodOptions() {
		if opt.Value == p {
			return opt.Label
		}
	}
	return string(p)
}

// kindLabel returns the Italian label for an entry kind.
func kindLabel(k core.EntryKind) string {
	switch k {
	case core.Income:
		return "Entrata"
	case core.Expense:
		return "Spesa"
	default:
		return string(k)
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
