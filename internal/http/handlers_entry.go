package http

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"cambio/internal/core"
	"cambio/internal/log"
	"cambio/internal/report"
)

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", "method", r.Method, "url", r.URL.Path)
		resp.Write(w)
		return
	}

	date, err := ParseEntryDate(r.Form)
	if err != nil {
		UnprocessableEntityError("Data non valida").Write(w)
		return
	}

	desc := sanitizeInput(r.Form.Get("description"))
	valueStr := r.Form.Get("value")
	currency := core.NormalizeCurrencyCode(r.Form.Get("currency"))
	kind := core.EntryKind(sanitizeInput(r.Form.Get("kind")))
	category := sanitizeInput(r.Form.Get("category"))

	value, err := core.ParseValue(valueStr)
	if err != nil {
		UnprocessableEntityError("Importo non valido").Write(w)
		return
	}

	entry := core.Entry{
		Date:        date,
		Description: desc,
		Amount:      core.Amount{Value: value, Currency: currency},
		Kind:        kind,
		Category:    category,
	}
	if err := entry.Validate(); err != nil {
		UnprocessableEntityError("Dati non validi: " + err.Error()).Write(w)
		return
	}

	ref, err := s.backend.Append(r.Context(), entry)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save entry",
			"error", err,
			log.FieldDesc, entry.Description,
			log.FieldValue, entry.Amount.Value,
			log.FieldCurrency, entry.Amount.Currency,
			log.FieldCategory, entry.Category,
			log.FieldErrorType, log.ErrorTypeDatabase)
		InternalServerError("Errore nel salvataggio").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalEntries, 1)
	s.structured.LogEntryCreated(r.Context(), entry.Description, entry.Amount.Value, entry.Amount.Currency, entry.Category, ref)

	s.invalidateMonth(date.Year(), date.Month())

	successMsg := fmt.Sprintf("%s registrata: %s — %s (%s)",
		kindLabel(entry.Kind), entry.Description, core.FormatAmount(entry.Amount), entry.Category)

	NewHTMXResponse().
		TriggerEntryCreated(date.Year(), date.Month()).
		TriggerFormReset().
		TriggerSuccessNotification(successMsg).
		Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse delete body error", "error", err, "method", r.Method)
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}

	id, ok := parser.GetID()
	if !ok {
		BadRequestError("ID movimento mancante").Write(w)
		return
	}

	if err := s.backend.DeleteEntry(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete entry",
			"error", err,
			log.FieldEntryID, id,
			log.FieldErrorType, log.ErrorTypeDatabase)
		InternalServerError("Errore nella cancellazione del movimento").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalEntries, -1)
	s.structured.LogEntryDeleted(r.Context(), id)

	// The deleted row's month is not in the payload, so every cached
	// month view goes.
	s.invalidateAll()

	mp := ParseMonthParams(r.URL.Query())
	NewHTMXResponse().
		TriggerEntryDeleted(mp.Year, mp.Month).
		TriggerSuccessNotification("Movimento cancellato").
		Write(w)
}

// overviewRow is one category bar in the month overview.
type overviewRow struct {
	Name   string
	Amount string
	Width  int
}

// barWidth converts a category total into a percent of the widest bar,
// keeping tiny values visible.
func barWidth(value, max float64) int {
	if max <= 0 || value <= 0 {
		return 0
	}
	width := int(math.Round(value / max * 100))
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	mp := ParseMonthParams(r.URL.Query())
	if mp.Month < 1 || mp.Month > 12 {
		now := time.Now()
		s.logger.WarnContext(r.Context(), "Invalid month parameter",
			"year", mp.Year, "month", mp.Month, "corrected_to", int(now.Month()))
		mp.Month = int(now.Month())
	}
	display := s.displayCurrency(r)

	ov, err := s.getMonthOverview(r.Context(), mp.Year, mp.Month, display)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Month overview error", "error", err, "year", mp.Year, "month", mp.Month)
		_, _ = w.Write([]byte(`<section id="month-overview" class="month-overview"><div class="placeholder">Errore caricando la panoramica</div></section>`))
		return
	}
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="month-overview" class="month-overview"><div class="placeholder">Saldo: ` +
			template.HTMLEscapeString(core.FormatAmount(ov.Balance)) + `</div></section>`))
		return
	}

	var maxValue float64
	var maxName string
	for _, c := range ov.ByCategory {
		if c.Amount.Value > maxValue {
			maxValue = c.Amount.Value
			maxName = c.Name
		}
	}

	rows := make([]overviewRow, 0, len(ov.ByCategory))
	for _, c := range ov.ByCategory {
		rows = append(rows, overviewRow{
			Name:   c.Name,
			Amount: core.FormatAmount(c.Amount),
			Width:  barWidth(c.Amount.Value, maxValue),
		})
	}

	data := struct {
		Year        int
		Month       int
		MonthName   string
		Display     string
		Income      string
		Expense     string
		Balance     string
		BalanceNeg  bool
		Trend       string
		TrendClass  string
		MaxName     string
		Max         string
		Rows        []overviewRow
		Unconverted int
	}{
		Year:        ov.Year,
		Month:       ov.Month,
		MonthName:   report.MonthName(ov.Month),
		Display:     display,
		Income:      core.FormatAmount(ov.Income),
		Expense:     core.FormatAmount(ov.Expense),
		Balance:     core.FormatAmount(ov.Balance),
		BalanceNeg:  ov.Balance.Value < 0,
		MaxName:     maxName,
		Max:         core.Format(maxValue, display),
		Rows:        rows,
		Unconverted: ov.Unconverted,
	}
	data.Trend, data.TrendClass = s.expenseTrend(r, ov, display)

	if err := s.templates.ExecuteTemplate(w, "month_overview.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error",
			"error", err, "template", "month_overview.html", "year", mp.Year, "month", mp.Month)
		_, _ = w.Write([]byte(`<section id="month-overview" class="month-overview"><div class="placeholder">Errore rendering panoramica</div></section>`))
		return
	}
}

// expenseTrend compares this month's spending with the previous month.
// Best effort: any failure yields an empty trend, never an error.
func (s *Server) expenseTrend(r *http.Request, ov core.MonthOverview, display string) (label, class string) {
	prevYear, prevMonth := ov.Year, ov.Month-1
	if prevMonth < 1 {
		prevMonth = 12
		prevYear--
	}
	prev, err := s.getMonthOverview(r.Context(), prevYear, prevMonth, display)
	if err != nil || prev.Expense.Value <= 0 {
		return "", ""
	}

	diff := ov.Expense.Value - prev.Expense.Value
	switch {
	case diff < 0:
		return core.Format(-diff, display) + " in meno", "trend-down"
	case diff > 0:
		return core.Format(diff, display) + " in più", "trend-up"
	default:
		return "invariato", "trend-flat"
	}
}

// entryRow is one ledger line in the month detail list.
type entryRow struct {
	ID        int64
	Day       int
	Desc      string
	Amount    string
	Converted string
	Missing   bool
	Kind      string
	KindClass string
	Category  string
}

func (s *Server) handleMonthEntries(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	mp := ParseMonthParams(r.URL.Query())
	display := s.displayCurrency(r)

	entries, err := s.backend.ListEntries(r.Context(), mp.Year, mp.Month)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List entries error", "error", err, "year", mp.Year, "month", mp.Month)
		_, _ = w.Write([]byte(`<div id="month-entries" class="entries"><div class="row placeholder">Errore nel caricamento dei movimenti</div></div>`))
		return
	}
	rates, err := s.backend.ListRates(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List rates error", "error", err)
		rates = nil
	}

	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		row := entryRow{
			ID:       e.ID,
			Day:      e.Date.Day(),
			Desc:     e.Description,
			Amount:   core.FormatAmount(e.Amount),
			Kind:     kindLabel(e.Kind),
			Category: e.Category,
		}
		if e.Kind == core.Income {
			row.KindClass = "entry-income"
		} else {
			row.KindClass = "entry-expense"
		}
		conv := rates.Convert(e.Amount, display)
		if conv.Missing {
			row.Missing = true
			row.Converted = "—"
		} else if e.Amount.Currency != display {
			row.Converted = core.FormatAmount(conv.Amount)
		}
		rows = append(rows, row)
	}

	data := struct {
		Year    int
		Month   int
		Display string
		Items   []entryRow
	}{
		Year:    mp.Year,
		Month:   mp.Month,
		Display: display,
		Items:   rows,
	}

	if err := s.templates.ExecuteTemplate(w, "month_entries.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Month entries template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div id="month-entries" class="entries"><div class="row placeholder">Errore template</div></div>`))
	}
}
