package http

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"cambio/internal/core"
)

// rateRow is one rate in the admin table, in resolver precedence order.
type rateRow struct {
	ID     int64
	Base   string
	Target string
	Rate   string
}

func (s *Server) handleRatesTable(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	rates, err := s.backend.ListRates(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List rates error", "error", err)
		_, _ = w.Write([]byte(`<div id="rates-table" class="rates"><div class="row placeholder">Errore nel caricamento dei cambi</div></div>`))
		return
	}

	rows := make([]rateRow, 0, len(rates))
	for _, rate := range rates {
		rows = append(rows, rateRow{
			ID:     rate.ID,
			Base:   rate.Base,
			Target: rate.Target,
			Rate:   strconv.FormatFloat(rate.Rate, 'f', -1, 64),
		})
	}

	data := struct {
		Rows       []rateRow
		Currencies []string
	}{
		Rows:       rows,
		Currencies: rates.Currencies(),
	}

	if err := s.templates.ExecuteTemplate(w, "rates_table.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Rates table template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div id="rates-table" class="rates"><div class="row placeholder">Errore template</div></div>`))
	}
}

func (s *Server) handleCreateRate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	base := core.NormalizeCurrencyCode(r.Form.Get("base"))
	target := core.NormalizeCurrencyCode(r.Form.Get("target"))

	value, err := core.ParseRate(r.Form.Get("rate"))
	if err != nil {
		UnprocessableEntityError("Tasso di cambio non valido").Write(w)
		return
	}

	rate := core.CurrencyRate{Base: base, Target: target, Rate: value}
	if err := rate.Validate(); err != nil {
		UnprocessableEntityError("Dati non validi: " + err.Error()).Write(w)
		return
	}

	if _, err := s.backend.CreateRate(r.Context(), rate); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save rate",
			"error", err, "base", base, "target", target, "rate", value)
		InternalServerError("Errore nel salvataggio del cambio").Write(w)
		return
	}

	s.structured.LogRateSaved(r.Context(), base, target, value)

	// A new rate can change the conversion of any cached view.
	s.invalidateAll()

	successMsg := fmt.Sprintf("Cambio registrato: 1 %s = %s %s",
		base, strconv.FormatFloat(value, 'f', -1, 64), target)

	NewHTMXResponse().
		TriggerRateChanged().
		TriggerFormReset().
		TriggerSuccessNotification(successMsg).
		Write(w)
}

func (s *Server) handleDeleteRate(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}

	id, ok := parser.GetID()
	if !ok {
		BadRequestError("ID cambio mancante").Write(w)
		return
	}

	if err := s.backend.DeleteRate(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete rate", "error", err, "rate_id", id)
		InternalServerError("Errore nella cancellazione del cambio").Write(w)
		return
	}

	s.structured.LogRateDeleted(r.Context(), id)
	s.invalidateAll()

	NewHTMXResponse().
		TriggerRateChanged().
		TriggerSuccessNotification("Cambio eliminato").
		Write(w)
}

// handleCurrencyOptions returns the currency select options as HTML.
func (s *Server) handleCurrencyOptions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	selected := core.NormalizeCurrencyCode(r.URL.Query().Get("selected"))
	if selected == "" {
		selected = s.display
	}

	for _, code := range s.knownCurrencies(r.Context(), s.displayCurrency(r)) {
		escaped := template.HTMLEscapeString(code)
		if code == selected {
			fmt.Fprintf(w, `<option value="%s" selected>%s</option>`, escaped, escaped)
		} else {
			fmt.Fprintf(w, `<option value="%s">%s</option>`, escaped, escaped)
		}
	}
}

// handleCategoryOptions returns the category select options for one
// entry kind as HTML.
func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	kind := core.EntryKind(sanitizeInput(r.URL.Query().Get("kind")))
	if kind == "" {
		kind = core.Expense
	}

	incomeCats, expenseCats, err := s.backend.List(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to get categories", "kind", string(kind), "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<option value="">Errore nel caricamento</option>`))
		return
	}

	categories := expenseCats
	if kind == core.Income {
		categories = incomeCats
	}

	_, _ = w.Write([]byte(`<option value="">Seleziona categoria</option>`))
	for _, category := range categories {
		escaped := template.HTMLEscapeString(category)
		fmt.Fprintf(w, `<option value="%s">%s</option>`, escaped, escaped)
	}
}
