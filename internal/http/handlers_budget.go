package http

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"cambio/internal/core"
)

// budgetLine is one recurring budget row with its monthly equivalent.
type budgetLine struct {
	ID          int64
	Desc        string
	Period      string
	Kind        string
	KindClass   string
	Category    string
	Original    string
	Monthly     string
	Unconverted bool
	Place       string
}

func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	display := s.displayCurrency(r)
	ov, err := s.getBudgetOverview(r.Context(), display)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget overview error", "error", err, "display", display)
		_, _ = w.Write([]byte(`<div id="budget-overview" class="budgets"><div class="row placeholder">Errore nel caricamento dei budget</div></div>`))
		return
	}

	lines := make([]budgetLine, 0, len(ov.Lines))
	for _, l := range ov.Lines {
		line := budgetLine{
			ID:          l.Budget.ID,
			Desc:        l.Budget.Description,
			Period:      periodLabel(l.Budget.Period),
			Kind:        kindLabel(l.Budget.Kind),
			Category:    l.Budget.Category,
			Original:    core.FormatAmount(l.Budget.Amount),
			Monthly:     core.FormatAmount(l.Monthly),
			Unconverted: l.Unconverted,
			Place:       l.Budget.PlaceName,
		}
		if l.Budget.Kind == core.Income {
			line.KindClass = "entry-income"
		} else {
			line.KindClass = "entry-expense"
		}
		lines = append(lines, line)
	}

	net := core.Amount{
		Value:    ov.MonthlyIncome.Value - ov.MonthlyExpense.Value,
		Currency: display,
	}

	data := struct {
		Display        string
		Lines          []budgetLine
		MonthlyIncome  string
		MonthlyExpense string
		Net            string
		NetNeg         bool
		Unconverted    int
	}{
		Display:        display,
		Lines:          lines,
		MonthlyIncome:  core.FormatAmount(ov.MonthlyIncome),
		MonthlyExpense: core.FormatAmount(ov.MonthlyExpense),
		Net:            core.FormatAmount(net),
		NetNeg:         net.Value < 0,
		Unconverted:    ov.Unconverted,
	}

	if err := s.templates.ExecuteTemplate(w, "budget_overview.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Budget overview template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div id="budget-overview" class="budgets"><div class="row placeholder">Errore template</div></div>`))
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	startDate, err := parseDate(strings.TrimSpace(r.Form.Get("start_date")))
	if err != nil {
		UnprocessableEntityError("Data inizio non valida").Write(w)
		return
	}

	var endDate core.Date
	if v := strings.TrimSpace(r.Form.Get("end_date")); v != "" {
		endDate, err = parseDate(v)
		if err != nil {
			UnprocessableEntityError("Data fine non valida").Write(w)
			return
		}
	}

	value, err := core.ParseValue(r.Form.Get("value"))
	if err != nil {
		UnprocessableEntityError("Importo non valido").Write(w)
		return
	}

	budget := core.RecurringBudget{
		Description: sanitizeInput(r.Form.Get("description")),
		Amount: core.Amount{
			Value:    value,
			Currency: core.NormalizeCurrencyCode(r.Form.Get("currency")),
		},
		Period:    core.Period(sanitizeInput(r.Form.Get("period"))),
		Kind:      core.EntryKind(sanitizeInput(r.Form.Get("kind"))),
		Category:  sanitizeInput(r.Form.Get("category")),
		StartDate: startDate,
		EndDate:   endDate,
		PlaceName: sanitizeInput(r.Form.Get("place_name")),
	}
	// Coordinates arrive from the place picker; a budget without a
	// place is fine.
	if lat, err := strconv.ParseFloat(strings.TrimSpace(r.Form.Get("place_lat")), 64); err == nil {
		budget.PlaceLat = lat
	}
	if lon, err := strconv.ParseFloat(strings.TrimSpace(r.Form.Get("place_lon")), 64); err == nil {
		budget.PlaceLon = lon
	}

	if err := budget.Validate(); err != nil {
		UnprocessableEntityError("Dati non validi: " + err.Error()).Write(w)
		return
	}

	if _, err := s.backend.CreateBudget(r.Context(), budget); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create budget",
			"error", err, "description", budget.Description)
		InternalServerError("Errore nel salvataggio del budget").Write(w)
		return
	}

	s.structured.LogBudgetCreated(r.Context(), budget.Description,
		string(budget.Period), budget.Amount.Currency, budget.Amount.Value)

	s.invalidateBudgets()

	successMsg := fmt.Sprintf("Budget ricorrente '%s' creato (%s %s)",
		budget.Description, core.FormatAmount(budget.Amount), strings.ToLower(periodLabel(budget.Period)))

	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerBudgetChanged().
		TriggerFormReset().
		TriggerSuccessNotification(successMsg).
		Write(w)
}

func (s *Server) handleDeactivateBudget(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("ID budget mancante").Write(w)
		return
	}

	if err := s.backend.DeactivateBudget(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to deactivate budget", "error", err, "budget_id", id)
		InternalServerError("Errore nella disattivazione del budget").Write(w)
		return
	}

	s.structured.LogBudgetDeactivated(r.Context(), id)
	s.invalidateBudgets()

	NewHTMXResponse().
		TriggerBudgetChanged().
		TriggerSuccessNotification("Budget disattivato").
		Write(w)
}

// handlePlaceSearch returns geocoder matches for the budget place field
// as an HTML list. Lookups are best effort: no client, no query or a
// failed search all render the same empty state.
func (s *Server) handlePlaceSearch(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if s.places == nil || query == "" {
		_, _ = w.Write([]byte(`<ul id="place-results" class="place-results"></ul>`))
		return
	}

	results := s.places.Search(r.Context(), query)
	if len(results) == 0 {
		_, _ = w.Write([]byte(`<ul id="place-results" class="place-results"><li class="placeholder">Nessun luogo trovato</li></ul>`))
		return
	}

	_, _ = w.Write([]byte(`<ul id="place-results" class="place-results">`))
	for _, p := range results {
		fmt.Fprintf(w, `<li class="place-result" data-name="%s" data-lat="%s" data-lon="%s">%s</li>`,
			template.HTMLEscapeString(p.Name),
			template.HTMLEscapeString(p.Lat),
			template.HTMLEscapeString(p.Lon),
			template.HTMLEscapeString(p.DisplayName))
	}
	_, _ = w.Write([]byte(`</ul>`))
}
