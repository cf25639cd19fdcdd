package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuilderStatusHeaderBody(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		Header("X-Fragment", "entry-result").
		BodyString("<p>ok</p>").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("X-Fragment"); got != "entry-result" {
		t.Errorf("header = %q, want %q", got, "entry-result")
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("body = %q", w.Body.String())
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("no triggers queued, HX-Trigger should be absent, got %q", w.Header().Get("HX-Trigger"))
	}
}

func TestBuilderTriggerPayloads(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerEntryCreated(2026, 3).
		TriggerFormReset().
		TriggerSuccessNotification("Movimento registrato").
		Write(w)

	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &events); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}

	var created struct{ Year, Month int }
	if err := json.Unmarshal(events["entry:created"], &created); err != nil {
		t.Fatalf("entry:created payload: %v", err)
	}
	if created.Year != 2026 || created.Month != 3 {
		t.Errorf("entry:created = %+v, want 2026/3", created)
	}

	if _, ok := events["form:reset"]; !ok {
		t.Error("form:reset event missing")
	}

	var toast struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(events["show-notification"], &toast); err != nil {
		t.Fatalf("show-notification payload: %v", err)
	}
	if toast.Type != "success" || toast.Message != "Movimento registrato" || toast.Duration != 3000 {
		t.Errorf("toast = %+v", toast)
	}
}

func TestBuilderScopelessEvents(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerEntryDeleted(2026, 4).
		TriggerRateChanged().
		TriggerBudgetChanged().
		TriggerOverviewRefresh(2026, 4).
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, name := range []string{`"entry:deleted"`, `"rates:changed"`, `"budgets:changed"`, `"overview:refresh"`} {
		if !strings.Contains(trigger, name) {
			t.Errorf("HX-Trigger missing %s: %s", name, trigger)
		}
	}
}

func TestErrorResponsesCarryToast(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantText   string
	}{
		{"bad request", BadRequestError("Formato richiesta non valido"), http.StatusBadRequest, "Formato richiesta non valido"},
		{"unprocessable", UnprocessableEntityError("Importo non valido"), http.StatusUnprocessableEntity, "Importo non valido"},
		{"internal", InternalServerError("Errore nel salvataggio"), http.StatusInternalServerError, "Errore nel salvataggio"},
		{"not found", NotFoundError("Pagina non trovata"), http.StatusNotFound, "Pagina non trovata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if want := `<div class="error">` + tt.wantText + `</div>`; w.Body.String() != want {
				t.Errorf("body = %q, want %q", w.Body.String(), want)
			}
			// The swap is skipped on error statuses, so the toast is the
			// visible feedback.
			trigger := w.Header().Get("HX-Trigger")
			if !strings.Contains(trigger, `"type":"error"`) || !strings.Contains(trigger, tt.wantText) {
				t.Errorf("error toast missing from HX-Trigger: %s", trigger)
			}
		})
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError(`<img src=x onerror="alert(1)">`).Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<img") {
		t.Errorf("markup not escaped: %q", body)
	}
	if !strings.Contains(body, "&lt;img") {
		t.Errorf("expected escaped entity in body: %q", body)
	}
}

func TestMethodNotAllowedCarriesAllow(t *testing.T) {
	w := httptest.NewRecorder()

	MethodNotAllowedError("POST").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if got := w.Header().Get("Allow"); got != "POST" {
		t.Errorf("Allow = %q, want %q", got, "POST")
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestNotificationKinds(t *testing.T) {
	for _, kind := range []NotificationType{NotificationSuccess, NotificationError, NotificationWarning, NotificationInfo} {
		w := httptest.NewRecorder()
		NewHTMXResponse().TriggerNotification(kind, "testo", 1000).Write(w)

		if trigger := w.Header().Get("HX-Trigger"); !strings.Contains(trigger, `"type":"`+string(kind)+`"`) {
			t.Errorf("kind %q not in trigger: %s", kind, trigger)
		}
	}
}
