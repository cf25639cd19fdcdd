package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMXResponseBuilder accumulates status, headers, body and HX-Trigger
// events for a fragment response. Handlers chain the methods and call
// Write once.
type HTMXResponseBuilder struct {
	status   int
	headers  http.Header
	body     []byte
	triggers map[string]any
}

// NewHTMXResponse starts a 200 response with no triggers.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:   http.StatusOK,
		headers:  make(http.Header),
		triggers: make(map[string]any),
	}
}

// Status overrides the response status code.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Header sets a response header.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers.Set(name, value)
	return b
}

// Body sets the raw response body.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

// BodyString sets the response body from a string.
func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	return b.Body([]byte(content))
}

// BodyHTML sets an HTML body and the matching content type.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers.Set("Content-Type", "text/html; charset=utf-8")
	return b.Body([]byte(html))
}

// Trigger queues a client-side event for the HX-Trigger header. Events
// with the same name overwrite each other.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// Write emits headers, the HX-Trigger event map and the body.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, values := range b.headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}

	if len(b.triggers) > 0 {
		if payload, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}

	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// Domain events. The partials listen for these on the body element and
// refetch themselves; payload shapes are part of the template contract.

// TriggerEntryCreated announces a new ledger entry in the given month.
func (b *HTMXResponseBuilder) TriggerEntryCreated(year, month int) *HTMXResponseBuilder {
	return b.Trigger("entry:created", map[string]int{"year": year, "month": month})
}

// TriggerEntryDeleted announces a removed ledger entry.
func (b *HTMXResponseBuilder) TriggerEntryDeleted(year, month int) *HTMXResponseBuilder {
	return b.Trigger("entry:deleted", map[string]int{"year": year, "month": month})
}

// TriggerRateChanged announces a rate table mutation. Rates affect every
// converted view, so the event carries no scope.
func (b *HTMXResponseBuilder) TriggerRateChanged() *HTMXResponseBuilder {
	return b.Trigger("rates:changed", struct{}{})
}

// TriggerBudgetChanged announces a budget mutation.
func (b *HTMXResponseBuilder) TriggerBudgetChanged() *HTMXResponseBuilder {
	return b.Trigger("budgets:changed", struct{}{})
}

// TriggerFormReset asks the page script to clear the submitting form.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// TriggerOverviewRefresh forces a month overview refetch outside the
// usual mutation events.
func (b *HTMXResponseBuilder) TriggerOverviewRefresh(year, month int) *HTMXResponseBuilder {
	return b.Trigger("overview:refresh", map[string]int{"year": year, "month": month})
}

// NotificationType selects the toast styling on the client.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification queues a toast with an explicit display duration.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerSuccessNotification queues a short success toast.
func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// TriggerErrorNotification queues a longer-lived error toast.
func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// ErrorResponse renders an escaped error fragment and raises the error
// toast. Error statuses do not swap the target, so without the toast a
// rejected form would look like nothing happened.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		TriggerErrorNotification(message).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError carries the Allow header and no body.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
