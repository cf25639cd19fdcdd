package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"cambio/internal/core"
)

// MonthParams is the year/month pair a dashboard request addresses.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from the query string. Missing
// or non-numeric values fall back to the current month.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now()
	return MonthParams{
		Year:  intOrDefault(query.Get("year"), now.Year()),
		Month: intOrDefault(query.Get("month"), int(now.Month())),
	}
}

func intOrDefault(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// ParseEntryDate reads the date form field (YYYY-MM-DD), falling back
// to today when the field is empty. A malformed non-empty value is an
// error, not a silent fallback.
func ParseEntryDate(form url.Values) (core.Date, error) {
	v := strings.TrimSpace(form.Get("date"))
	if v == "" {
		now := time.Now()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return parseDate(v)
}

// RequestBodyParser reads a request body once and exposes its fields
// regardless of whether the client sent urlencoded form data or a JSON
// object. htmx delete buttons use hx-vals, which posts JSON.
type RequestBodyParser struct {
	raw    []byte
	fields map[string]string
	parsed bool
	err    error
}

// NewRequestBodyParser drains the request body. Decoding is deferred
// to Parse.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.raw, p.err = io.ReadAll(r.Body)
	return p
}

// Parse decodes the body. A leading brace selects JSON, anything else
// is treated as a urlencoded form. Repeated calls return the first
// result.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	p.fields = map[string]string{}
	body := bytes.TrimSpace(p.raw)
	if len(body) == 0 {
		return nil
	}

	if body[0] == '{' || body[0] == '[' {
		var decoded map[string]any
		if p.err = json.Unmarshal(body, &decoded); p.err != nil {
			return p.err
		}
		for key, val := range decoded {
			p.fields[key] = scalarString(val)
		}
		return nil
	}

	values, err := url.ParseQuery(string(p.raw))
	if err != nil {
		p.err = err
		return err
	}
	for key := range values {
		p.fields[key] = values.Get(key)
	}
	return nil
}

// Get returns the named field trimmed and sanitized, or "" when the
// field is absent.
func (p *RequestBodyParser) Get(key string) string {
	return strings.TrimSpace(sanitizeInput(p.fields[key]))
}

// GetID returns the id field as an int64, with ok=false when the field
// is missing or not a whole number.
func (p *RequestBodyParser) GetID() (int64, bool) {
	id, err := strconv.ParseInt(p.Get("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// scalarString renders a decoded JSON scalar the way the form codepath
// would have received it. Numbers drop their fractional zeros so that
// {"id": 42} and id=42 read back identically.
func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// RequireMethod returns a 405 response when the request method is not
// among allowed, nil otherwise.
func RequireMethod(r *http.Request, allowed ...string) *HTMXResponseBuilder {
	if slices.Contains(allowed, r.Method) {
		return nil
	}
	return MethodNotAllowedError(strings.Join(allowed, ", "))
}

// RequirePOST guards the form submission handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST guards the delete handlers. htmx issues real
// DELETE requests, plain forms can only POST.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail wraps r.ParseForm, converting a failure into the 400
// handed back to htmx.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato richiesta non valido")
	}
	return nil
}
