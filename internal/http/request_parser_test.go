package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseEntryDate(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantYear  int
		wantMonth int
		wantDay   int
		wantErr   bool
	}{
		{
			name:      "valid date",
			form:      url.Values{"date": {"2026-03-14"}},
			wantYear:  2026,
			wantMonth: 3,
			wantDay:   14,
		},
		{
			name: "empty date uses today",
			form: url.Values{},
		},
		{
			name:    "malformed date is an error",
			form:    url.Values{"date": {"14/03/2026"}},
			wantErr: true,
		},
		{
			name:    "impossible date is an error",
			form:    url.Values{"date": {"2026-02-31"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntryDate(tt.form)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEntryDate(%v) expected error, got %v", tt.form, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntryDate(%v) error = %v", tt.form, err)
			}

			if tt.wantYear != 0 {
				if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
					t.Errorf("ParseEntryDate() = %v, want %04d-%02d-%02d", got, tt.wantYear, tt.wantMonth, tt.wantDay)
				}
			} else if got.IsZero() {
				t.Error("empty date should default to today, got zero date")
			}
		})
	}
}

func TestParseMonthParams(t *testing.T) {
	got := ParseMonthParams(url.Values{"year": {"2024"}, "month": {"12"}})
	if got.Year != 2024 || got.Month != 12 {
		t.Errorf("ParseMonthParams() = %+v, want 2024-12", got)
	}

	// Garbage and absent values both fall back to the clock.
	for _, query := range []url.Values{
		{},
		{"year": {"duemila"}, "month": {"xii"}},
	} {
		got := ParseMonthParams(query)
		if got.Year < 2020 || got.Month < 1 || got.Month > 12 {
			t.Errorf("ParseMonthParams(%v) = %+v, want current month", query, got)
		}
	}

	partial := ParseMonthParams(url.Values{"month": {"5"}})
	if partial.Month != 5 {
		t.Errorf("Month = %d, want 5", partial.Month)
	}
	if partial.Year < 2020 {
		t.Errorf("Year = %d, want current year default", partial.Year)
	}
}

func TestRequestBodyParserFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "json object",
			body: `{"id": "123", "name": "aperitivo", "amount": 42.5, "recurring": true}`,
			want: map[string]string{"id": "123", "name": "aperitivo", "amount": "42.5", "recurring": "true"},
		},
		{
			name: "urlencoded form",
			body: "id=456&name=spesa+settimanale",
			want: map[string]string{"id": "456", "name": "spesa settimanale"},
		},
		{
			name: "empty body",
			body: "",
			want: map[string]string{"id": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			for key, want := range tt.want {
				if got := p.Get(key); got != want {
					t.Errorf("Get(%q) = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestRequestBodyParserMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"id": `))
	p := NewRequestBodyParser(req)
	err := p.Parse()
	if err == nil {
		t.Fatal("Parse() accepted truncated JSON")
	}
	if again := p.Parse(); again != err {
		t.Errorf("second Parse() = %v, want first error %v", again, err)
	}
}

func TestRequestBodyParserGetID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID int64
		wantOK bool
	}{
		{"form id", "id=42", 42, true},
		{"json string id", `{"id": "17"}`, 17, true},
		{"json numeric id", `{"id": 23}`, 23, true},
		{"json null id", `{"id": null}`, 0, false},
		{"fractional id", `{"id": 23.5}`, 0, false},
		{"missing id", "name=x", 0, false},
		{"non numeric id", "id=abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			id, ok := p.GetID()
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("GetID() = (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestMethodGuards(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		guard   func(*http.Request) *HTMXResponseBuilder
		blocked bool
	}{
		{"post passes RequirePOST", http.MethodPost, RequirePOST, false},
		{"get fails RequirePOST", http.MethodGet, RequirePOST, true},
		{"delete passes RequireDeleteOrPOST", http.MethodDelete, RequireDeleteOrPOST, false},
		{"post passes RequireDeleteOrPOST", http.MethodPost, RequireDeleteOrPOST, false},
		{"put fails RequireDeleteOrPOST", http.MethodPut, RequireDeleteOrPOST, true},
		{"get passes RequireMethod get", http.MethodGet, func(r *http.Request) *HTMXResponseBuilder {
			return RequireMethod(r, http.MethodGet)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			resp := tt.guard(req)
			if tt.blocked && resp == nil {
				t.Fatal("guard passed a method it should block")
			}
			if !tt.blocked && resp != nil {
				t.Fatal("guard blocked a method it should pass")
			}
		})
	}
}

func TestRequireMethodSetsAllowHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	resp := RequireMethod(req, http.MethodDelete, http.MethodPost)
	if resp == nil {
		t.Fatal("GET should be rejected")
	}

	rr := httptest.NewRecorder()
	resp.Write(rr)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
	if allow := rr.Header().Get("Allow"); allow != "DELETE, POST" {
		t.Errorf("Allow = %q, want %q", allow, "DELETE, POST")
	}
}

func TestParseFormOrFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("field=value"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp := ParseFormOrFail(req); resp != nil {
		t.Fatal("valid form rejected")
	}
	if req.Form.Get("field") != "value" {
		t.Error("form was not parsed")
	}

	bad := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("a=%zz"))
	bad.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp := ParseFormOrFail(bad); resp == nil {
		t.Error("broken percent escape accepted")
	}
}
