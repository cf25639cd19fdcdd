package google

import "testing"

func TestParseSheetValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1234.56", 1234.56, true},
		{"1234,56", 1234.56, true},
		{"147", 147, true},
		{" 99.90 ", 99.9, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for i, tc := range cases {
		got, ok := parseSheetValue(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("case %d: parseSheetValue(%q) = %v, %v; want %v, %v", i, tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRowMatchesEntry(t *testing.T) {
	row := []string{"2026-03-14", "Spesa settimanale", "82.50", "EUR", "expense", "Spesa"}

	tests := []struct {
		name        string
		cols        []string
		date        string
		description string
		value       float64
		currency    string
		want        bool
	}{
		{"exact match", row, "2026-03-14", "Spesa settimanale", 82.5, "EUR", true},
		{"case insensitive description", row, "2026-03-14", "SPESA SETTIMANALE", 82.5, "EUR", true},
		{"case insensitive currency", row, "2026-03-14", "Spesa settimanale", 82.5, "eur", true},
		{"value within half cent", row, "2026-03-14", "Spesa settimanale", 82.504, "EUR", true},
		{"wrong date", row, "2026-03-15", "Spesa settimanale", 82.5, "EUR", false},
		{"wrong description", row, "2026-03-14", "Altro", 82.5, "EUR", false},
		{"value off by a cent", row, "2026-03-14", "Spesa settimanale", 82.51, "EUR", false},
		{"wrong currency", row, "2026-03-14", "Spesa settimanale", 82.5, "USD", false},
		{"short row", []string{"2026-03-14", "x"}, "2026-03-14", "x", 1, "EUR", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowMatchesEntry(tt.cols, tt.date, tt.description, tt.value, tt.currency)
			if got != tt.want {
				t.Errorf("rowMatchesEntry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToStrings(t *testing.T) {
	in := []interface{}{" Affitto ", 950.0, true}
	got := toStrings(in)
	if len(got) != 3 || got[0] != "Affitto" || got[1] != "950" || got[2] != "true" {
		t.Fatalf("toStrings() = %v", got)
	}
}
