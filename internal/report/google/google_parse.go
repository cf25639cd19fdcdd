package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// rowMatchesEntry reports whether a sheet row (columns A:F as strings) holds
// the given entry. Values compare within half a cent because the cell format
// may round what the API returns.
func rowMatchesEntry(cols []string, date, description string, value float64, currency string) bool {
	if len(cols) < 4 {
		return false
	}
	if cols[0] != date {
		return false
	}
	if !strings.EqualFold(cols[1], strings.TrimSpace(description)) {
		return false
	}
	v, ok := parseSheetValue(cols[2])
	if !ok || math.Abs(v-value) >= 0.005 {
		return false
	}
	return strings.EqualFold(cols[3], currency)
}

// parseSheetValue parses a numeric cell, tolerating a decimal comma.
func parseSheetValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
