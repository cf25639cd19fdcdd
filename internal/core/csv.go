package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseRatesCSV reads base,target,rate rows into a RateTable, preserving row
// order. A first row whose rate column is not numeric is treated as a header
// and skipped. Any other malformed row fails the whole parse.
func ParseRatesCSV(r io.Reader) (RateTable, error) {
	rd := csv.NewReader(r)
	rd.TrimLeadingSpace = true
	records, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	var table RateTable
	for i, rec := range records {
		if len(rec) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 columns, got %d", i+1, len(rec))
		}
		rate, err := ParseRate(rec[2])
		if err != nil {
			// Only a non-numeric first row passes for a header; a numeric but
			// invalid rate (zero, negative) is an error wherever it appears.
			if i == 0 && !numericField(rec[2]) {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		row := CurrencyRate{
			Base:   NormalizeCurrencyCode(rec[0]),
			Target: NormalizeCurrencyCode(rec[1]),
			Rate:   rate,
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		table = append(table, row)
	}
	return table, nil
}

func numericField(s string) bool {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

