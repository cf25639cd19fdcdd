// Package core provides the currency conversion and normalization
// engine plus value parsing shared by every entry form.
//
// This file contains functions for parsing monetary values from user
// input strings.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseValue converts a decimal string to a float64 value with half-up
// rounding past the second decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns an error for invalid formats, negative values, or zero.
//
// Examples:
//
//	ParseValue("12.34")  -> 12.34, nil
//	ParseValue("12,34")  -> 12.34, nil
//	ParseValue("12.345") -> 12.35, nil (rounds up)
//	ParseValue("12.344") -> 12.34, nil (rounds down)
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidValue
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidValue
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidValue
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidValue
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidValue
		}
	}
	// Convert integer part - check for overflow
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidValue
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidValue
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracHundredths int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracHundredths = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracHundredths += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracHundredths++
				}
			}
		}
	}
	hundredths := iv*100 + fracHundredths
	if hundredths <= 0 {
		return 0, ErrInvalidValue
	}
	return float64(hundredths) / 100.0, nil
}

// ParseRate converts a decimal string to a positive exchange rate.
// Rates keep full float precision: no rounding, any number of decimals.
func ParseRate(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidRate
	}
	// ParseFloat accepts "inf" and "nan"
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, ErrInvalidRate
	}
	return rate, nil
}
