package core

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// usPrinter renders numbers with English grouping ("1,234.50")
// regardless of the process locale.
var usPrinter = message.NewPrinter(language.English)

// currencySymbols maps the codes the dashboard speaks to a display
// symbol. Codes outside the map keep the raw code as prefix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"CNY": "CN¥",
	"CAD": "CA$",
	"AUD": "A$",
	"CHF": "Fr",
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"BRL": "R$",
	"MXN": "MX$",
}

// zeroDecimalCurrencies lists currencies without a minor unit; values
// round half away from zero to whole units.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// Format renders a value as a currency string: symbol first, thousands
// separators, two decimals except zero-decimal currencies. The sign
// goes before the symbol.
//
//	Format(1234.5, "USD") -> "$1,234.50"
//	Format(1234.5, "JPY") -> "¥1,235"
//	Format(-9.9, "XXX")   -> "-XXX9.90"
func Format(value float64, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	if zeroDecimalCurrencies[currency] {
		return sign + symbol + usPrinter.Sprintf("%.0f", math.Round(value))
	}
	return sign + symbol + usPrinter.Sprintf("%.2f", value)
}

// FormatAmount renders a in its own currency.
func FormatAmount(a Amount) string {
	return Format(a.Value, a.Currency)
}
