package core

// monthlyFactor maps each cadence onto one month. The constants are
// fixed by convention, not configuration: 4.33 weeks per month, 2.166
// fortnights per month, a twelfth of a year.
var monthlyFactor = map[Period]float64{
	Weekly:   4.33,
	Biweekly: 2.166,
	Monthly:  1,
	Annual:   1.0 / 12,
}

// MonthlyEquivalent normalizes value to a per-month figure. Periods
// without a factor fall back to the value as is.
func MonthlyEquivalent(value float64, period Period) float64 {
	factor, ok := monthlyFactor[period]
	if !ok {
		return value
	}
	return value * factor
}

// Periods lists the supported cadences in display order.
func Periods() []Period {
	return []Period{Weekly, Biweekly, Monthly, Annual}
}
