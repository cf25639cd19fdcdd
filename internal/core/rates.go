package core

import "sort"

// BridgeCurrency is the single pivot tried when no direct or reverse
// rate links two currencies. One hop only; there is no path search.
const BridgeCurrency = "USD"

// Conversion is the outcome of converting an Amount into another
// currency. When no rate chain exists the original amount is carried
// over unchanged and Missing is set; callers decide how loud to be
// about that.
type Conversion struct {
	Amount  Amount
	Rate    float64
	Missing bool
}

// Resolve returns the multiplier that turns one unit of from into to.
// Lookup order: identity, direct row, reverse row (inverted), then a
// bridge through USD where each leg is itself a direct-or-reverse
// lookup. Duplicate pairs are legal; the first matching row in table
// order wins.
func (t RateTable) Resolve(from, to string) (float64, bool) {
	if from == to {
		return 1.0, true
	}
	if rate, ok := t.lookup(from, to); ok {
		return rate, true
	}
	toBridge, ok := t.lookup(from, BridgeCurrency)
	if !ok {
		return 0, false
	}
	fromBridge, ok := t.lookup(BridgeCurrency, to)
	if !ok {
		return 0, false
	}
	return toBridge * fromBridge, true
}

// lookup scans every row for a direct match before falling back to a
// reverse match, so a direct rate always beats an inverted one no
// matter where it sits in the table.
func (t RateTable) lookup(from, to string) (float64, bool) {
	for _, r := range t {
		if r.Base == from && r.Target == to {
			return r.Rate, true
		}
	}
	for _, r := range t {
		if r.Base == to && r.Target == from {
			return 1 / r.Rate, true
		}
	}
	return 0, false
}

// Convert turns a into the to currency. When no rate can be resolved
// the amount comes back unchanged with Missing set; Convert never
// fails.
func (t RateTable) Convert(a Amount, to string) Conversion {
	rate, ok := t.Resolve(a.Currency, to)
	if !ok {
		return Conversion{Amount: a, Missing: true}
	}
	return Conversion{
		Amount: Amount{Value: a.Value * rate, Currency: to},
		Rate:   rate,
	}
}

// Currencies returns every code appearing in the table as base or
// target, sorted, without duplicates.
func (t RateTable) Currencies() []string {
	seen := make(map[string]bool, len(t)*2)
	for _, r := range t {
		seen[r.Base] = true
		seen[r.Target] = true
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
