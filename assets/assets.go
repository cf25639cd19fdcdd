package assets

import _ "embed"

// Starter rate table, same rows the sqlite seed migration inserts. Every
// pair touches USD so the bridge reaches all seeded currencies.
//
//go:embed starter_rates.csv
var starterRatesCSV []byte

// StarterRatesCSV returns the embedded base,target,rate seed table.
func StarterRatesCSV() []byte {
	return starterRatesCSV
}
