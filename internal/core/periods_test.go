package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		period Period
		want   float64
	}{
		{"weekly times 4.33", 100, Weekly, 433.0},
		{"biweekly times 2.166", 50, Biweekly, 108.3},
		{"monthly unchanged", 75.5, Monthly, 75.5},
		{"annual divided by twelve", 1200, Annual, 100.0},
		{"unknown cadence falls back to the value", 80, Period("daily"), 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyEquivalent(tt.value, tt.period)
			if !almostEqual(got, tt.want) {
				t.Errorf("MonthlyEquivalent(%v, %q) = %v, want %v", tt.value, tt.period, got, tt.want)
			}
		})
	}
}

func TestPeriodsOrder(t *testing.T) {
	got := Periods()
	want := []Period{Weekly, Biweekly, Monthly, Annual}
	if len(got) != len(want) {
		t.Fatalf("Periods() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Periods() = %v, want %v", got, want)
		}
	}
}
