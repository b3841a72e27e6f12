package models

import (
	"math"
	"testing"
)

func TestDeriveUnitPrices(t *testing.T) {
	p := Product{
		Price:           100000,
		CapacityGB:      10,
		CapacityMinutes: 0,
		CapacitySMS:     500,
	}
	p.DeriveUnitPrices()

	if got := p.PricePerGB; math.Abs(got-10000) > 1 {
		t.Errorf("PricePerGB = %v, want ~10000", got)
	}
	if !math.IsNaN(p.PricePerMinute) {
		t.Errorf("PricePerMinute = %v, want NaN for zero capacity", p.PricePerMinute)
	}
	if got := p.PricePerSMS; math.Abs(got-200) > 1 {
		t.Errorf("PricePerSMS = %v, want ~200", got)
	}
}

func TestDeriveUnitPricesNegativeCapacity(t *testing.T) {
	p := Product{Price: 50000, CapacityGB: -5}
	p.DeriveUnitPrices()

	if !math.IsNaN(p.PricePerGB) {
		t.Errorf("PricePerGB = %v, want NaN for negative capacity", p.PricePerGB)
	}
}

func TestLessNaNLast(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"both comparable ascending", 1, 2, true},
		{"both comparable descending", 2, 1, false},
		{"equal", 3, 3, false},
		{"a NaN sorts after b", nan, 1, false},
		{"b NaN sorts after a", 1, nan, true},
		{"both NaN", nan, nan, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LessNaNLast(tt.a, tt.b); got != tt.want {
				t.Errorf("LessNaNLast(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
