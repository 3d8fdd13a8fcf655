package utils

import "math"

// Package prices are stored as integer cents and exposed as decimal major
// units. Conversion is exact on read and rounds half-up on write so a
// created price reads back unchanged.

// PriceToCents converts a major-unit price (e.g. 9.99) to cents (999),
// rounding half-up to the nearest cent. The value is first snapped to
// tenths of a cent so float64 artifacts (1.005*100 = 100.999...) cannot
// push a decimal half below the rounding boundary.
func PriceToCents(price float64) int64 {
	if price < 0 {
		return 0
	}
	return int64(math.Round(math.Round(price*1000) / 10))
}

// CentsToPrice converts stored cents back to the major unit.
func CentsToPrice(cents int64) float64 {
	return float64(cents) / 100
}
