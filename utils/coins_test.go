package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceToCents(t *testing.T) {
	cases := []struct {
		price float64
		cents int64
	}{
		{9.99, 999},
		{0.01, 1},
		{1.005, 101}, // half-up
		{2.675, 268}, // 2.675*100 is 267.4999... in float64; decimal half-up still wins
		{10, 1000},
		{0, 0},
		{-3.50, 0}, // negative prices clamp to zero
	}
	for _, c := range cases {
		assert.Equal(t, c.cents, PriceToCents(c.price), "price %v", c.price)
	}
}

func TestCentsToPriceRoundTrip(t *testing.T) {
	for _, cents := range []int64{1, 99, 999, 1000, 123456} {
		assert.Equal(t, cents, PriceToCents(CentsToPrice(cents)), "cents %d", cents)
	}
}
