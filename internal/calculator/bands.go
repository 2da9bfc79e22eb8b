package calculator

import (
	"github.com/shopspring/decimal"
)

// Round rounds v to the nearest integer, halves away from zero.
func Round(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

// ScaleRound multiplies v by m in decimal arithmetic and rounds the product.
// 20000*1.7 yields 34000, not 33999.999...
func ScaleRound(v, m float64) int64 {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(m)).Round(0).IntPart()
}

// Bands scales rp by each multiplier, rounding every product independently.
func Bands(rp float64, multipliers []float64) []int64 {
	out := make([]int64, len(multipliers))
	for i, m := range multipliers {
		out[i] = ScaleRound(rp, m)
	}
	return out
}
