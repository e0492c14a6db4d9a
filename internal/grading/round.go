package grading

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two decimal places, which is half-up for the
// non-negative values produced by grading.
func Round2(v float64) float64 {
	return toFloat(decimal.NewFromFloat(v))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
