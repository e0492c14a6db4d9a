package grading

import "github.com/shopspring/decimal"

// AttendancePercentage returns presentDays / totalDays * 100 rounded to two decimals.
// A term without recorded days yields 0.
func AttendancePercentage(totalDays, presentDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(presentDays)).Mul(hundred).Div(decimal.NewFromInt(int64(totalDays)))
	return toFloat(pct)
}
