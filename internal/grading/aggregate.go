package grading

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

// SubjectTotal combines component scores with their weightings:
// Σ score * weight / 100, rounded half-up to two decimals.
func SubjectTotal(scores models.ComponentScores, weights models.Weightings) float64 {
	pairs := [][2]float64{
		{scores.ClassWork, weights.ClassWork},
		{scores.Homework, weights.Homework},
		{scores.ClassTest, weights.ClassTest},
		{scores.Assignment, weights.Assignment},
		{scores.Project, weights.Project},
		{scores.MidTermExam, weights.MidTermExam},
		{scores.FinalExam, weights.FinalExam},
	}
	total := decimal.Zero
	for _, p := range pairs {
		total = total.Add(decimal.NewFromFloat(p[0]).Mul(decimal.NewFromFloat(p[1])))
	}
	return toFloat(total.Div(hundred))
}

// WeightSum returns the exact sum of a weighting set.
func WeightSum(weights models.Weightings) decimal.Decimal {
	sum := decimal.Zero
	for _, w := range []float64{
		weights.ClassWork,
		weights.Homework,
		weights.ClassTest,
		weights.Assignment,
		weights.Project,
		weights.MidTermExam,
		weights.FinalExam,
	} {
		sum = sum.Add(decimal.NewFromFloat(w))
	}
	return sum
}

// ValidateComponents checks score ranges and that the weighting set sums to 100.
func ValidateComponents(scores models.ComponentScores, weights models.Weightings) error {
	if err := validate.Struct(scores); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "scores must be between 0 and 100")
	}
	if err := validate.Struct(weights); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "weightings must be non-negative")
	}
	if sum := WeightSum(weights); !sum.Equal(hundred) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weightings must sum to 100, got %s", sum.String()))
	}
	return nil
}
