package grading

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-results-api/internal/models"
)

// ClassStatistics summarises the overall performance of a cohort. Pass rate is the share of
// promoted results, as a percentage.
func ClassStatistics(cohort models.Cohort, results []models.Result, at time.Time) models.ClassStatistics {
	stats := models.ClassStatistics{
		Cohort:            cohort,
		Count:             len(results),
		GradeDistribution: make(map[string]int),
		GeneratedAt:       at,
	}
	if len(results) == 0 {
		return stats
	}

	sum := decimal.Zero
	stats.HighestScore = results[0].OverallPerformance.AverageScore
	stats.LowestScore = results[0].OverallPerformance.AverageScore
	for _, r := range results {
		avg := r.OverallPerformance.AverageScore
		sum = sum.Add(decimal.NewFromFloat(avg))
		if avg > stats.HighestScore {
			stats.HighestScore = avg
		}
		if avg < stats.LowestScore {
			stats.LowestScore = avg
		}
		if r.OverallPerformance.IsPromoted {
			stats.PromotedCount++
		}
		stats.GradeDistribution[r.OverallPerformance.OverallGrade]++
	}

	n := decimal.NewFromInt(int64(len(results)))
	stats.AverageScore = toFloat(sum.Div(n))
	stats.PassRate = toFloat(decimal.NewFromInt(int64(stats.PromotedCount)).Mul(hundred).Div(n))
	return stats
}
