package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-results-api/internal/models"
)

func subjectsWithTotals(totals ...float64) []models.SubjectRecord {
	subjects := make([]models.SubjectRecord, 0, len(totals))
	for _, total := range totals {
		info := DefaultClassify(total)
		subjects = append(subjects, models.SubjectRecord{
			PassMark:   50,
			TotalScore: total,
			Grade:      info.Grade,
			GradePoint: info.Point,
			IsPassed:   total >= 50,
		})
	}
	return subjects
}

func TestSummarizeEmptySubjects(t *testing.T) {
	summary, err := Summarize(nil, NewClassifier(nil), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.AverageScore)
	assert.Equal(t, 0.0, summary.OverallGPA)
	assert.Equal(t, 0, summary.SubjectsPassed)
	assert.Equal(t, 0, summary.SubjectsFailed)
	assert.True(t, summary.IsPromoted)

	policy := DefaultPolicy()
	policy.PromoteWhenNoSubjects = false
	summary, err = Summarize(nil, NewClassifier(nil), policy)
	require.NoError(t, err)
	assert.False(t, summary.IsPromoted)
}

func TestSummarizePromotionThreshold(t *testing.T) {
	summary, err := Summarize(subjectsWithTotals(80, 70, 60, 40, 30), NewClassifier(nil), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.SubjectsPassed)
	assert.Equal(t, 2, summary.SubjectsFailed)
	assert.True(t, summary.IsPromoted)

	summary, err = Summarize(subjectsWithTotals(80, 70, 45, 40, 30), NewClassifier(nil), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SubjectsPassed)
	assert.Equal(t, 3, summary.SubjectsFailed)
	assert.False(t, summary.IsPromoted)

	strict := DefaultPolicy()
	strict.PromotionThreshold = 0.8
	summary, err = Summarize(subjectsWithTotals(80, 70, 60, 40, 30), NewClassifier(nil), strict)
	require.NoError(t, err)
	assert.False(t, summary.IsPromoted)
}

func TestSummarizeAverages(t *testing.T) {
	summary, err := Summarize(subjectsWithTotals(72.5, 60, 91.25), NewClassifier(nil), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 223.75, summary.TotalScore)
	assert.Equal(t, 74.58, summary.AverageScore)
	// (3.0 + 2.3 + 4.0) / 3
	assert.Equal(t, 3.1, summary.OverallGPA)
	assert.Equal(t, "B", summary.OverallGrade)
	assert.Equal(t, 3, summary.SubjectsPassed)
	assert.True(t, summary.IsPromoted)
}

func TestPolicyWithOverrides(t *testing.T) {
	threshold := 0.75
	noVacuous := false
	dense := models.TieBreakDense
	policy := DefaultPolicy().WithOverrides(models.SchoolPolicy{
		PromotionThreshold:    &threshold,
		PromoteWhenNoSubjects: &noVacuous,
		RankingTieBreak:       &dense,
	})
	assert.Equal(t, 0.75, policy.PromotionThreshold)
	assert.False(t, policy.PromoteWhenNoSubjects)
	assert.Equal(t, models.TieBreakDense, policy.TieBreak)

	unknown := models.TieBreakPolicy("random")
	policy = DefaultPolicy().WithOverrides(models.SchoolPolicy{RankingTieBreak: &unknown})
	assert.Equal(t, models.TieBreakCompetition, policy.TieBreak)
}
