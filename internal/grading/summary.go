package grading

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-results-api/internal/models"
)

// DefaultPromotionThreshold is the share of passed subjects that promotes a student who
// failed at least one subject.
const DefaultPromotionThreshold = 0.6

// Policy carries the school-overridable rules used while summarising and ranking.
type Policy struct {
	PromotionThreshold    float64
	PromoteWhenNoSubjects bool
	TieBreak              models.TieBreakPolicy
}

// DefaultPolicy returns the documented defaults: 60% pass ratio, vacuous promotion for a
// result without subjects, competition ranking for ties.
func DefaultPolicy() Policy {
	return Policy{
		PromotionThreshold:    DefaultPromotionThreshold,
		PromoteWhenNoSubjects: true,
		TieBreak:              models.TieBreakCompetition,
	}
}

// WithOverrides applies a school's policy on top of p.
func (p Policy) WithOverrides(o models.SchoolPolicy) Policy {
	if o.PromotionThreshold != nil {
		p.PromotionThreshold = *o.PromotionThreshold
	}
	if o.PromoteWhenNoSubjects != nil {
		p.PromoteWhenNoSubjects = *o.PromoteWhenNoSubjects
	}
	if o.RankingTieBreak != nil && o.RankingTieBreak.Valid() {
		p.TieBreak = *o.RankingTieBreak
	}
	if !p.TieBreak.Valid() {
		p.TieBreak = models.TieBreakCompetition
	}
	return p
}

// Summarize rolls computed subject records into an overall performance. Rank fields and
// NextClass are left zero for the caller to carry over.
func Summarize(subjects []models.SubjectRecord, classifier *Classifier, policy Policy) (models.OverallPerformance, error) {
	var summary models.OverallPerformance
	total, points := decimal.Zero, decimal.Zero
	for _, subject := range subjects {
		total = total.Add(decimal.NewFromFloat(subject.TotalScore))
		points = points.Add(decimal.NewFromFloat(subject.GradePoint))
		if subject.TotalScore >= subject.PassMark {
			summary.SubjectsPassed++
		} else {
			summary.SubjectsFailed++
		}
	}

	count := len(subjects)
	summary.TotalScore = toFloat(total)
	if count > 0 {
		n := decimal.NewFromInt(int64(count))
		summary.AverageScore = toFloat(total.Div(n))
		summary.OverallGPA = toFloat(points.Div(n))
	}

	info, err := classifier.Classify(summary.AverageScore)
	if err != nil {
		return models.OverallPerformance{}, err
	}
	summary.OverallGrade = info.Grade
	summary.IsPromoted = promoted(summary.SubjectsPassed, summary.SubjectsFailed, policy)
	return summary, nil
}

func promoted(passed, failed int, policy Policy) bool {
	count := passed + failed
	if count == 0 {
		return policy.PromoteWhenNoSubjects
	}
	if failed == 0 {
		return true
	}
	return float64(passed)/float64(count) >= policy.PromotionThreshold
}
