package grading

import (
	"sort"
	"strings"

	"github.com/noah-isme/sma-results-api/internal/models"
)

// Standing is one participant of a ranking pass.
type Standing struct {
	Key       string
	StudentID string
	Score     float64
}

// Placement is the outcome of ranking for one participant.
type Placement struct {
	Position      int `json:"position"`
	TotalStudents int `json:"total_students"`
}

// Rank orders standings by descending score and assigns positions according to the tie-break
// policy. Participants with equal scores are listed by student identifier so ordinal ranking
// is deterministic.
func Rank(standings []Standing, policy models.TieBreakPolicy) map[string]Placement {
	sorted := make([]Standing, len(standings))
	copy(sorted, standings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if sorted[i].StudentID != sorted[j].StudentID {
			return sorted[i].StudentID < sorted[j].StudentID
		}
		return sorted[i].Key < sorted[j].Key
	})

	total := len(sorted)
	placements := make(map[string]Placement, total)
	position, distinct := 0, 0
	for i, s := range sorted {
		tied := i > 0 && sorted[i-1].Score == s.Score
		if !tied {
			distinct++
		}
		switch policy {
		case models.TieBreakOrdinal:
			position = i + 1
		case models.TieBreakDense:
			position = distinct
		default:
			if !tied {
				position = i + 1
			}
		}
		placements[s.Key] = Placement{Position: position, TotalStudents: total}
	}
	return placements
}

// RankCohort ranks every result of a cohort overall (by average score) and per subject
// (by subject total among results offering that subject code). It returns updated copies
// in the input order; inputs are not modified.
func RankCohort(results []models.Result, policy models.TieBreakPolicy) []models.Result {
	overall := make([]Standing, 0, len(results))
	bySubject := make(map[string][]Standing)
	for _, r := range results {
		overall = append(overall, Standing{Key: r.ID, StudentID: r.StudentID, Score: r.OverallPerformance.AverageScore})
		for _, subject := range r.Subjects {
			code := subjectKey(subject.SubjectCode)
			bySubject[code] = append(bySubject[code], Standing{Key: r.ID, StudentID: r.StudentID, Score: subject.TotalScore})
		}
	}

	overallPlacements := Rank(overall, policy)
	subjectPlacements := make(map[string]map[string]Placement, len(bySubject))
	for code, standings := range bySubject {
		subjectPlacements[code] = Rank(standings, policy)
	}

	ranked := make([]models.Result, len(results))
	for i, r := range results {
		p := overallPlacements[r.ID]
		r.OverallPerformance.Position = p.Position
		r.OverallPerformance.TotalStudents = p.TotalStudents

		subjects := make(models.SubjectRecords, len(r.Subjects))
		copy(subjects, r.Subjects)
		for j := range subjects {
			sp := subjectPlacements[subjectKey(subjects[j].SubjectCode)][r.ID]
			subjects[j].Position = sp.Position
			subjects[j].TotalStudents = sp.TotalStudents
		}
		r.Subjects = subjects
		ranked[i] = r
	}
	return ranked
}

func subjectKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
