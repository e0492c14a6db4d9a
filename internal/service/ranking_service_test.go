package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func cohortResult(id, studentID string, average float64, status models.ResultStatus) models.Result {
	return models.Result{
		ID:           id,
		StudentID:    studentID,
		SchoolID:     "school-1",
		AcademicYear: "2025/2026",
		Term:         "First Term",
		ClassName:    "JSS1A",
		ExamType:     models.ExamTypeEndOfTerm,
		Subjects: models.SubjectRecords{
			{SubjectName: "Mathematics", SubjectCode: "MTH", TotalScore: average},
		},
		OverallPerformance: models.OverallPerformance{AverageScore: average, TotalScore: average},
		Status:             status,
	}
}

func newRankingFixture(policy *models.TieBreakPolicy, results ...models.Result) (*RankingService, *fakeResultStore, *fakeCache) {
	school := testSchool()
	school.Policy.RankingTieBreak = policy
	schools := newFakeSchoolStore(school)
	store := newFakeResultStore(results...)
	cache := newFakeCache()
	configs := NewGradingConfigService(schools, grading.DefaultPolicy(), grading.DefaultPassMark)
	return NewRankingService(store, configs, cache, NewMetricsService(), zap.NewNop()), store, cache
}

var firstTerm = CalculatePositionsRequest{ClassName: "JSS1A", AcademicYear: "2025/2026", Term: "First Term"}

func TestRankingServiceCompetitionTies(t *testing.T) {
	svc, store, cache := newRankingFixture(nil,
		cohortResult("r1", "STU250001", 80, models.ResultStatusDraft),
		cohortResult("r2", "STU250002", 90, models.ResultStatusDraft),
		cohortResult("r3", "STU250003", 80, models.ResultStatusDraft),
		cohortResult("r4", "STU250004", 70, models.ResultStatusDraft),
	)

	summary, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Ranked)
	assert.Equal(t, models.TieBreakCompetition, summary.Policy)
	assert.Empty(t, summary.Reopened)

	assert.Equal(t, 2, store.get("r1").OverallPerformance.Position)
	assert.Equal(t, 1, store.get("r2").OverallPerformance.Position)
	assert.Equal(t, 2, store.get("r3").OverallPerformance.Position)
	assert.Equal(t, 4, store.get("r4").OverallPerformance.Position)
	assert.Equal(t, 4, store.get("r4").OverallPerformance.TotalStudents)
	assert.Equal(t, 4, store.get("r4").Subjects[0].Position)
	assert.Contains(t, cache.invalidated, statsKey(summary.Cohort))
}

func TestRankingServiceSchoolPolicyOverride(t *testing.T) {
	dense := models.TieBreakDense
	svc, store, _ := newRankingFixture(&dense,
		cohortResult("r1", "STU250001", 80, models.ResultStatusDraft),
		cohortResult("r2", "STU250002", 80, models.ResultStatusDraft),
		cohortResult("r3", "STU250003", 70, models.ResultStatusDraft),
	)

	summary, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.NoError(t, err)
	assert.Equal(t, models.TieBreakDense, summary.Policy)
	assert.Equal(t, 2, store.get("r3").OverallPerformance.Position)
}

func TestRankingServiceIgnoresOtherCohortsAndArchived(t *testing.T) {
	other := cohortResult("r9", "STU250009", 99, models.ResultStatusDraft)
	other.ClassName = "JSS1B"
	svc, store, _ := newRankingFixture(nil,
		cohortResult("r1", "STU250001", 60, models.ResultStatusDraft),
		cohortResult("r2", "STU250002", 95, models.ResultStatusArchived),
		other,
	)

	summary, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ranked)
	assert.Equal(t, 1, store.get("r1").OverallPerformance.Position)
	assert.Equal(t, 1, store.get("r1").OverallPerformance.TotalStudents)
	assert.Zero(t, store.get("r9").OverallPerformance.Position)
	assert.Zero(t, store.get("r2").OverallPerformance.Position)
}

func TestRankingServiceSeparatesExamTypes(t *testing.T) {
	midTerm := cohortResult("r1", "STU250001", 90, models.ResultStatusDraft)
	midTerm.ExamType = models.ExamTypeMidTerm
	svc, store, _ := newRankingFixture(nil,
		midTerm,
		cohortResult("r2", "STU250001", 60, models.ResultStatusDraft),
		cohortResult("r3", "STU250002", 70, models.ResultStatusDraft),
	)

	summary, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.NoError(t, err)
	assert.Equal(t, models.ExamTypeEndOfTerm, summary.Cohort.ExamType)
	assert.Equal(t, 2, summary.Ranked)
	assert.Equal(t, 2, store.get("r2").OverallPerformance.Position)
	assert.Equal(t, 2, store.get("r2").OverallPerformance.TotalStudents)
	assert.Equal(t, 1, store.get("r3").OverallPerformance.Position)
	assert.Zero(t, store.get("r1").OverallPerformance.Position)

	req := firstTerm
	req.ExamType = models.ExamTypeMidTerm
	summary, err = svc.CalculatePositions(context.Background(), "school-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ranked)
	assert.Equal(t, 1, store.get("r1").OverallPerformance.TotalStudents)
	assert.Equal(t, 2, store.get("r2").OverallPerformance.TotalStudents)

	req.ExamType = "Quiz"
	_, err = svc.CalculatePositions(context.Background(), "school-1", req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestRankingServiceReopensCompletedWhosePlacementChanged(t *testing.T) {
	stable := cohortResult("r1", "STU250001", 90, models.ResultStatusCompleted)
	stable.OverallPerformance.Position = 1
	stable.OverallPerformance.TotalStudents = 2
	stable.Subjects[0].Position = 1
	stable.Subjects[0].TotalStudents = 2
	stable.ReportCard = models.ReportCard{IsGenerated: true, FilePath: "report-cards/school-1/r1.pdf"}

	moved := cohortResult("r2", "STU250002", 70, models.ResultStatusCompleted)
	moved.OverallPerformance.Position = 2
	moved.OverallPerformance.TotalStudents = 2
	moved.Subjects[0].Position = 2
	moved.Subjects[0].TotalStudents = 2
	moved.ReportCard = models.ReportCard{IsGenerated: true, FilePath: "report-cards/school-1/r2.pdf"}

	svc, store, _ := newRankingFixture(nil, stable, moved, cohortResult("r3", "STU250003", 80, models.ResultStatusDraft))

	summary, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2"}, summary.Reopened, "total students changed for both")

	r2 := store.get("r2")
	assert.Equal(t, models.ResultStatusDraft, r2.Status)
	assert.False(t, r2.ReportCard.IsGenerated)
	assert.Equal(t, 3, r2.OverallPerformance.Position)
}

func TestRankingServiceKeepsCompletedWhenPlacementUnchanged(t *testing.T) {
	done := cohortResult("r1", "STU250001", 90, models.ResultStatusCompleted)
	done.OverallPerformance.Position = 1
	done.OverallPerformance.TotalStudents = 1
	done.Subjects[0].Position = 1
	done.Subjects[0].TotalStudents = 1
	done.ReportCard = models.ReportCard{IsGenerated: true}
	svc, store, _ := newRankingFixture(nil, done)

	summary, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.NoError(t, err)
	assert.Empty(t, summary.Reopened)
	assert.Equal(t, models.ResultStatusCompleted, store.get("r1").Status)
	assert.True(t, store.get("r1").ReportCard.IsGenerated)
}

func TestRankingServiceRejectsPublishedCohort(t *testing.T) {
	svc, store, _ := newRankingFixture(nil,
		cohortResult("r1", "STU250001", 90, models.ResultStatusPublished),
		cohortResult("r2", "STU250002", 80, models.ResultStatusDraft),
	)

	_, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrState))
	assert.Zero(t, store.get("r2").OverallPerformance.Position)
}

func TestRankingServiceEmptyCohort(t *testing.T) {
	svc, _, _ := newRankingFixture(nil)
	_, err := svc.CalculatePositions(context.Background(), "school-1", firstTerm)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRankingServiceValidatesRequest(t *testing.T) {
	svc, _, _ := newRankingFixture(nil)
	_, err := svc.CalculatePositions(context.Background(), "school-1", CalculatePositionsRequest{ClassName: "JSS1A"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
