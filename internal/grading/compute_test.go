package grading

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func rawResult() models.Result {
	return models.Result{
		ID:           "res-1",
		StudentID:    "STU250001",
		SchoolID:     "school-1",
		AcademicYear: "2025/2026",
		Term:         "First Term",
		ClassName:    "JSS1A",
		ExamType:     models.ExamTypeEndOfTerm,
		Subjects: models.SubjectRecords{
			{SubjectName: "Mathematics", SubjectCode: "mth", Scores: sampleScores(), Weightings: models.DefaultWeightings(), PassMark: 50},
			{SubjectName: "English", SubjectCode: "ENG", Scores: models.ComponentScores{ClassWork: 40, Homework: 40, ClassTest: 40, Assignment: 40, Project: 40, MidTermExam: 40, FinalExam: 40}},
		},
		Attendance: models.Attendance{TotalDays: 20, PresentDays: 18, AbsentDays: 2},
		Behavior:   models.DefaultBehavior(),
	}
}

func defaultConfig() GradingConfig {
	return NewGradingConfig(nil, DefaultPolicy(), DefaultPassMark)
}

func TestComputeDerivedFields(t *testing.T) {
	computed, err := ComputeDerivedFields(rawResult(), defaultConfig())
	require.NoError(t, err)

	math := computed.Subjects[0]
	assert.Equal(t, "MTH", math.SubjectCode)
	assert.Equal(t, 72.5, math.TotalScore)
	assert.Equal(t, "B", math.Grade)
	assert.Equal(t, 3.0, math.GradePoint)
	assert.Equal(t, "Good", math.Remark)
	assert.True(t, math.IsPassed)

	english := computed.Subjects[1]
	assert.Equal(t, models.DefaultWeightings(), english.Weightings)
	assert.Equal(t, 50.0, english.PassMark)
	assert.Equal(t, 40.0, english.TotalScore)
	assert.Equal(t, "E", english.Grade)
	assert.False(t, english.IsPassed)

	overall := computed.OverallPerformance
	assert.Equal(t, 112.5, overall.TotalScore)
	assert.Equal(t, 56.25, overall.AverageScore)
	assert.Equal(t, "D+", overall.OverallGrade)
	assert.Equal(t, 2.0, overall.OverallGPA)
	assert.Equal(t, 1, overall.SubjectsPassed)
	assert.Equal(t, 1, overall.SubjectsFailed)
	assert.False(t, overall.IsPromoted)

	assert.Equal(t, 90.0, computed.Attendance.AttendancePercentage)
	assert.Equal(t, models.ResultStatusDraft, computed.Status)
}

func TestComputeDerivedFieldsKeepsRankAndIgnoresClientDerivedValues(t *testing.T) {
	raw := rawResult()
	raw.OverallPerformance = models.OverallPerformance{Position: 4, TotalStudents: 30, NextClass: "JSS2A", AverageScore: 99, IsPromoted: true}
	raw.Subjects[0].TotalScore = 100
	raw.Subjects[0].Grade = "A+"

	computed, err := ComputeDerivedFields(raw, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 4, computed.OverallPerformance.Position)
	assert.Equal(t, 30, computed.OverallPerformance.TotalStudents)
	assert.False(t, computed.OverallPerformance.IsPromoted)
	assert.Empty(t, computed.OverallPerformance.NextClass, "next class is dropped once the result is no longer promoted")
	assert.Equal(t, 56.25, computed.OverallPerformance.AverageScore)
	assert.Equal(t, 72.5, computed.Subjects[0].TotalScore)
	assert.Equal(t, "B", computed.Subjects[0].Grade)
	assert.Equal(t, "mth", raw.Subjects[0].SubjectCode, "input must not be modified")
}

func TestComputeDerivedFieldsNextClassFollowsPromotion(t *testing.T) {
	raw := rawResult()
	raw.Subjects[1].Scores = sampleScores()
	raw.OverallPerformance.NextClass = "JSS2A"

	promoted, err := ComputeDerivedFields(raw, defaultConfig())
	require.NoError(t, err)
	require.True(t, promoted.OverallPerformance.IsPromoted)
	assert.Equal(t, "JSS2A", promoted.OverallPerformance.NextClass)

	promoted.Subjects[0].Scores = models.ComponentScores{}
	promoted.Subjects[1].Scores = models.ComponentScores{}
	demoted, err := ComputeDerivedFields(promoted, defaultConfig())
	require.NoError(t, err)
	assert.False(t, demoted.OverallPerformance.IsPromoted)
	assert.Empty(t, demoted.OverallPerformance.NextClass)
}

func TestComputeDerivedFieldsTreatsZeroPassMarkAndWeightingsAsUnset(t *testing.T) {
	raw := rawResult()
	raw.Subjects[0].PassMark = 0
	raw.Subjects[0].Weightings = models.Weightings{}

	computed, err := ComputeDerivedFields(raw, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultPassMark, computed.Subjects[0].PassMark)
	assert.Equal(t, models.DefaultWeightings(), computed.Subjects[0].Weightings)
	assert.Equal(t, 72.5, computed.Subjects[0].TotalScore)

	raw = rawResult()
	raw.Subjects[0].Weightings = models.Weightings{FinalExam: 60}
	_, err = ComputeDerivedFields(raw, defaultConfig())
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "a partial weighting set is not treated as unset")
}

func TestComputeDerivedFieldsCountsCommentCharacters(t *testing.T) {
	raw := rawResult()
	raw.Subjects[0].TeacherComment = strings.Repeat("é", 200)
	_, err := ComputeDerivedFields(raw, defaultConfig())
	require.NoError(t, err, "200 two-byte characters are within the limit")

	raw.Subjects[0].TeacherComment = strings.Repeat("é", 201)
	_, err = ComputeDerivedFields(raw, defaultConfig())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestComputeDerivedFieldsRoundTripIsIdempotent(t *testing.T) {
	first, err := ComputeDerivedFields(rawResult(), defaultConfig())
	require.NoError(t, err)

	payload, err := json.Marshal(first)
	require.NoError(t, err)
	var decoded models.Result
	require.NoError(t, json.Unmarshal(payload, &decoded))

	second, err := ComputeDerivedFields(decoded, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, first.Subjects, second.Subjects)
	assert.Equal(t, first.OverallPerformance, second.OverallPerformance)
	assert.Equal(t, first.Attendance, second.Attendance)
}

func TestComputeDerivedFieldsValidation(t *testing.T) {
	cases := map[string]func(r *models.Result){
		"missing student":  func(r *models.Result) { r.StudentID = "" },
		"unknown exam":     func(r *models.Result) { r.ExamType = "Quiz" },
		"duplicate code":   func(r *models.Result) { r.Subjects[1].SubjectCode = "MTH" },
		"score too high":   func(r *models.Result) { r.Subjects[0].Scores.FinalExam = 120 },
		"bad weightings":   func(r *models.Result) { r.Subjects[0].Weightings.FinalExam = 30 },
		"bad attendance":   func(r *models.Result) { r.Attendance.PresentDays = 25 },
		"unnamed subject":  func(r *models.Result) { r.Subjects[0].SubjectName = " " },
		"unnamed activity": func(r *models.Result) { r.Activities = models.Activities{{Grade: models.RatingGood}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			raw := rawResult()
			mutate(&raw)
			_, err := ComputeDerivedFields(raw, defaultConfig())
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestComputeDerivedFieldsCustomScale(t *testing.T) {
	school := &models.School{
		GradingSystem: models.GradingSystem{
			Type: models.GradingTypeCustom,
			Scale: []models.GradeBand{
				{Grade: "Fail", MinScore: 0, MaxScore: 44.99},
				{Grade: "Pass", MinScore: 45, MaxScore: 100, GradePoint: point(2)},
			},
			PassMarkDefault: 45,
		},
	}
	cfg := NewGradingConfig(school, DefaultPolicy(), DefaultPassMark)
	raw := rawResult()
	raw.Subjects[1].PassMark = 0

	computed, err := ComputeDerivedFields(raw, cfg)
	require.NoError(t, err)
	assert.Equal(t, "Pass", computed.Subjects[0].Grade)
	assert.Equal(t, 2.0, computed.Subjects[0].GradePoint)
	assert.Equal(t, "Fail", computed.Subjects[1].Grade)
	assert.Equal(t, 45.0, computed.Subjects[1].PassMark)
	assert.False(t, computed.OverallPerformance.IsPromoted, "one of two subjects passed is below the threshold")
}

func TestComputeDerivedFieldsGappyScale(t *testing.T) {
	school := &models.School{
		GradingSystem: models.GradingSystem{
			Type: models.GradingTypeCustom,
			Scale: []models.GradeBand{
				{Grade: "F", MinScore: 0, MaxScore: 50},
				{Grade: "A", MinScore: 60, MaxScore: 100},
			},
		},
	}
	_, err := ComputeDerivedFields(rawResult(), NewGradingConfig(school, DefaultPolicy(), DefaultPassMark))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfiguration))
}
