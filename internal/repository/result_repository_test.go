package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-results-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var resultColumnNames = []string{"id", "student_id", "school_id", "academic_year", "term", "class_name", "exam_type", "subjects",
	"overall_performance", "attendance", "behavior", "comments", "activities", "report_card", "next_term", "status", "is_active",
	"version", "created_by", "last_updated_by", "created_at", "updated_at"}

func addResultRow(rows *sqlmock.Rows, id, studentID string, average float64, version int) *sqlmock.Rows {
	now := time.Now()
	subjects := fmt.Sprintf(`[{"subject_name":"Mathematics","subject_code":"MTH","total_score":%g}]`, average)
	overall := fmt.Sprintf(`{"total_score":%g,"average_score":%g,"overall_grade":"B"}`, average, average)
	return rows.AddRow(id, studentID, "school-1", "2025/2026", "First Term", "JSS1A", "End-of-Term",
		[]byte(subjects), []byte(overall), []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`[]`),
		[]byte(`{"is_generated":false}`), nil, "Draft", true, version, "admin-1", nil, now, now)
}

func sampleResult() *models.Result {
	return &models.Result{
		StudentID:    "STU250001",
		SchoolID:     "school-1",
		AcademicYear: "2025/2026",
		Term:         "First Term",
		ClassName:    "JSS1A",
		ExamType:     models.ExamTypeEndOfTerm,
		Status:       models.ResultStatusDraft,
		CreatedBy:    "admin-1",
	}
}

func TestResultRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("INSERT INTO results").WillReturnResult(sqlmock.NewResult(1, 1))

	result := sampleResult()
	require.NoError(t, repo.Create(context.Background(), result))
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, 1, result.Version)
	assert.True(t, result.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("INSERT INTO results").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), sampleResult())
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryFindByIDDecodesDocuments(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	rows := addResultRow(sqlmock.NewRows(resultColumnNames), "r1", "STU250001", 72.5, 3)
	mock.ExpectQuery(regexp.QuoteMeta("FROM results WHERE id = $1 AND school_id = $2")).
		WithArgs("r1", "school-1").
		WillReturnRows(rows)

	result, err := repo.FindByID(context.Background(), "school-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Version)
	require.Len(t, result.Subjects, 1)
	assert.Equal(t, "MTH", result.Subjects[0].SubjectCode)
	assert.Equal(t, 72.5, result.OverallPerformance.AverageScore)
	assert.Nil(t, result.LastUpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery("FROM results WHERE id").WillReturnRows(sqlmock.NewRows(resultColumnNames))

	_, err := repo.FindByID(context.Background(), "school-1", "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestResultRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	rows := addResultRow(sqlmock.NewRows(resultColumnNames), "r1", "STU250001", 80, 1)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE school_id = $1 AND class_name = $2 AND term = $3 AND is_active = TRUE ORDER BY") + ".*" + regexp.QuoteMeta("LIMIT 100 OFFSET 0")).
		WithArgs("school-1", "JSS1A", "First Term").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM results WHERE school_id = $1")).
		WithArgs("school-1", "JSS1A", "First Term").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	results, total, err := repo.List(context.Background(), models.ResultFilter{SchoolID: "school-1", ClassName: "JSS1A", Term: "First Term", PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpdateVersionConflict(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("version = version + 1")).WillReturnResult(sqlmock.NewResult(0, 0))

	result := sampleResult()
	result.ID = "r1"
	result.Version = 2
	err := repo.Update(context.Background(), result)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 2, result.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpdateBumpsVersion(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("UPDATE results SET").WillReturnResult(sqlmock.NewResult(0, 1))

	result := sampleResult()
	result.ID = "r1"
	result.Version = 2
	result.Status = models.ResultStatusArchived
	require.NoError(t, repo.Update(context.Background(), result))
	assert.Equal(t, 3, result.Version)
	assert.False(t, result.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListCohortScopesByExamType(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)
	cohort := models.Cohort{SchoolID: "school-1", ClassName: "JSS1A", AcademicYear: "2025/2026", Term: "First Term", ExamType: models.ExamTypeMidTerm}

	mock.ExpectQuery(`term = \$4 AND exam_type = \$5 AND is_active = TRUE`).
		WithArgs("school-1", "JSS1A", "2025/2026", "First Term", "Mid-Term").
		WillReturnRows(addResultRow(sqlmock.NewRows(resultColumnNames), "r1", "STU250001", 75, 1))

	results, err := repo.ListCohort(context.Background(), cohort)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryRankCohortWritesInTransaction(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)
	cohort := models.Cohort{SchoolID: "school-1", ClassName: "JSS1A", AcademicYear: "2025/2026", Term: "First Term", ExamType: models.ExamTypeEndOfTerm}

	rows := sqlmock.NewRows(resultColumnNames)
	addResultRow(rows, "r1", "STU250001", 60, 1)
	addResultRow(rows, "r2", "STU250002", 90, 4)

	mock.ExpectBegin()
	mock.ExpectQuery(`exam_type = \$5 AND is_active = TRUE\s+ORDER BY student_id FOR UPDATE`).
		WithArgs("school-1", "JSS1A", "2025/2026", "First Term", "End-of-Term").
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE results SET subjects").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE results SET subjects").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "r2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ranked, err := repo.RankCohort(context.Background(), cohort, func(locked []models.Result) ([]models.Result, error) {
		require.Len(t, locked, 2)
		locked[0].OverallPerformance.Position = 2
		locked[1].OverallPerformance.Position = 1
		return locked, nil
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, 2, ranked[0].Version)
	assert.Equal(t, 5, ranked[1].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryRankCohortRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(addResultRow(sqlmock.NewRows(resultColumnNames), "r1", "STU250001", 60, 1))
	mock.ExpectRollback()

	boom := errors.New("published result in cohort")
	_, err := repo.RankCohort(context.Background(), models.Cohort{SchoolID: "school-1"}, func([]models.Result) ([]models.Result, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
