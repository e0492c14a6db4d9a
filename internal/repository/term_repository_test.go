package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-results-api/internal/models"
)

func TestTermRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM terms WHERE school_id = $1 ORDER BY id FOR UPDATE")).
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1").AddRow("t2").AddRow("t3"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE terms SET is_active = FALSE")).
		WithArgs(sqlmock.AnyArg(), "school-1", "t2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE terms SET is_active = TRUE")).
		WithArgs(sqlmock.AnyArg(), "t2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetActive(context.Background(), "school-1", "t2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositorySetActiveForeignTerm(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM terms").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1").AddRow("t2"))
	mock.ExpectRollback()

	err := repo.SetActive(context.Background(), "school-1", "x1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositorySetActiveUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM terms").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t2"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE terms SET is_active = FALSE")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE terms SET is_active = TRUE")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_terms_one_active"})
	mock.ExpectRollback()

	err := repo.SetActive(context.Background(), "school-1", "t2")
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryCreateIsInactive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectExec("INSERT INTO terms").WillReturnResult(sqlmock.NewResult(1, 1))

	term := &models.Term{SchoolID: "school-1", AcademicYear: "2025/2026", Name: "First Term", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), term))
	assert.False(t, term.IsActive)
	assert.NotEmpty(t, term.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTermRepository(db)

	now := time.Now()
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("WHERE school_id = $1 AND academic_year = $2 AND is_active = $3 ORDER BY start_date, name")).
		WithArgs("school-1", "2025/2026", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "school_id", "academic_year", "name", "start_date", "end_date", "is_active", "created_at", "updated_at"}).
			AddRow("t1", "school-1", "2025/2026", "First Term", now, now.AddDate(0, 3, 0), true, now, now))

	terms, err := repo.List(context.Background(), models.TermFilter{SchoolID: "school-1", AcademicYear: "2025/2026", IsActive: &active})
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.True(t, terms[0].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}
