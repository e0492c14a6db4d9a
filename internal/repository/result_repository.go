package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/pkg/database"
)

var (
	// ErrVersionConflict signals that a result changed since it was read.
	ErrVersionConflict = errors.New("result was modified concurrently")
	// ErrDuplicate signals a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)

const resultColumns = `id, student_id, school_id, academic_year, term, class_name, exam_type, subjects, overall_performance,
        attendance, behavior, comments, activities, report_card, next_term, status, is_active, version, created_by,
        last_updated_by, created_at, updated_at`

// ResultRepository persists computed results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create inserts a computed result at version 1.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	result.Version = 1
	result.IsActive = result.Status != models.ResultStatusArchived

	const query = `INSERT INTO results (id, student_id, school_id, academic_year, term, class_name, exam_type, subjects,
        overall_performance, attendance, behavior, comments, activities, report_card, next_term, status, is_active, version,
        created_by, last_updated_by, created_at, updated_at)
        VALUES (:id, :student_id, :school_id, :academic_year, :term, :class_name, :exam_type, :subjects,
        :overall_performance, :attendance, :behavior, :comments, :activities, :report_card, :next_term, :status, :is_active, :version,
        :created_by, :last_updated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// FindByID loads a result scoped to its school.
func (r *ResultRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Result, error) {
	query := fmt.Sprintf(`SELECT %s FROM results WHERE id = $1 AND school_id = $2`, resultColumns)
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, id, schoolID); err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns results matching the filter ordered by class then average score.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.Result, int, error) {
	conditions := []string{"school_id = $1"}
	args := []interface{}{filter.SchoolID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.StudentID != "" {
		add("student_id", filter.StudentID)
	}
	if filter.ClassName != "" {
		add("class_name", filter.ClassName)
	}
	if filter.AcademicYear != "" {
		add("academic_year", filter.AcademicYear)
	}
	if filter.Term != "" {
		add("term", filter.Term)
	}
	if filter.ExamType != "" {
		add("exam_type", filter.ExamType)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}
	if !filter.IncludeArchived && filter.Status != models.ResultStatusArchived {
		conditions = append(conditions, "is_active = TRUE")
	}

	base := "FROM results WHERE " + strings.Join(conditions, " AND ")

	page, size := models.PageWindow(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY academic_year DESC, term, class_name, (overall_performance->>'average_score')::numeric DESC, student_id LIMIT %d OFFSET %d`,
		resultColumns, base, size, offset)
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	return results, total, nil
}

// ListCohort returns every active result of a ranking population.
func (r *ResultRepository) ListCohort(ctx context.Context, cohort models.Cohort) ([]models.Result, error) {
	query := fmt.Sprintf(`SELECT %s FROM results
        WHERE school_id = $1 AND class_name = $2 AND academic_year = $3 AND term = $4 AND exam_type = $5 AND is_active = TRUE
        ORDER BY student_id`, resultColumns)
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, cohort.SchoolID, cohort.ClassName, cohort.AcademicYear, cohort.Term, cohort.ExamType); err != nil {
		return nil, fmt.Errorf("list cohort: %w", err)
	}
	return results, nil
}

// Update stores a recomputed result when its version still matches, then bumps the version.
func (r *ResultRepository) Update(ctx context.Context, result *models.Result) error {
	result.UpdatedAt = time.Now().UTC()
	result.IsActive = result.Status != models.ResultStatusArchived

	const query = `UPDATE results SET class_name = :class_name, exam_type = :exam_type, subjects = :subjects,
        overall_performance = :overall_performance, attendance = :attendance, behavior = :behavior, comments = :comments,
        activities = :activities, report_card = :report_card, next_term = :next_term, status = :status, is_active = :is_active,
        last_updated_by = :last_updated_by, updated_at = :updated_at, version = version + 1
        WHERE id = :id AND school_id = :school_id AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, result)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update result rows: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	result.Version++
	return nil
}

// RankFunc receives the locked cohort and returns the rows to write back.
type RankFunc func(cohort []models.Result) ([]models.Result, error)

// RankCohort locks every active result of the cohort, lets fn compute placements and writes
// all returned rows before committing, so readers never observe a partially ranked cohort.
func (r *ResultRepository) RankCohort(ctx context.Context, cohort models.Cohort, fn RankFunc) ([]models.Result, error) {
	var ranked []models.Result
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM results
        WHERE school_id = $1 AND class_name = $2 AND academic_year = $3 AND term = $4 AND exam_type = $5 AND is_active = TRUE
        ORDER BY student_id FOR UPDATE`, resultColumns)
		var locked []models.Result
		if err := tx.SelectContext(ctx, &locked, query, cohort.SchoolID, cohort.ClassName, cohort.AcademicYear, cohort.Term, cohort.ExamType); err != nil {
			return fmt.Errorf("lock cohort: %w", err)
		}

		out, err := fn(locked)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		const update = `UPDATE results SET subjects = $1, overall_performance = $2, status = $3, report_card = $4,
        updated_at = $5, version = version + 1 WHERE id = $6`
		for i := range out {
			row := &out[i]
			if _, err := tx.ExecContext(ctx, update, row.Subjects, row.OverallPerformance, row.Status, row.ReportCard, now, row.ID); err != nil {
				return fmt.Errorf("write ranking for %s: %w", row.ID, err)
			}
			row.UpdatedAt = now
			row.Version++
		}
		ranked = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
