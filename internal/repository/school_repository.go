package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/pkg/database"
)

const schoolColumns = `id, name, motto, logo_url, current_academic_year, academic_year_start, academic_year_end,
        grading_system, policy, settings, is_active, created_at, updated_at`

// SchoolRepository persists schools and their grading configuration.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// FindByID loads a school.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	query := fmt.Sprintf("SELECT %s FROM schools WHERE id = $1", schoolColumns)
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// Create inserts a school.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if school.CreatedAt.IsZero() {
		school.CreatedAt = now
	}
	school.UpdatedAt = now

	const query = `INSERT INTO schools (id, name, motto, logo_url, current_academic_year, academic_year_start, academic_year_end,
        grading_system, policy, settings, is_active, created_at, updated_at)
        VALUES (:id, :name, :motto, :logo_url, :current_academic_year, :academic_year_start, :academic_year_end,
        :grading_system, :policy, :settings, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// UpdateGradingSystem replaces the school's grading system.
func (r *SchoolRepository) UpdateGradingSystem(ctx context.Context, id string, system models.GradingSystem) error {
	const query = `UPDATE schools SET grading_system = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, system, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update grading system: %w", err)
	}
	return nil
}

// UpdatePolicy replaces the school's promotion and ranking overrides.
func (r *SchoolRepository) UpdatePolicy(ctx context.Context, id string, policy models.SchoolPolicy) error {
	const query = `UPDATE schools SET policy = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, policy, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update school policy: %w", err)
	}
	return nil
}

// StartAcademicYear moves the school to a new academic year: earlier terms are kept but
// deactivated and the new term list is inserted, all in one transaction. terms must already
// carry at most one active entry.
func (r *SchoolRepository) StartAcademicYear(ctx context.Context, school *models.School, terms []models.Term) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const updateSchool = `UPDATE schools SET current_academic_year = $1, academic_year_start = $2, academic_year_end = $3,
        updated_at = $4 WHERE id = $5`
		if _, err := tx.ExecContext(ctx, updateSchool, school.CurrentYear, school.YearStartDate, school.YearEndDate, now, school.ID); err != nil {
			return fmt.Errorf("update academic year: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE terms SET is_active = FALSE, updated_at = $1 WHERE school_id = $2 AND is_active = TRUE`, now, school.ID); err != nil {
			return fmt.Errorf("deactivate previous terms: %w", err)
		}

		const insertTerm = `INSERT INTO terms (id, school_id, academic_year, name, start_date, end_date, is_active, created_at, updated_at)
        VALUES (:id, :school_id, :academic_year, :name, :start_date, :end_date, :is_active, :created_at, :updated_at)`
		for i := range terms {
			term := &terms[i]
			if term.ID == "" {
				term.ID = uuid.NewString()
			}
			term.SchoolID = school.ID
			term.AcademicYear = school.CurrentYear
			term.CreatedAt, term.UpdatedAt = now, now
			if _, err := tx.NamedExecContext(ctx, insertTerm, term); err != nil {
				if isUniqueViolation(err) {
					return ErrDuplicate
				}
				return fmt.Errorf("insert term %s: %w", term.Name, err)
			}
		}
		school.UpdatedAt = now
		return nil
	})
}
