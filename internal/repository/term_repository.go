package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/pkg/database"
)

const termColumns = "id, school_id, academic_year, name, start_date, end_date, is_active, created_at, updated_at"

// TermRepository handles persistence for a school's academic terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// List returns terms of a school ordered by start date.
func (r *TermRepository) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	conditions := []string{"school_id = $1"}
	args := []interface{}{filter.SchoolID}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM terms WHERE %s ORDER BY start_date, name", termColumns, strings.Join(conditions, " AND "))
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindActive returns the school's active term.
func (r *TermRepository) FindActive(ctx context.Context, schoolID string) (*models.Term, error) {
	query := fmt.Sprintf("SELECT %s FROM terms WHERE school_id = $1 AND is_active = TRUE ORDER BY start_date LIMIT 1", termColumns)
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, schoolID); err != nil {
		return nil, err
	}
	return &term, nil
}

// Create inserts an inactive term; activation goes through SetActive only.
func (r *TermRepository) Create(ctx context.Context, term *models.Term) error {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if term.CreatedAt.IsZero() {
		term.CreatedAt = now
	}
	term.UpdatedAt = now
	term.IsActive = false

	const query = `INSERT INTO terms (id, school_id, academic_year, name, start_date, end_date, is_active, created_at, updated_at)
        VALUES (:id, :school_id, :academic_year, :name, :start_date, :end_date, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, term); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create term: %w", err)
	}
	return nil
}

// SetActive marks the term active and every other term of the school inactive in one
// transaction. All of the school's terms are locked first so concurrent activations queue
// behind each other. It returns sql.ErrNoRows when the term does not belong to the school.
func (r *TermRepository) SetActive(ctx context.Context, schoolID, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked []string
		if err := tx.SelectContext(ctx, &locked, `SELECT id FROM terms WHERE school_id = $1 ORDER BY id FOR UPDATE`, schoolID); err != nil {
			return fmt.Errorf("lock terms: %w", err)
		}
		owned := false
		for _, termID := range locked {
			if termID == id {
				owned = true
				break
			}
		}
		if !owned {
			return sql.ErrNoRows
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE terms SET is_active = FALSE, updated_at = $1 WHERE school_id = $2 AND is_active = TRUE AND id <> $3`, now, schoolID, id); err != nil {
			return fmt.Errorf("deactivate other terms: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE terms SET is_active = TRUE, updated_at = $1 WHERE id = $2`, now, id); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("activate term: %w", err)
		}
		return nil
	})
}
