package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-results-api/internal/models"
)

const studentColumns = `id, student_id, school_id, first_name, middle_name, last_name, gender, date_of_birth, current_class,
        level, guardian_email, status, admission_date, created_by, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students of a school matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"school_id = $1"}
	args := []interface{}{filter.SchoolID}
	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		conditions = append(conditions, fmt.Sprintf("current_class = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	base := "FROM students WHERE " + strings.Join(conditions, " AND ")

	page, size := models.PageWindow(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY last_name, first_name, student_id LIMIT %d OFFSET %d", studentColumns, base, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by internal ID or by school-issued student identifier.
func (r *StudentRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE school_id = $1 AND (id::text = $2 OR student_id = $2)", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, schoolID, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record. The identifier must already be allocated.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, student_id, school_id, first_name, middle_name, last_name, gender, date_of_birth,
        current_class, level, guardian_email, status, admission_date, created_by, created_at, updated_at)
        VALUES (:id, :student_id, :school_id, :first_name, :middle_name, :last_name, :gender, :date_of_birth,
        :current_class, :level, :guardian_email, :status, :admission_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// CountBySchool returns how many students the school has registered. It seeds identifier
// counters that start empty.
func (r *StudentRepository) CountBySchool(ctx context.Context, schoolID string) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE school_id = $1`, schoolID); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
