package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

// StudentSequenceScope names the identifier counter used for student numbers.
const StudentSequenceScope = "student"

// maxAllocationAttempts bounds retries when a freshly allocated identifier is already taken,
// which only happens when a counter was seeded below the identifiers in use.
const maxAllocationAttempts = 5

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type sequenceAllocator interface {
	Next(ctx context.Context, schoolID, scope string) (int64, error)
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	FirstName     string    `json:"first_name" validate:"required"`
	MiddleName    string    `json:"middle_name"`
	LastName      string    `json:"last_name" validate:"required"`
	Gender        string    `json:"gender" validate:"required,oneof=Male Female"`
	DateOfBirth   time.Time `json:"date_of_birth" validate:"required"`
	CurrentClass  string    `json:"current_class" validate:"required"`
	Level         string    `json:"level"`
	GuardianEmail string    `json:"guardian_email" validate:"omitempty,email"`
	AdmissionDate time.Time `json:"admission_date"`
}

// StudentService handles student registration and identifier allocation.
type StudentService struct {
	repo      studentRepository
	sequence  sequenceAllocator
	prefix    string
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, sequence sequenceAllocator, prefix string, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		sequence:  sequence,
		prefix:    prefix,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a student by internal ID or student identifier.
func (s *StudentService) Get(ctx context.Context, schoolID, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a student and allocates its identifier. Identifiers are never reused or
// reassigned.
func (s *StudentService) Create(ctx context.Context, schoolID, actorID string, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	admitted := req.AdmissionDate
	if admitted.IsZero() {
		admitted = s.now().UTC()
	}

	student := &models.Student{
		SchoolID:      schoolID,
		FirstName:     strings.TrimSpace(req.FirstName),
		MiddleName:    strings.TrimSpace(req.MiddleName),
		LastName:      strings.TrimSpace(req.LastName),
		Gender:        req.Gender,
		DateOfBirth:   req.DateOfBirth,
		CurrentClass:  req.CurrentClass,
		Level:         req.Level,
		GuardianEmail: req.GuardianEmail,
		Status:        models.StudentStatusActive,
		AdmissionDate: admitted,
		CreatedBy:     actorID,
	}

	for attempt := 1; ; attempt++ {
		seq, err := s.sequence.Next(ctx, schoolID, StudentSequenceScope)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate student identifier")
		}
		student.StudentID = grading.FormatStudentID(s.prefix, s.now(), seq)

		err = s.repo.Create(ctx, student)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
		}
		s.logger.Warn("allocated student identifier already in use", zap.String("school_id", schoolID), zap.String("student_id", student.StudentID), zap.Int("attempt", attempt))
		if attempt == maxAllocationAttempts {
			return nil, appErrors.Clone(appErrors.ErrConflict, "could not allocate a free student identifier")
		}
		student.ID = ""
	}

	s.metrics.RecordIdentifier()
	return student, nil
}
