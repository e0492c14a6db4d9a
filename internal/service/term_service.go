package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

type termRepository interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
	FindActive(ctx context.Context, schoolID string) (*models.Term, error)
	Create(ctx context.Context, term *models.Term) error
	SetActive(ctx context.Context, schoolID, id string) error
}

// CreateTermRequest describes payload for creating academic terms.
type CreateTermRequest struct {
	Name         string    `json:"name" validate:"required"`
	AcademicYear string    `json:"academic_year" validate:"required"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Activate     bool      `json:"activate"`
}

// TermService orchestrates term workflows. The only way to change which term is active is
// Activate, which keeps at most one active term per school.
type TermService struct {
	repo      termRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(repo termRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, metrics: metrics, validator: validate, logger: logger}
}

// List returns the school's terms. When storage holds more than one active term the listing
// is normalised (first active wins) and the inconsistency is reported.
func (s *TermService) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	terms, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	normalized, corrected := grading.NormalizeActiveTerms(terms)
	if corrected {
		s.reportCorrection(filter.SchoolID, terms)
	}
	return normalized, nil
}

// GetActive returns currently active term.
func (s *TermService) GetActive(ctx context.Context, schoolID string) (*models.Term, error) {
	term, err := s.repo.FindActive(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "active term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}
	return term, nil
}

// Create adds a new term, optionally activating it.
func (s *TermService) Create(ctx context.Context, schoolID string, req CreateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be before end_date")
	}

	term := &models.Term{
		SchoolID:     schoolID,
		AcademicYear: req.AcademicYear,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if err := s.repo.Create(ctx, term); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "term already exists for academic year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create term")
	}

	if req.Activate {
		return s.Activate(ctx, schoolID, term.ID)
	}
	return term, nil
}

// Activate makes termID the school's only active term.
func (s *TermService) Activate(ctx context.Context, schoolID, termID string) (*models.Term, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term id is required")
	}
	terms, err := s.repo.List(ctx, models.TermFilter{SchoolID: schoolID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load terms")
	}
	planned, err := grading.ActivateTerm(terms, termID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, schoolID, termID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "another term was activated concurrently, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate term")
	}

	s.logger.Info("term activated", zap.String("school_id", schoolID), zap.String("term_id", termID))
	return grading.ActiveTerm(planned), nil
}

func (s *TermService) reportCorrection(schoolID string, terms []models.Term) {
	reportTermCorrection(s.logger, s.metrics, schoolID, terms)
}

func reportTermCorrection(logger *zap.Logger, metrics *MetricsService, schoolID string, terms []models.Term) {
	active := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.IsActive {
			active = append(active, t.ID)
		}
	}
	logger.Warn("multiple active terms corrected",
		zap.String("school_id", schoolID),
		zap.Strings("active_term_ids", active),
		zap.Error(appErrors.ErrConsistency))
	metrics.RecordTermCorrection()
}
