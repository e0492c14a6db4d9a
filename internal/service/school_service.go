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

type schoolRepository interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
	Create(ctx context.Context, school *models.School) error
	UpdateGradingSystem(ctx context.Context, id string, system models.GradingSystem) error
	UpdatePolicy(ctx context.Context, id string, policy models.SchoolPolicy) error
	StartAcademicYear(ctx context.Context, school *models.School, terms []models.Term) error
}

type termLister interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
}

// CreateSchoolRequest registers a school.
type CreateSchoolRequest struct {
	Name          string                `json:"name" validate:"required"`
	Motto         string                `json:"motto"`
	LogoURL       string                `json:"logo_url" validate:"omitempty,url"`
	AcademicYear  string                `json:"academic_year" validate:"required"`
	YearStartDate time.Time             `json:"academic_year_start" validate:"required"`
	YearEndDate   time.Time             `json:"academic_year_end" validate:"required"`
	GradingSystem *models.GradingSystem `json:"grading_system"`
	Settings      models.SchoolSettings `json:"settings"`
}

// TermInput describes one term of a new academic year.
type TermInput struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	IsActive  bool      `json:"is_active"`
}

// StartAcademicYearRequest replaces the school's academic year and its term list.
type StartAcademicYearRequest struct {
	AcademicYear string      `json:"academic_year" validate:"required"`
	StartDate    time.Time   `json:"start_date" validate:"required"`
	EndDate      time.Time   `json:"end_date" validate:"required"`
	Terms        []TermInput `json:"terms" validate:"required,min=1,dive"`
}

// SchoolService manages school level grading configuration and academic years.
type SchoolService struct {
	repo      schoolRepository
	terms     termLister
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs a SchoolService.
func NewSchoolService(repo schoolRepository, terms termLister, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, terms: terms, metrics: metrics, validator: validate, logger: logger}
}

// Create registers a school. A missing grading system defaults to the percentage scale.
func (s *SchoolService) Create(ctx context.Context, req CreateSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}
	if !req.YearStartDate.Before(req.YearEndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year_start must be before academic_year_end")
	}
	system := models.GradingSystem{Type: models.GradingTypePercentage, PassMarkDefault: grading.DefaultPassMark}
	if req.GradingSystem != nil {
		system = *req.GradingSystem
		if err := validateGradingSystem(system); err != nil {
			return nil, err
		}
	}

	school := &models.School{
		Name:          strings.TrimSpace(req.Name),
		Motto:         req.Motto,
		LogoURL:       req.LogoURL,
		CurrentYear:   req.AcademicYear,
		YearStartDate: req.YearStartDate,
		YearEndDate:   req.YearEndDate,
		GradingSystem: system,
		Settings:      req.Settings,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, school); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "school already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school")
	}
	return school, nil
}

// Get returns the school with the terms of its current academic year.
func (s *SchoolService) Get(ctx context.Context, id string) (*models.School, error) {
	school, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	terms, err := s.terms.List(ctx, models.TermFilter{SchoolID: id, AcademicYear: school.CurrentYear})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load terms")
	}
	school.Terms = terms
	return school, nil
}

// UpdateGradingSystem validates and stores a new grading system. Results keep their derived
// fields until they are next edited.
func (s *SchoolService) UpdateGradingSystem(ctx context.Context, id string, system models.GradingSystem) (*models.School, error) {
	if err := validateGradingSystem(system); err != nil {
		return nil, err
	}
	school, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateGradingSystem(ctx, id, system); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grading system")
	}
	school.GradingSystem = system
	s.logger.Info("grading system updated", zap.String("school_id", id), zap.String("type", string(system.Type)), zap.Int("bands", len(system.Scale)))
	return school, nil
}

// UpdatePolicy stores the school's promotion and ranking overrides.
func (s *SchoolService) UpdatePolicy(ctx context.Context, id string, policy models.SchoolPolicy) (*models.School, error) {
	if policy.PromotionThreshold != nil && (*policy.PromotionThreshold < 0 || *policy.PromotionThreshold > 1) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "promotion_threshold must be between 0 and 1")
	}
	if policy.RankingTieBreak != nil && !policy.RankingTieBreak.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ranking_tie_break must be competition, dense or ordinal")
	}
	school, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePolicy(ctx, id, policy); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update policy")
	}
	school.Policy = policy
	return school, nil
}

// StartAcademicYear switches the school to a new academic year with a fresh term list.
// Earlier terms are kept inactive. If the submitted list marks several terms active only the
// first one stays active.
func (s *SchoolService) StartAcademicYear(ctx context.Context, id string, req StartAcademicYearRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be before end_date")
	}
	school, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	terms := make([]models.Term, 0, len(req.Terms))
	for _, in := range req.Terms {
		if !in.StartDate.Before(in.EndDate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "term "+in.Name+" must start before it ends")
		}
		terms = append(terms, models.Term{Name: in.Name, StartDate: in.StartDate, EndDate: in.EndDate, IsActive: in.IsActive})
	}
	normalized, corrected := grading.NormalizeActiveTerms(terms)
	if corrected {
		reportTermCorrection(s.logger, s.metrics, id, terms)
	}

	school.CurrentYear = req.AcademicYear
	school.YearStartDate = req.StartDate
	school.YearEndDate = req.EndDate
	if err := s.repo.StartAcademicYear(ctx, school, normalized); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "duplicate term in academic year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start academic year")
	}
	school.Terms = normalized
	s.logger.Info("academic year started", zap.String("school_id", id), zap.String("academic_year", req.AcademicYear), zap.Int("terms", len(normalized)))
	return school, nil
}

func (s *SchoolService) load(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return school, nil
}

func validateGradingSystem(system models.GradingSystem) error {
	switch system.Type {
	case models.GradingTypePercentage, models.GradingTypeLetter:
	case models.GradingTypeCustom:
		if len(system.Scale) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "custom grading system requires a scale")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "grading system type must be Percentage, Letter or Custom")
	}
	if system.PassMarkDefault < 0 || system.PassMarkDefault > 100 {
		return appErrors.Clone(appErrors.ErrValidation, "pass_mark_default must be between 0 and 100")
	}
	return grading.ValidateScale(system.Scale)
}
