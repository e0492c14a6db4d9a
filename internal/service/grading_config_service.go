package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

type schoolReader interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

// GradingConfigService resolves the effective grading configuration of a school: its scale
// and pass mark on top of the service-wide policy.
type GradingConfigService struct {
	schools         schoolReader
	base            grading.Policy
	defaultPassMark float64
}

// NewGradingConfigService constructs the resolver.
func NewGradingConfigService(schools schoolReader, base grading.Policy, defaultPassMark float64) *GradingConfigService {
	if !base.TieBreak.Valid() {
		base.TieBreak = models.TieBreakCompetition
	}
	return &GradingConfigService{schools: schools, base: base, defaultPassMark: defaultPassMark}
}

// For loads the school and returns it together with its grading configuration.
func (s *GradingConfigService) For(ctx context.Context, schoolID string) (grading.GradingConfig, *models.School, error) {
	school, err := s.schools.FindByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.GradingConfig{}, nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return grading.GradingConfig{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return grading.NewGradingConfig(school, s.base, s.defaultPassMark), school, nil
}
