package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

type cohortRanker interface {
	RankCohort(ctx context.Context, cohort models.Cohort, fn repository.RankFunc) ([]models.Result, error)
}

// CalculatePositionsRequest selects the cohort to rank.
type CalculatePositionsRequest struct {
	ClassName    string `json:"class_name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	Term         string `json:"term" validate:"required"`
	// ExamType defaults to End-of-Term.
	ExamType models.ExamType `json:"exam_type,omitempty"`
}

// RankingSummary reports the outcome of a ranking pass.
type RankingSummary struct {
	Cohort   models.Cohort         `json:"cohort"`
	Policy   models.TieBreakPolicy `json:"policy"`
	Ranked   int                   `json:"ranked"`
	Reopened []string              `json:"reopened"`
	Results  []models.Result       `json:"results"`
}

// RankingService assigns overall and per-subject positions to a cohort.
type RankingService struct {
	repo    cohortRanker
	configs gradingConfigProvider
	cache   resultCache
	metrics *MetricsService
	logger  *zap.Logger
}

// NewRankingService constructs a RankingService.
func NewRankingService(repo cohortRanker, configs gradingConfigProvider, cache resultCache, metrics *MetricsService, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{repo: repo, configs: configs, cache: cache, metrics: metrics, logger: logger}
}

// CalculatePositions ranks every active result of the cohort in one transaction.
//
// A cohort containing a published report card is rejected: its printed positions would no
// longer match. A completed result whose placement changes is reopened as Draft with its
// report card cleared so it has to be regenerated.
func (s *RankingService) CalculatePositions(ctx context.Context, schoolID string, req CalculatePositionsRequest) (*RankingSummary, error) {
	cohort, err := normalizeCohort(models.Cohort{
		SchoolID:     schoolID,
		ClassName:    req.ClassName,
		AcademicYear: req.AcademicYear,
		Term:         req.Term,
		ExamType:     req.ExamType,
	})
	if err != nil {
		return nil, err
	}
	cfg, _, err := s.configs.For(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	policy := cfg.Policy.TieBreak
	var reopened []string

	start := time.Now()
	ranked, err := s.repo.RankCohort(ctx, cohort, func(locked []models.Result) ([]models.Result, error) {
		if len(locked) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active results for class")
		}
		for _, r := range locked {
			if r.Status == models.ResultStatusPublished {
				return nil, appErrors.Clone(appErrors.ErrState, "class has published report cards, unpublish them before recalculating positions")
			}
		}

		out := grading.RankCohort(locked, policy)
		reopened = reopened[:0]
		for i := range out {
			if out[i].Status == models.ResultStatusCompleted && !samePlacement(locked[i], out[i]) {
				out[i].Status = models.ResultStatusDraft
				out[i].ReportCard = models.ReportCard{}
				reopened = append(reopened, out[i].ID)
			}
		}
		return out, nil
	})
	s.metrics.ObserveRanking(time.Since(start), err)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to calculate positions")
	}

	invalidateStats(ctx, s.cache, cohort)
	s.logger.Info("cohort ranked",
		zap.String("school_id", schoolID),
		zap.String("class_name", cohort.ClassName),
		zap.String("academic_year", cohort.AcademicYear),
		zap.String("term", cohort.Term),
		zap.String("policy", string(policy)),
		zap.Int("ranked", len(ranked)),
		zap.Int("reopened", len(reopened)))

	return &RankingSummary{
		Cohort:   cohort,
		Policy:   policy,
		Ranked:   len(ranked),
		Reopened: append([]string{}, reopened...),
		Results:  ranked,
	}, nil
}

func samePlacement(before, after models.Result) bool {
	if before.OverallPerformance.Position != after.OverallPerformance.Position ||
		before.OverallPerformance.TotalStudents != after.OverallPerformance.TotalStudents {
		return false
	}
	if len(before.Subjects) != len(after.Subjects) {
		return false
	}
	for i := range before.Subjects {
		if before.Subjects[i].Position != after.Subjects[i].Position ||
			before.Subjects[i].TotalStudents != after.Subjects[i].TotalStudents {
			return false
		}
	}
	return true
}
