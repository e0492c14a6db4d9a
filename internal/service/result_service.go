package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	"github.com/noah-isme/sma-results-api/pkg/cache"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

type resultStore interface {
	Create(ctx context.Context, result *models.Result) error
	FindByID(ctx context.Context, schoolID, id string) (*models.Result, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.Result, int, error)
	ListCohort(ctx context.Context, cohort models.Cohort) ([]models.Result, error)
	Update(ctx context.Context, result *models.Result) error
}

type studentReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Student, error)
}

type gradingConfigProvider interface {
	For(ctx context.Context, schoolID string) (grading.GradingConfig, *models.School, error)
}

type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// SubjectInput carries the raw inputs of one subject line.
type SubjectInput struct {
	SubjectName    string                 `json:"subject_name" validate:"required"`
	SubjectCode    string                 `json:"subject_code" validate:"required"`
	TeacherID      string                 `json:"teacher_id"`
	Scores         models.ComponentScores `json:"scores"`
	Weightings     models.Weightings      `json:"weightings"`
	PassMark       float64                `json:"pass_mark" validate:"gte=0,lte=100"`
	TeacherComment string                 `json:"teacher_comment" validate:"max=200"`
}

func (in SubjectInput) record() models.SubjectRecord {
	return models.SubjectRecord{
		SubjectName:    strings.TrimSpace(in.SubjectName),
		SubjectCode:    in.SubjectCode,
		TeacherID:      in.TeacherID,
		Scores:         in.Scores,
		Weightings:     in.Weightings,
		PassMark:       in.PassMark,
		TeacherComment: in.TeacherComment,
	}
}

// CreateResultRequest is the payload for recording a student's term result.
type CreateResultRequest struct {
	StudentID    string            `json:"student_id" validate:"required"`
	AcademicYear string            `json:"academic_year" validate:"required"`
	Term         string            `json:"term" validate:"required"`
	ClassName    string            `json:"class_name" validate:"required"`
	ExamType     models.ExamType   `json:"exam_type" validate:"required"`
	Subjects     []SubjectInput    `json:"subjects" validate:"dive"`
	Attendance   models.Attendance `json:"attendance"`
	Behavior     *models.Behavior  `json:"behavior"`
	Comments     models.Comments   `json:"comments"`
	Activities   models.Activities `json:"activities"`
	NextTerm     models.NextTerm   `json:"next_term"`
}

// CommentsRequest updates the class teacher and/or principal remark. The caller becomes the
// author of whichever remark is set.
type CommentsRequest struct {
	ClassTeacher *string `json:"class_teacher" validate:"omitempty,max=500"`
	Principal    *string `json:"principal" validate:"omitempty,max=500"`
}

// BulkFailure reports one rejected item of a bulk request.
type BulkFailure struct {
	Index     int    `json:"index"`
	StudentID string `json:"student_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// BulkCreateResult lists created results and rejected items.
type BulkCreateResult struct {
	Created []models.Result `json:"created"`
	Failed  []BulkFailure   `json:"failed"`
}

// ResultServiceConfig tunes result caching.
type ResultServiceConfig struct {
	StatsTTL time.Duration
}

// ResultService records results and keeps their derived fields consistent with the school's
// grading configuration.
type ResultService struct {
	repo      resultStore
	students  studentReader
	configs   gradingConfigProvider
	cache     resultCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ResultServiceConfig
}

// NewResultService constructs a ResultService.
func NewResultService(repo resultStore, students studentReader, configs gradingConfigProvider, cache resultCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ResultServiceConfig) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = 10 * time.Minute
	}
	return &ResultService{
		repo:      repo,
		students:  students,
		configs:   configs,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create computes and stores a new Draft result.
func (s *ResultService) Create(ctx context.Context, schoolID, actorID string, req CreateResultRequest) (*models.Result, error) {
	cfg, _, err := s.configs.For(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	result, err := s.create(ctx, schoolID, actorID, req, cfg)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, result.Cohort())
	return result, nil
}

// BulkCreate creates each item independently; failures are reported per item and do not
// stop the batch.
func (s *ResultService) BulkCreate(ctx context.Context, schoolID, actorID string, reqs []CreateResultRequest) (*BulkCreateResult, error) {
	if len(reqs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "results are required")
	}
	cfg, _, err := s.configs.For(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	out := &BulkCreateResult{Created: make([]models.Result, 0, len(reqs)), Failed: []BulkFailure{}}
	cohorts := make(map[models.Cohort]struct{})
	for i, req := range reqs {
		result, err := s.create(ctx, schoolID, actorID, req, cfg)
		if err != nil {
			appErr := appErrors.FromError(err)
			out.Failed = append(out.Failed, BulkFailure{Index: i, StudentID: req.StudentID, Code: appErr.Code, Message: appErr.Message})
			continue
		}
		out.Created = append(out.Created, *result)
		cohorts[result.Cohort()] = struct{}{}
	}
	for cohort := range cohorts {
		s.invalidateStats(ctx, cohort)
	}
	if len(out.Failed) > 0 {
		s.logger.Warn("bulk result create had failures",
			zap.String("school_id", schoolID),
			zap.Int("created", len(out.Created)),
			zap.Int("failed", len(out.Failed)))
	}
	return out, nil
}

func (s *ResultService) create(ctx context.Context, schoolID, actorID string, req CreateResultRequest, cfg grading.GradingConfig) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	behavior, err := normalizeBehavior(req.Behavior)
	if err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, schoolID, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	subjects := make(models.SubjectRecords, 0, len(req.Subjects))
	for _, in := range req.Subjects {
		subjects = append(subjects, in.record())
	}
	raw := models.Result{
		StudentID:    student.StudentID,
		SchoolID:     schoolID,
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Term:         strings.TrimSpace(req.Term),
		ClassName:    strings.TrimSpace(req.ClassName),
		ExamType:     req.ExamType,
		Subjects:     subjects,
		Attendance:   req.Attendance,
		Behavior:     behavior,
		Comments:     stampComments(req.Comments, actorID),
		Activities:   req.Activities,
		NextTerm:     req.NextTerm,
		Status:       models.ResultStatusDraft,
		CreatedBy:    actorID,
	}

	result, err := grading.ComputeDerivedFields(raw, cfg)
	s.metrics.RecordCompute(err)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &result); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a %s result for %s already exists for %s %s", result.ExamType, result.StudentID, result.AcademicYear, result.Term))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create result")
	}
	return &result, nil
}

// Get returns a result of the school.
func (s *ResultService) Get(ctx context.Context, schoolID, id string) (*models.Result, error) {
	result, err := s.repo.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

// List returns paginated results.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]models.Result, *models.Pagination, error) {
	if filter.ExamType != "" && !filter.ExamType.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown exam_type")
	}
	results, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	return results, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// UpdateSubject replaces the raw inputs of the subject at index.
func (s *ResultService) UpdateSubject(ctx context.Context, schoolID, actorID, id string, version, index int, in SubjectInput) (*models.Result, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	return s.edit(ctx, schoolID, actorID, id, version, func(r *models.Result) error {
		if index < 0 || index >= len(r.Subjects) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %d not found", index))
		}
		record := in.record()
		record.Position = r.Subjects[index].Position
		record.TotalStudents = r.Subjects[index].TotalStudents
		r.Subjects[index] = record
		return nil
	})
}

// UpdateAttendance replaces the attendance counts.
func (s *ResultService) UpdateAttendance(ctx context.Context, schoolID, actorID, id string, version int, attendance models.Attendance) (*models.Result, error) {
	return s.edit(ctx, schoolID, actorID, id, version, func(r *models.Result) error {
		r.Attendance = attendance
		return nil
	})
}

// UpdateBehavior replaces the behavioural ratings; empty ratings default to Good.
func (s *ResultService) UpdateBehavior(ctx context.Context, schoolID, actorID, id string, version int, behavior models.Behavior) (*models.Result, error) {
	normalized, err := normalizeBehavior(&behavior)
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, schoolID, actorID, id, version, func(r *models.Result) error {
		r.Behavior = normalized
		return nil
	})
}

// UpdateComments sets the class teacher and/or principal remark.
func (s *ResultService) UpdateComments(ctx context.Context, schoolID, actorID, id string, version int, req CommentsRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comments payload")
	}
	if req.ClassTeacher == nil && req.Principal == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no comment provided")
	}
	return s.edit(ctx, schoolID, actorID, id, version, func(r *models.Result) error {
		if req.ClassTeacher != nil {
			r.Comments.ClassTeacher = models.Comment{Comment: strings.TrimSpace(*req.ClassTeacher), AuthorID: actorID}
		}
		if req.Principal != nil {
			r.Comments.Principal = models.Comment{Comment: strings.TrimSpace(*req.Principal), AuthorID: actorID}
		}
		return nil
	})
}

// UpdateActivities replaces the extra-curricular activities.
func (s *ResultService) UpdateActivities(ctx context.Context, schoolID, actorID, id string, version int, activities models.Activities) (*models.Result, error) {
	for i, activity := range activities {
		if err := s.validator.Struct(activity); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid activity %d", i))
		}
		if activity.Grade != "" && !activity.Grade.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("activity %q has unknown grade %q", activity.Name, activity.Grade))
		}
	}
	return s.edit(ctx, schoolID, actorID, id, version, func(r *models.Result) error {
		r.Activities = activities
		return nil
	})
}

// UpdateNextTerm sets the next-term information. A new class is recorded as the next class
// of a promoted student.
func (s *ResultService) UpdateNextTerm(ctx context.Context, schoolID, actorID, id string, version int, next models.NextTerm) (*models.Result, error) {
	if next.FeesForNextTerm < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fees_for_next_term must not be negative")
	}
	return s.edit(ctx, schoolID, actorID, id, version, func(r *models.Result) error {
		r.NextTerm = next
		r.OverallPerformance.NextClass = ""
		if r.OverallPerformance.IsPromoted {
			r.OverallPerformance.NextClass = strings.TrimSpace(next.NewClass)
		}
		return nil
	})
}

// edit loads a result, applies mutate to its raw inputs, recomputes every derived field and
// writes it back under the optimistic version check. A non-zero version must match the
// stored one.
func (s *ResultService) edit(ctx context.Context, schoolID, actorID, id string, version int, mutate func(*models.Result) error) (*models.Result, error) {
	current, err := s.Get(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if version > 0 && current.Version != version {
		return nil, appErrors.Clone(appErrors.ErrConflict, "result has been modified, reload and retry")
	}

	editable, err := grading.PrepareEdit(*current)
	if err != nil {
		return nil, err
	}
	if err := mutate(&editable); err != nil {
		return nil, err
	}

	cfg, _, err := s.configs.For(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	updated, err := grading.ComputeDerivedFields(editable, cfg)
	s.metrics.RecordCompute(err)
	if err != nil {
		return nil, err
	}
	updated.LastUpdatedBy = &actorID

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, mapUpdateError(err)
	}
	s.invalidateStats(ctx, updated.Cohort())
	return &updated, nil
}

// Statistics aggregates the active results of a cohort. Results are cached until the next
// write to the cohort.
func (s *ResultService) Statistics(ctx context.Context, cohort models.Cohort) (*models.ClassStatistics, error) {
	cohort, err := normalizeCohort(cohort)
	if err != nil {
		return nil, err
	}
	key := statsKey(cohort)
	if s.cache != nil {
		var cached models.ClassStatistics
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	results, err := s.repo.ListCohort(ctx, cohort)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class results")
	}
	stats := grading.ClassStatistics(cohort, results, time.Now().UTC())
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, stats, s.cfg.StatsTTL)
	}
	return &stats, nil
}

func (s *ResultService) invalidateStats(ctx context.Context, cohort models.Cohort) {
	invalidateStats(ctx, s.cache, cohort)
}

func invalidateStats(ctx context.Context, c resultCache, cohort models.Cohort) {
	if c == nil {
		return
	}
	_ = c.Invalidate(ctx, statsKey(cohort))
}

func statsKey(cohort models.Cohort) string {
	return cache.Key("stats", cohort.SchoolID, cohort.AcademicYear, cohort.Term, string(cohort.ExamType), cohort.ClassName)
}

// normalizeCohort checks the cohort key and assumes End-of-Term when no exam type is given.
func normalizeCohort(cohort models.Cohort) (models.Cohort, error) {
	if cohort.ClassName == "" || cohort.AcademicYear == "" || cohort.Term == "" {
		return cohort, appErrors.Clone(appErrors.ErrValidation, "class_name, academic_year and term are required")
	}
	cohort = cohort.WithDefaultExam()
	if !cohort.ExamType.Valid() {
		return cohort, appErrors.Clone(appErrors.ErrValidation, "exam_type is not supported")
	}
	return cohort, nil
}

func mapUpdateError(err error) error {
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return appErrors.Clone(appErrors.ErrConflict, "result has been modified, reload and retry")
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, "an active result already exists for this student, exam and term")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update result")
	}
}

func normalizeBehavior(in *models.Behavior) (models.Behavior, error) {
	out := models.DefaultBehavior()
	if in == nil {
		return out, nil
	}
	fields := []struct {
		name  string
		value models.Rating
		dest  *models.Rating
	}{
		{"conduct", in.Conduct, &out.Conduct},
		{"attitude", in.Attitude, &out.Attitude},
		{"punctuality", in.Punctuality, &out.Punctuality},
		{"cooperation", in.Cooperation, &out.Cooperation},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if !f.value.Valid() {
			return models.Behavior{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown %s rating %q", f.name, f.value))
		}
		*f.dest = f.value
	}
	return out, nil
}

func stampComments(c models.Comments, actorID string) models.Comments {
	if c.ClassTeacher.Comment != "" && c.ClassTeacher.AuthorID == "" {
		c.ClassTeacher.AuthorID = actorID
	}
	if c.Principal.Comment != "" && c.Principal.AuthorID == "" {
		c.Principal.AuthorID = actorID
	}
	return c
}
