package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
	"github.com/noah-isme/sma-results-api/pkg/export"
	"github.com/noah-isme/sma-results-api/pkg/jobs"
	"github.com/noah-isme/sma-results-api/pkg/storage"
)

const (
	reportCardDir = "report-cards"
	exportDir     = "exports"

	// ReportCardJobType tags report card generation jobs on the queue.
	ReportCardJobType = "report_card"
)

type reportCardStore interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Result, error)
	ListCohort(ctx context.Context, cohort models.Cohort) ([]models.Result, error)
	Update(ctx context.Context, result *models.Result) error
}

type reportCardRenderer interface {
	RenderReportCard(doc export.ReportCardDocument) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (io.ReadCloser, error)
}

type urlSigner interface {
	Generate(owner, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (storage.Ticket, error)
}

type publicationNotifier interface {
	ReportPublished(ctx context.Context, school *models.School, student *models.Student, result *models.Result)
}

// ReportCardConfig configures download links.
type ReportCardConfig struct {
	// DownloadBaseURL prefixes download tokens, e.g. https://host/api/v1/report-cards/download.
	DownloadBaseURL string
}

// DownloadLink is a signed, expiring link to a stored file.
type DownloadLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileDownload is an opened stored file ready to stream.
type FileDownload struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// BatchGeneration reports which results of a class were queued for rendering.
type BatchGeneration struct {
	Cohort  models.Cohort `json:"cohort"`
	Queued  []string      `json:"queued"`
	Skipped []BulkFailure `json:"skipped"`
}

type generationJob struct {
	SchoolID string
	ActorID  string
}

// ReportCardService drives the report card lifecycle of results: rendering, publication and
// archival, plus signed downloads of stored files.
type ReportCardService struct {
	results  reportCardStore
	schools  schoolReader
	students studentReader
	renderer reportCardRenderer
	storage  fileStorage
	signer   urlSigner
	queue    jobDispatcher
	notifier publicationNotifier
	cache    resultCache
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ReportCardConfig
	now      func() time.Time
}

// NewReportCardService constructs a ReportCardService. queue may be nil until SetQueue is
// called; class-wide generation is unavailable without it.
func NewReportCardService(results reportCardStore, schools schoolReader, students studentReader, renderer reportCardRenderer, files fileStorage, signer urlSigner, notifier publicationNotifier, cache resultCache, metrics *MetricsService, logger *zap.Logger, cfg ReportCardConfig) *ReportCardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewPDFExporter()
	}
	if cfg.DownloadBaseURL == "" {
		cfg.DownloadBaseURL = "/api/v1/report-cards/download"
	}
	cfg.DownloadBaseURL = strings.TrimRight(cfg.DownloadBaseURL, "/")
	return &ReportCardService{
		results:  results,
		schools:  schools,
		students: students,
		renderer: renderer,
		storage:  files,
		signer:   signer,
		notifier: notifier,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetQueue wires the generation queue; the queue's handler is usually HandleJob of this
// service.
func (s *ReportCardService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Generate renders the report card of a ranked result, stores it and moves the result to
// Completed. Regenerating a Completed result replaces its file.
func (s *ReportCardService) Generate(ctx context.Context, schoolID, actorID, id string) (*models.Result, error) {
	result, err := s.load(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if err := grading.CanGenerate(*result); err != nil {
		return nil, err
	}

	school, student, err := s.loadParties(ctx, result)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	body, err := s.renderer.RenderReportCard(buildReportCardDocument(school, student, result, now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}
	relPath, err := s.storage.Save(reportCardPath(schoolID, result.ID), body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report card")
	}
	link, err := s.link(result.ID, relPath)
	if err != nil {
		return nil, err
	}

	updated, err := grading.Generate(*result, actorID, link.URL, now)
	if err != nil {
		return nil, err
	}
	updated.ReportCard.FilePath = relPath
	updated.LastUpdatedBy = &actorID
	if err := s.results.Update(ctx, &updated); err != nil {
		return nil, mapUpdateError(err)
	}

	s.metrics.RecordReportCard("generate")
	s.logger.Info("report card generated", zap.String("result_id", updated.ID), zap.String("actor_id", actorID))
	return &updated, nil
}

// GenerateClass queues report card rendering for every result of the cohort that can be
// generated; the others are reported as skipped.
func (s *ReportCardService) GenerateClass(ctx context.Context, schoolID, actorID string, cohort models.Cohort) (*BatchGeneration, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report card queue not configured")
	}
	cohort.SchoolID = schoolID
	cohort, err := normalizeCohort(cohort)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListCohort(ctx, cohort)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class results")
	}
	if len(results) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active results for class")
	}

	out := &BatchGeneration{Cohort: cohort, Queued: []string{}, Skipped: []BulkFailure{}}
	for i, r := range results {
		if err := grading.CanGenerate(r); err != nil {
			appErr := appErrors.FromError(err)
			out.Skipped = append(out.Skipped, BulkFailure{Index: i, StudentID: r.StudentID, Code: appErr.Code, Message: appErr.Message})
			continue
		}
		job := jobs.Job{ID: r.ID, Type: ReportCardJobType, Payload: generationJob{SchoolID: schoolID, ActorID: actorID}}
		if err := s.queue.Enqueue(job); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report card")
		}
		out.Queued = append(out.Queued, r.ID)
	}
	return out, nil
}

// HandleJob renders one queued report card. State errors are final and are not retried.
func (s *ReportCardService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(generationJob)
	if !ok {
		s.logger.Error("dropping report card job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	_, err := s.Generate(ctx, payload.SchoolID, payload.ActorID, job.ID)
	if err == nil {
		return nil
	}
	if errors.Is(err, appErrors.ErrState) || errors.Is(err, appErrors.ErrNotFound) {
		s.logger.Warn("report card job skipped", zap.String("result_id", job.ID), zap.Error(err))
		return nil
	}
	return err
}

// Publish makes a generated report card visible and notifies the guardian.
func (s *ReportCardService) Publish(ctx context.Context, schoolID, actorID, id string) (*models.Result, error) {
	result, err := s.load(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	updated, err := grading.Publish(*result, actorID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	updated.LastUpdatedBy = &actorID
	if err := s.results.Update(ctx, &updated); err != nil {
		return nil, mapUpdateError(err)
	}
	s.metrics.RecordReportCard("publish")

	if s.notifier != nil {
		school, student, err := s.loadParties(ctx, &updated)
		if err != nil {
			s.logger.Warn("skipping publication notice", zap.String("result_id", updated.ID), zap.Error(err))
		} else {
			s.notifier.ReportPublished(ctx, school, student, &updated)
		}
	}
	return &updated, nil
}

// Unpublish withdraws a published report card; the result returns to Completed.
func (s *ReportCardService) Unpublish(ctx context.Context, schoolID, actorID, id string) (*models.Result, error) {
	result, err := s.load(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	updated, err := grading.Unpublish(*result)
	if err != nil {
		return nil, err
	}
	updated.LastUpdatedBy = &actorID
	if err := s.results.Update(ctx, &updated); err != nil {
		return nil, mapUpdateError(err)
	}
	s.metrics.RecordReportCard("unpublish")
	return &updated, nil
}

// Archive retires a result from any state. It leaves the active cohort, so class statistics
// are invalidated.
func (s *ReportCardService) Archive(ctx context.Context, schoolID, actorID, id string) (*models.Result, error) {
	result, err := s.results.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrState, fmt.Sprintf("cannot archive result %s: it does not exist", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	if result.Status == models.ResultStatusArchived {
		return result, nil
	}
	updated := grading.Archive(*result)
	updated.LastUpdatedBy = &actorID
	if err := s.results.Update(ctx, &updated); err != nil {
		return nil, mapUpdateError(err)
	}
	invalidateStats(ctx, s.cache, updated.Cohort())
	s.metrics.RecordReportCard("archive")
	return &updated, nil
}

// DownloadLink issues a fresh signed link to a generated report card. Parents and students
// only see published report cards.
func (s *ReportCardService) DownloadLink(ctx context.Context, schoolID, id string, role models.UserRole) (*DownloadLink, error) {
	result, err := s.load(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if !result.ReportCard.IsGenerated || result.ReportCard.FilePath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report card has not been generated")
	}
	if role.PublishedOnly() && !result.ReportCard.IsPublished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report card has not been published")
	}
	return s.link(result.ID, result.ReportCard.FilePath)
}

// ResolveDownload validates a token and opens the stored file. Report card tokens only work
// while the referenced file is still the result's current report card.
func (s *ReportCardService) ResolveDownload(ctx context.Context, token string) (*FileDownload, error) {
	ticket, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}

	segments := strings.Split(ticket.Path, "/")
	if len(segments) < 3 {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	switch segments[0] {
	case reportCardDir:
		result, err := s.results.FindByID(ctx, segments[1], ticket.Owner)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "report card not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
		}
		if !result.ReportCard.IsGenerated || result.ReportCard.FilePath != ticket.Path {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report card is no longer available")
		}
	case exportDir:
		if segments[1] != ticket.Owner {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}

	body, err := s.storage.Open(ticket.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "file not found")
	}
	return &FileDownload{
		Body:        body,
		Filename:    path.Base(ticket.Path),
		ContentType: contentTypeFor(ticket.Path),
		ExpiresAt:   ticket.ExpiresAt,
	}, nil
}

func (s *ReportCardService) load(ctx context.Context, schoolID, id string) (*models.Result, error) {
	result, err := s.results.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

func (s *ReportCardService) loadParties(ctx context.Context, result *models.Result) (*models.School, *models.Student, error) {
	school, err := s.schools.FindByID(ctx, result.SchoolID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	student, err := s.students.FindByID(ctx, result.SchoolID, result.StudentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return school, student, nil
}

func (s *ReportCardService) link(owner, relPath string) (*DownloadLink, error) {
	token, expiresAt, err := s.signer.Generate(owner, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &DownloadLink{URL: s.cfg.DownloadBaseURL + "/" + token, ExpiresAt: expiresAt}, nil
}

func reportCardPath(schoolID, resultID string) string {
	return path.Join(reportCardDir, schoolID, resultID+".pdf")
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func buildReportCardDocument(school *models.School, student *models.Student, result *models.Result, at time.Time) export.ReportCardDocument {
	doc := export.ReportCardDocument{
		SchoolName:           school.Name,
		SchoolMotto:          school.Motto,
		StudentName:          student.FullName(),
		StudentID:            student.StudentID,
		ClassName:            result.ClassName,
		AcademicYear:         result.AcademicYear,
		Term:                 result.Term,
		ExamType:             string(result.ExamType),
		TotalScore:           result.OverallPerformance.TotalScore,
		AverageScore:         result.OverallPerformance.AverageScore,
		OverallGrade:         result.OverallPerformance.OverallGrade,
		OverallGPA:           result.OverallPerformance.OverallGPA,
		Position:             result.OverallPerformance.Position,
		TotalStudents:        result.OverallPerformance.TotalStudents,
		Promoted:             result.OverallPerformance.IsPromoted,
		NextClass:            result.OverallPerformance.NextClass,
		DaysPresent:          result.Attendance.PresentDays,
		DaysTotal:            result.Attendance.TotalDays,
		AttendancePercentage: result.Attendance.AttendancePercentage,
		Behavior: []export.LabelValue{
			{Label: "Conduct", Value: string(result.Behavior.Conduct)},
			{Label: "Attitude", Value: string(result.Behavior.Attitude)},
			{Label: "Punctuality", Value: string(result.Behavior.Punctuality)},
			{Label: "Cooperation", Value: string(result.Behavior.Cooperation)},
		},
		ClassTeacherComment: result.Comments.ClassTeacher.Comment,
		PrincipalComment:    result.Comments.Principal.Comment,
		ResumptionDate:      result.NextTerm.ResumptionDate,
		GeneratedAt:         at,
	}
	for _, subject := range result.Subjects {
		doc.Subjects = append(doc.Subjects, export.ReportCardSubject{
			Name:          subject.SubjectName,
			Code:          subject.SubjectCode,
			TotalScore:    subject.TotalScore,
			Grade:         subject.Grade,
			Remark:        subject.Remark,
			Position:      subject.Position,
			TotalStudents: subject.TotalStudents,
			Comment:       subject.TeacherComment,
		})
	}
	for _, activity := range result.Activities {
		value := string(activity.Grade)
		if activity.Achievement != "" {
			value = strings.TrimSpace(value + " " + activity.Achievement)
		}
		doc.Activities = append(doc.Activities, export.LabelValue{Label: activity.Name, Value: value})
	}
	return doc
}
