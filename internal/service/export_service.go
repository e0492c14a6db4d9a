package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
	"github.com/noah-isme/sma-results-api/pkg/export"
)

// ExportFormat names a class sheet encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type cohortLister interface {
	ListCohort(ctx context.Context, cohort models.Cohort) ([]models.Result, error)
}

type exportStorage interface {
	fileStorage
	CleanupOlderThan(dir string, ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes class exports.
type ExportConfig struct {
	DownloadBaseURL string
	Retention       time.Duration
	CleanupInterval time.Duration
}

// ExportResult describes a stored class sheet.
type ExportResult struct {
	Cohort    models.Cohort `json:"cohort"`
	Format    ExportFormat  `json:"format"`
	Rows      int           `json:"rows"`
	URL       string        `json:"url"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// ExportService renders class result sheets and keeps the export directory bounded.
type ExportService struct {
	results  cohortLister
	students studentReader
	storage  exportStorage
	signer   urlSigner
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the package
// exporters.
func NewExportService(results cohortLister, students studentReader, files exportStorage, signer urlSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.DownloadBaseURL == "" {
		cfg.DownloadBaseURL = "/api/v1/report-cards/download"
	}
	cfg.DownloadBaseURL = strings.TrimRight(cfg.DownloadBaseURL, "/")
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		results:  results,
		students: students,
		storage:  files,
		signer:   signer,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ExportClass renders the active results of a cohort ordered by position and returns a signed
// link to the stored file.
func (s *ExportService) ExportClass(ctx context.Context, cohort models.Cohort, format ExportFormat) (*ExportResult, error) {
	cohort, err := normalizeCohort(cohort)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	results, err := s.results.ListCohort(ctx, cohort)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class results")
	}
	if len(results) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active results for class")
	}
	dataset, err := s.buildDataset(ctx, cohort.SchoolID, results)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case ExportFormatPDF:
		title := fmt.Sprintf("%s %s %s %s results", cohort.ClassName, cohort.AcademicYear, cohort.Term, cohort.ExamType)
		payload, err = s.pdf.Render(dataset, title)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render class export")
	}

	relPath, err := s.storage.Save(s.buildFilename(cohort, format), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store class export")
	}
	token, expiresAt, err := s.signer.Generate(cohort.SchoolID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Info("class export stored",
		zap.String("school_id", cohort.SchoolID),
		zap.String("class_name", cohort.ClassName),
		zap.String("path", relPath),
		zap.Int("rows", len(dataset.Rows)))
	return &ExportResult{
		Cohort:    cohort,
		Format:    format,
		Rows:      len(dataset.Rows),
		URL:       s.cfg.DownloadBaseURL + "/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// Cleanup removes exports older than the retention window. Report cards are never touched.
func (s *ExportService) Cleanup() ([]string, error) {
	removed, err := s.storage.CleanupOlderThan(exportDir, s.cfg.Retention)
	if err != nil {
		return removed, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Cleanup(); err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
				}
			}
		}
	}()
}

func (s *ExportService) buildDataset(ctx context.Context, schoolID string, results []models.Result) (export.Dataset, error) {
	ordered := append([]models.Result(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i].OverallPerformance.Position, ordered[j].OverallPerformance.Position
		if (pi == 0) != (pj == 0) {
			return pj == 0
		}
		if pi != pj {
			return pi < pj
		}
		return ordered[i].StudentID < ordered[j].StudentID
	})

	var subjects []string
	seen := map[string]bool{}
	for _, r := range ordered {
		for _, subject := range r.Subjects {
			if !seen[subject.SubjectCode] {
				seen[subject.SubjectCode] = true
				subjects = append(subjects, subject.SubjectCode)
			}
		}
	}

	headers := append([]string{"Position", "Student ID", "Student Name"}, subjects...)
	headers = append(headers, "Total", "Average", "Grade", "GPA", "Attendance (%)", "Promoted", "Status")

	rows := make([]map[string]string, 0, len(ordered))
	for _, r := range ordered {
		name, err := s.studentName(ctx, schoolID, r.StudentID)
		if err != nil {
			return export.Dataset{}, err
		}
		overall := r.OverallPerformance
		row := map[string]string{
			"Position":       positionLabel(overall.Position, overall.TotalStudents),
			"Student ID":     r.StudentID,
			"Student Name":   name,
			"Total":          fmt.Sprintf("%.2f", overall.TotalScore),
			"Average":        fmt.Sprintf("%.2f", overall.AverageScore),
			"Grade":          overall.OverallGrade,
			"GPA":            fmt.Sprintf("%.2f", overall.OverallGPA),
			"Attendance (%)": fmt.Sprintf("%.2f", r.Attendance.AttendancePercentage),
			"Promoted":       yesNo(overall.IsPromoted),
			"Status":         string(r.Status),
		}
		for _, subject := range r.Subjects {
			row[subject.SubjectCode] = fmt.Sprintf("%.2f (%s)", subject.TotalScore, subject.Grade)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ExportService) studentName(ctx context.Context, schoolID, studentID string) (string, error) {
	if s.students == nil {
		return "", nil
	}
	student, err := s.students.FindByID(ctx, schoolID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student.FullName(), nil
}

func (s *ExportService) buildFilename(cohort models.Cohort, format ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s_%s_%s_%s.%s",
		sanitizeFilename(cohort.ClassName),
		sanitizeFilename(cohort.AcademicYear),
		sanitizeFilename(cohort.Term),
		sanitizeFilename(string(cohort.ExamType)),
		timestamp,
		format)
	return path.Join(exportDir, cohort.SchoolID, name)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 60 {
		return result[:60]
	}
	return result
}

func positionLabel(position, total int) string {
	if position <= 0 {
		return ""
	}
	if total <= 0 {
		return fmt.Sprintf("%d", position)
	}
	return fmt.Sprintf("%d/%d", position, total)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
