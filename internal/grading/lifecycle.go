package grading

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func stateError(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrState, fmt.Sprintf(format, args...))
}

// CanGenerate reports whether a report card may be rendered for the result.
func CanGenerate(r models.Result) error {
	switch r.Status {
	case models.ResultStatusPublished:
		return stateError("result %s is published; unpublish before regenerating", r.ID)
	case models.ResultStatusArchived:
		return stateError("result %s is archived", r.ID)
	case models.ResultStatusDraft, models.ResultStatusCompleted:
	default:
		return stateError("result %s has unknown status %q", r.ID, r.Status)
	}
	if len(r.Subjects) == 0 {
		return stateError("result %s has no subjects", r.ID)
	}
	if r.OverallPerformance.Position == 0 {
		return stateError("positions for result %s have not been calculated", r.ID)
	}
	return nil
}

// Generate records a rendered report card and moves the result to Completed.
func Generate(r models.Result, actor, pdfURL string, at time.Time) (models.Result, error) {
	if err := CanGenerate(r); err != nil {
		return models.Result{}, err
	}
	r.ReportCard.IsGenerated = true
	r.ReportCard.GeneratedAt = &at
	r.ReportCard.GeneratedBy = actor
	r.ReportCard.PDFURL = pdfURL
	r.Status = models.ResultStatusCompleted
	return r, nil
}

// Publish makes a generated report card visible.
func Publish(r models.Result, actor string, at time.Time) (models.Result, error) {
	if r.Status == models.ResultStatusArchived {
		return models.Result{}, stateError("result %s is archived", r.ID)
	}
	if !r.ReportCard.IsGenerated {
		return models.Result{}, stateError("report card for result %s has not been generated", r.ID)
	}
	r.ReportCard.IsPublished = true
	r.ReportCard.PublishedAt = &at
	r.ReportCard.PublishedBy = actor
	r.Status = models.ResultStatusPublished
	return r, nil
}

// Unpublish withdraws a published report card so it can be regenerated.
func Unpublish(r models.Result) (models.Result, error) {
	if r.Status != models.ResultStatusPublished {
		return models.Result{}, stateError("result %s is not published", r.ID)
	}
	r.ReportCard.IsPublished = false
	r.ReportCard.PublishedAt = nil
	r.ReportCard.PublishedBy = ""
	r.Status = models.ResultStatusCompleted
	return r, nil
}

// Archive hides the result from default listings. Data is kept.
func Archive(r models.Result) models.Result {
	r.Status = models.ResultStatusArchived
	r.IsActive = false
	return r
}

// PrepareEdit returns the result ready to accept new raw inputs. Any edit invalidates the
// rank; editing a Completed result also discards its report card and falls back to Draft.
func PrepareEdit(r models.Result) (models.Result, error) {
	switch r.Status {
	case models.ResultStatusPublished:
		return models.Result{}, stateError("result %s is published; unpublish before editing", r.ID)
	case models.ResultStatusArchived:
		return models.Result{}, stateError("result %s is archived", r.ID)
	case models.ResultStatusCompleted:
		r.Status = models.ResultStatusDraft
		r.ReportCard = models.ReportCard{}
	}
	r.OverallPerformance.Position = 0
	r.OverallPerformance.TotalStudents = 0
	subjects := make(models.SubjectRecords, len(r.Subjects))
	copy(subjects, r.Subjects)
	for i := range subjects {
		subjects[i].Position = 0
		subjects[i].TotalStudents = 0
	}
	r.Subjects = subjects
	return r, nil
}
