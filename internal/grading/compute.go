package grading

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

// DefaultPassMark applies to subjects submitted without a pass mark.
const DefaultPassMark = 50.0

// GradingConfig is everything besides raw inputs that derived fields depend on.
type GradingConfig struct {
	Scale           []models.GradeBand
	Policy          Policy
	DefaultPassMark float64
}

// NewGradingConfig layers a school's grading system and policy over the service-wide policy.
// A nil school yields the base configuration.
func NewGradingConfig(school *models.School, base Policy, defaultPassMark float64) GradingConfig {
	cfg := GradingConfig{Policy: base, DefaultPassMark: defaultPassMark}
	if school == nil {
		return cfg
	}
	if school.GradingSystem.Type == models.GradingTypeCustom {
		cfg.Scale = school.GradingSystem.Scale
	}
	if school.GradingSystem.PassMarkDefault > 0 {
		cfg.DefaultPassMark = school.GradingSystem.PassMarkDefault
	}
	cfg.Policy = base.WithOverrides(school.Policy)
	return cfg
}

func (c GradingConfig) passMark() float64 {
	if c.DefaultPassMark > 0 {
		return c.DefaultPassMark
	}
	return DefaultPassMark
}

func validationError(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(format, args...))
}

// ValidateResult checks identifiers and raw inputs. Derived fields are ignored.
func ValidateResult(r models.Result) error {
	required := []struct {
		name  string
		value string
	}{
		{"student_id", r.StudentID},
		{"school_id", r.SchoolID},
		{"academic_year", r.AcademicYear},
		{"term", r.Term},
		{"class_name", r.ClassName},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return validationError("%s is required", field.name)
		}
	}
	if !r.ExamType.Valid() {
		return validationError("unknown exam type %q", r.ExamType)
	}

	codes := make(map[string]struct{}, len(r.Subjects))
	for i, subject := range r.Subjects {
		if strings.TrimSpace(subject.SubjectName) == "" || strings.TrimSpace(subject.SubjectCode) == "" {
			return validationError("subject %d: name and code are required", i)
		}
		code := subjectKey(subject.SubjectCode)
		if _, dup := codes[code]; dup {
			return validationError("subject code %s appears more than once", code)
		}
		codes[code] = struct{}{}
		if subject.PassMark < 0 || subject.PassMark > 100 {
			return validationError("subject %s: pass mark must be between 0 and 100", code)
		}
		if utf8.RuneCountInString(subject.TeacherComment) > 200 {
			return validationError("subject %s: teacher comment exceeds 200 characters", code)
		}
		if err := ValidateComponents(subject.Scores, subject.Weightings); err != nil {
			appErr := appErrors.FromError(err)
			return appErrors.Wrap(appErr.Err, appErr.Code, appErr.Status, fmt.Sprintf("subject %s: %s", code, appErr.Message))
		}
	}

	if err := validate.Struct(r.Attendance); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "attendance is invalid")
	}
	for _, activity := range r.Activities {
		if err := validate.Struct(activity); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "activity is invalid")
		}
	}
	return nil
}

// withDefaults fills unset pass marks and all-zero weighting sets. A pass mark of 0 and a
// weighting set of all zeros both read as "not submitted".
func withDefaults(subjects models.SubjectRecords, cfg GradingConfig) models.SubjectRecords {
	out := make(models.SubjectRecords, len(subjects))
	copy(out, subjects)
	for i := range out {
		if out[i].PassMark == 0 {
			out[i].PassMark = cfg.passMark()
		}
		if WeightSum(out[i].Weightings).IsZero() {
			out[i].Weightings = models.DefaultWeightings()
		}
	}
	return out
}

// ComputeDerivedFields recomputes every derived field of r from its raw inputs and cfg.
// Rank fields are carried over unchanged since they belong to the ranking pass. NextClass is
// kept only while the recomputed result is still promoted.
// On error nothing is returned, so callers never persist a partial recompute.
func ComputeDerivedFields(r models.Result, cfg GradingConfig) (models.Result, error) {
	r.Subjects = withDefaults(r.Subjects, cfg)
	if err := ValidateResult(r); err != nil {
		return models.Result{}, err
	}
	if err := ValidateScale(cfg.Scale); err != nil {
		return models.Result{}, err
	}
	classifier := NewClassifier(cfg.Scale)

	for i := range r.Subjects {
		subject := &r.Subjects[i]
		subject.SubjectCode = subjectKey(subject.SubjectCode)
		subject.TotalScore = SubjectTotal(subject.Scores, subject.Weightings)
		info, err := classifier.Classify(subject.TotalScore)
		if err != nil {
			return models.Result{}, err
		}
		subject.Grade = info.Grade
		subject.GradePoint = info.Point
		subject.Remark = info.Remark
		subject.IsPassed = subject.TotalScore >= subject.PassMark
	}

	summary, err := Summarize(r.Subjects, classifier, cfg.Policy)
	if err != nil {
		return models.Result{}, err
	}
	summary.Position = r.OverallPerformance.Position
	summary.TotalStudents = r.OverallPerformance.TotalStudents
	if summary.IsPromoted {
		summary.NextClass = r.OverallPerformance.NextClass
	}
	r.OverallPerformance = summary

	r.Attendance.AttendancePercentage = AttendancePercentage(r.Attendance.TotalDays, r.Attendance.PresentDays)
	if r.Status == "" {
		r.Status = models.ResultStatusDraft
	}
	return r, nil
}
