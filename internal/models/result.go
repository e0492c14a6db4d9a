package models

import (
	"database/sql/driver"
	"time"
)

// ResultStatus tracks the report card lifecycle of a result.
type ResultStatus string

const (
	ResultStatusDraft     ResultStatus = "Draft"
	ResultStatusCompleted ResultStatus = "Completed"
	ResultStatusPublished ResultStatus = "Published"
	ResultStatusArchived  ResultStatus = "Archived"
)

// ExamType enumerates the assessment sittings a result may describe.
type ExamType string

const (
	ExamTypeMidTerm   ExamType = "Mid-Term"
	ExamTypeEndOfTerm ExamType = "End-of-Term"
	ExamTypeMock      ExamType = "Mock"
	ExamTypeFinal     ExamType = "Final"
	ExamTypeTest      ExamType = "Test"
)

// Valid reports whether the exam type is known.
func (e ExamType) Valid() bool {
	switch e {
	case ExamTypeMidTerm, ExamTypeEndOfTerm, ExamTypeMock, ExamTypeFinal, ExamTypeTest:
		return true
	}
	return false
}

// Rating is a behavioural or activity rating.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingVeryGood  Rating = "Very Good"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// Valid reports whether the rating is one of the known values.
func (r Rating) Valid() bool {
	switch r {
	case RatingExcellent, RatingVeryGood, RatingGood, RatingFair, RatingPoor:
		return true
	}
	return false
}

// ComponentScores holds the raw continuous assessment scores of a subject, each in [0,100].
type ComponentScores struct {
	ClassWork   float64 `json:"class_work" validate:"gte=0,lte=100"`
	Homework    float64 `json:"homework" validate:"gte=0,lte=100"`
	ClassTest   float64 `json:"class_test" validate:"gte=0,lte=100"`
	Assignment  float64 `json:"assignment" validate:"gte=0,lte=100"`
	Project     float64 `json:"project" validate:"gte=0,lte=100"`
	MidTermExam float64 `json:"mid_term_exam" validate:"gte=0,lte=100"`
	FinalExam   float64 `json:"final_exam" validate:"gte=0,lte=100"`
}

// Weightings holds the percentage contribution of each component; the set sums to 100.
type Weightings struct {
	ClassWork   float64 `json:"class_work" validate:"gte=0"`
	Homework    float64 `json:"homework" validate:"gte=0"`
	ClassTest   float64 `json:"class_test" validate:"gte=0"`
	Assignment  float64 `json:"assignment" validate:"gte=0"`
	Project     float64 `json:"project" validate:"gte=0"`
	MidTermExam float64 `json:"mid_term_exam" validate:"gte=0"`
	FinalExam   float64 `json:"final_exam" validate:"gte=0"`
}

// DefaultWeightings returns the standard continuous assessment split.
func DefaultWeightings() Weightings {
	return Weightings{
		ClassWork:   10,
		Homework:    10,
		ClassTest:   20,
		Assignment:  10,
		Project:     10,
		MidTermExam: 20,
		FinalExam:   20,
	}
}

// SubjectRecord is one subject line of a result. Fields after PassMark are derived.
type SubjectRecord struct {
	SubjectName    string          `json:"subject_name"`
	SubjectCode    string          `json:"subject_code"`
	TeacherID      string          `json:"teacher_id"`
	Scores         ComponentScores `json:"scores"`
	Weightings     Weightings      `json:"weightings"`
	PassMark       float64         `json:"pass_mark"`
	TeacherComment string          `json:"teacher_comment,omitempty"`

	TotalScore    float64 `json:"total_score"`
	Grade         string  `json:"grade"`
	GradePoint    float64 `json:"grade_point"`
	Remark        string  `json:"remark"`
	IsPassed      bool    `json:"is_passed"`
	Position      int     `json:"position,omitempty"`
	TotalStudents int     `json:"total_students,omitempty"`
}

// SubjectRecords is persisted as a JSONB array.
type SubjectRecords []SubjectRecord

// Value marshals subjects for persistence.
func (s SubjectRecords) Value() (driver.Value, error) {
	if s == nil {
		s = SubjectRecords{}
	}
	return jsonValue(s, "subjects")
}

// Scan unmarshals subjects from JSONB.
func (s *SubjectRecords) Scan(value interface{}) error {
	return scanJSON(value, s, "subjects")
}

// OverallPerformance summarises all subjects of a result.
type OverallPerformance struct {
	TotalScore     float64 `json:"total_score"`
	AverageScore   float64 `json:"average_score"`
	OverallGrade   string  `json:"overall_grade"`
	OverallGPA     float64 `json:"overall_gpa"`
	Position       int     `json:"position,omitempty"`
	TotalStudents  int     `json:"total_students,omitempty"`
	SubjectsPassed int     `json:"subjects_passed"`
	SubjectsFailed int     `json:"subjects_failed"`
	IsPromoted     bool    `json:"is_promoted"`
	NextClass      string  `json:"next_class,omitempty"`
}

// Value marshals the summary for persistence.
func (o OverallPerformance) Value() (driver.Value, error) {
	return jsonValue(o, "overall performance")
}

// Scan unmarshals the summary from JSONB.
func (o *OverallPerformance) Scan(value interface{}) error {
	return scanJSON(value, o, "overall performance")
}

// Attendance captures term attendance counts.
type Attendance struct {
	TotalDays            int     `json:"total_days" validate:"gte=0"`
	PresentDays          int     `json:"present_days" validate:"gte=0,ltefield=TotalDays"`
	AbsentDays           int     `json:"absent_days" validate:"gte=0"`
	LateComings          int     `json:"late_comings" validate:"gte=0"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// Value marshals attendance for persistence.
func (a Attendance) Value() (driver.Value, error) {
	return jsonValue(a, "attendance")
}

// Scan unmarshals attendance from JSONB.
func (a *Attendance) Scan(value interface{}) error {
	return scanJSON(value, a, "attendance")
}

// Behavior holds the behavioural assessment for the term.
type Behavior struct {
	Conduct     Rating `json:"conduct"`
	Attitude    Rating `json:"attitude"`
	Punctuality Rating `json:"punctuality"`
	Cooperation Rating `json:"cooperation"`
}

// DefaultBehavior rates every trait Good.
func DefaultBehavior() Behavior {
	return Behavior{Conduct: RatingGood, Attitude: RatingGood, Punctuality: RatingGood, Cooperation: RatingGood}
}

// Value marshals behaviour for persistence.
func (b Behavior) Value() (driver.Value, error) {
	return jsonValue(b, "behavior")
}

// Scan unmarshals behaviour from JSONB.
func (b *Behavior) Scan(value interface{}) error {
	return scanJSON(value, b, "behavior")
}

// Comment is a free-text remark and its author.
type Comment struct {
	Comment  string `json:"comment"`
	AuthorID string `json:"author_id,omitempty"`
}

// Comments groups the class teacher and principal remarks.
type Comments struct {
	ClassTeacher Comment `json:"class_teacher"`
	Principal    Comment `json:"principal"`
}

// Value marshals comments for persistence.
func (c Comments) Value() (driver.Value, error) {
	return jsonValue(c, "comments")
}

// Scan unmarshals comments from JSONB.
func (c *Comments) Scan(value interface{}) error {
	return scanJSON(value, c, "comments")
}

// Activity records an extra-curricular activity for the term.
type Activity struct {
	Name        string `json:"name" validate:"required"`
	Grade       Rating `json:"grade,omitempty"`
	Position    string `json:"position,omitempty"`
	Achievement string `json:"achievement,omitempty"`
}

// Activities is persisted as a JSONB array.
type Activities []Activity

// Value marshals activities for persistence.
func (a Activities) Value() (driver.Value, error) {
	if a == nil {
		a = Activities{}
	}
	return jsonValue(a, "activities")
}

// Scan unmarshals activities from JSONB.
func (a *Activities) Scan(value interface{}) error {
	return scanJSON(value, a, "activities")
}

// ReportCard tracks generation and publication of the rendered report.
type ReportCard struct {
	IsGenerated bool       `json:"is_generated"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	GeneratedBy string     `json:"generated_by,omitempty"`
	PDFURL      string     `json:"pdf_url,omitempty"`
	FilePath    string     `json:"file_path,omitempty"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	PublishedBy string     `json:"published_by,omitempty"`
}

// Value marshals the report card for persistence.
func (r ReportCard) Value() (driver.Value, error) {
	return jsonValue(r, "report card")
}

// Scan unmarshals the report card from JSONB.
func (r *ReportCard) Scan(value interface{}) error {
	return scanJSON(value, r, "report card")
}

// NextTerm carries information printed on the report for the following term.
type NextTerm struct {
	ResumptionDate  *time.Time `json:"resumption_date,omitempty"`
	NewClass        string     `json:"new_class,omitempty"`
	FeesForNextTerm float64    `json:"fees_for_next_term,omitempty"`
}

// Value marshals next term info for persistence.
func (n NextTerm) Value() (driver.Value, error) {
	return jsonValue(n, "next term")
}

// Scan unmarshals next term info from JSONB.
func (n *NextTerm) Scan(value interface{}) error {
	return scanJSON(value, n, "next term")
}

// Result is the aggregate root for a student's term performance.
type Result struct {
	ID                 string             `db:"id" json:"id"`
	StudentID          string             `db:"student_id" json:"student_id"`
	SchoolID           string             `db:"school_id" json:"school_id"`
	AcademicYear       string             `db:"academic_year" json:"academic_year"`
	Term               string             `db:"term" json:"term"`
	ClassName          string             `db:"class_name" json:"class_name"`
	ExamType           ExamType           `db:"exam_type" json:"exam_type"`
	Subjects           SubjectRecords     `db:"subjects" json:"subjects"`
	OverallPerformance OverallPerformance `db:"overall_performance" json:"overall_performance"`
	Attendance         Attendance         `db:"attendance" json:"attendance"`
	Behavior           Behavior           `db:"behavior" json:"behavior"`
	Comments           Comments           `db:"comments" json:"comments"`
	Activities         Activities         `db:"activities" json:"activities"`
	ReportCard         ReportCard         `db:"report_card" json:"report_card"`
	NextTerm           NextTerm           `db:"next_term" json:"next_term"`
	Status             ResultStatus       `db:"status" json:"status"`
	IsActive           bool               `db:"is_active" json:"is_active"`
	Version            int                `db:"version" json:"version"`
	CreatedBy          string             `db:"created_by" json:"created_by"`
	LastUpdatedBy      *string            `db:"last_updated_by" json:"last_updated_by,omitempty"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// Cohort identifies the ranking population of a result.
type Cohort struct {
	SchoolID     string   `json:"school_id"`
	ClassName    string   `json:"class_name"`
	AcademicYear string   `json:"academic_year"`
	Term         string   `json:"term"`
	ExamType     ExamType `json:"exam_type"`
}

// WithDefaultExam returns the cohort with End-of-Term assumed when no exam type is set.
func (c Cohort) WithDefaultExam() Cohort {
	if c.ExamType == "" {
		c.ExamType = ExamTypeEndOfTerm
	}
	return c
}

// Cohort returns the ranking population key of the result.
func (r *Result) Cohort() Cohort {
	return Cohort{SchoolID: r.SchoolID, ClassName: r.ClassName, AcademicYear: r.AcademicYear, Term: r.Term, ExamType: r.ExamType}
}

// ResultFilter scopes result listings.
type ResultFilter struct {
	SchoolID        string
	StudentID       string
	ClassName       string
	AcademicYear    string
	Term            string
	ExamType        ExamType
	Status          ResultStatus
	IncludeArchived bool
	Page            int
	PageSize        int
}

// ClassStatistics aggregates a cohort's performance.
type ClassStatistics struct {
	Cohort            Cohort         `json:"cohort"`
	Count             int            `json:"count"`
	AverageScore      float64        `json:"average_score"`
	HighestScore      float64        `json:"highest_score"`
	LowestScore       float64        `json:"lowest_score"`
	PassRate          float64        `json:"pass_rate"`
	PromotedCount     int            `json:"promoted_count"`
	GradeDistribution map[string]int `json:"grade_distribution"`
	GeneratedAt       time.Time      `json:"generated_at"`
}
