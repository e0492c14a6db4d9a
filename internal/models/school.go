package models

import (
	"database/sql/driver"
	"time"
)

// GradingSystemType describes how a school reports grades.
type GradingSystemType string

const (
	GradingTypePercentage GradingSystemType = "Percentage"
	GradingTypeLetter     GradingSystemType = "Letter"
	GradingTypeCustom     GradingSystemType = "Custom"
)

// TieBreakPolicy decides positions for equal scores within a cohort.
type TieBreakPolicy string

const (
	// TieBreakCompetition shares the position and skips the following ones (1, 1, 3).
	TieBreakCompetition TieBreakPolicy = "competition"
	// TieBreakDense shares the position without gaps (1, 1, 2).
	TieBreakDense TieBreakPolicy = "dense"
	// TieBreakOrdinal assigns distinct positions ordered by student identifier (1, 2, 3).
	TieBreakOrdinal TieBreakPolicy = "ordinal"
)

// Valid reports whether the policy is a known value.
func (p TieBreakPolicy) Valid() bool {
	switch p {
	case TieBreakCompetition, TieBreakDense, TieBreakOrdinal:
		return true
	}
	return false
}

// GradeBand is one interval of a school grading scale.
type GradeBand struct {
	Grade       string   `json:"grade" validate:"required"`
	MinScore    float64  `json:"min_score" validate:"gte=0,lte=100"`
	MaxScore    float64  `json:"max_score" validate:"gte=0,lte=100,gtefield=MinScore"`
	Description string   `json:"description"`
	GradePoint  *float64 `json:"grade_point,omitempty" validate:"omitempty,gte=0,lte=4"`
}

// GradingSystem is the school-owned grading configuration.
type GradingSystem struct {
	Type            GradingSystemType `json:"type"`
	Scale           []GradeBand       `json:"scale"`
	PassMarkDefault float64           `json:"pass_mark_default"`
}

// Value marshals the grading system for persistence.
func (g GradingSystem) Value() (driver.Value, error) {
	return jsonValue(g, "grading system")
}

// Scan unmarshals the grading system from JSONB.
func (g *GradingSystem) Scan(value interface{}) error {
	return scanJSON(value, g, "grading system")
}

// SchoolPolicy overrides the service-wide promotion and ranking policy for one school.
// Nil fields fall back to the global configuration.
type SchoolPolicy struct {
	PromotionThreshold    *float64        `json:"promotion_threshold,omitempty"`
	PromoteWhenNoSubjects *bool           `json:"promote_when_no_subjects,omitempty"`
	RankingTieBreak       *TieBreakPolicy `json:"ranking_tie_break,omitempty"`
}

// Value marshals the policy for persistence.
func (p SchoolPolicy) Value() (driver.Value, error) {
	return jsonValue(p, "school policy")
}

// Scan unmarshals the policy from JSONB.
func (p *SchoolPolicy) Scan(value interface{}) error {
	return scanJSON(value, p, "school policy")
}

// SchoolSettings holds notification and presentation preferences.
type SchoolSettings struct {
	EmailNotifications bool   `json:"email_notifications"`
	SMSNotifications   bool   `json:"sms_notifications"`
	NotificationEmail  string `json:"notification_email,omitempty"`
	ReportCardTemplate string `json:"report_card_template,omitempty"`
}

// Value marshals settings for persistence.
func (s SchoolSettings) Value() (driver.Value, error) {
	return jsonValue(s, "school settings")
}

// Scan unmarshals settings from JSONB.
func (s *SchoolSettings) Scan(value interface{}) error {
	return scanJSON(value, s, "school settings")
}

// School owns grading configuration, terms and students.
type School struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Motto         string         `db:"motto" json:"motto"`
	LogoURL       string         `db:"logo_url" json:"logo_url"`
	CurrentYear   string         `db:"current_academic_year" json:"current_academic_year"`
	YearStartDate time.Time      `db:"academic_year_start" json:"academic_year_start"`
	YearEndDate   time.Time      `db:"academic_year_end" json:"academic_year_end"`
	GradingSystem GradingSystem  `db:"grading_system" json:"grading_system"`
	Policy        SchoolPolicy   `db:"policy" json:"policy"`
	Settings      SchoolSettings `db:"settings" json:"settings"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
	Terms         []Term         `db:"-" json:"terms,omitempty"`
}
