package models

import "time"

// StudentStatus tracks enrolment state.
type StudentStatus string

const (
	StudentStatusActive      StudentStatus = "Active"
	StudentStatusInactive    StudentStatus = "Inactive"
	StudentStatusGraduated   StudentStatus = "Graduated"
	StudentStatusTransferred StudentStatus = "Transferred"
)

// Student represents a learner registered in a school.
type Student struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	SchoolID      string        `db:"school_id" json:"school_id"`
	FirstName     string        `db:"first_name" json:"first_name"`
	MiddleName    string        `db:"middle_name" json:"middle_name,omitempty"`
	LastName      string        `db:"last_name" json:"last_name"`
	Gender        string        `db:"gender" json:"gender"`
	DateOfBirth   time.Time     `db:"date_of_birth" json:"date_of_birth"`
	CurrentClass  string        `db:"current_class" json:"current_class"`
	Level         string        `db:"level" json:"level"`
	GuardianEmail string        `db:"guardian_email" json:"guardian_email,omitempty"`
	Status        StudentStatus `db:"status" json:"status"`
	AdmissionDate time.Time     `db:"admission_date" json:"admission_date"`
	CreatedBy     string        `db:"created_by" json:"created_by"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts, including the middle name when present.
func (s *Student) FullName() string {
	if s.MiddleName != "" {
		return s.FirstName + " " + s.MiddleName + " " + s.LastName
	}
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	SchoolID  string
	ClassName string
	Status    StudentStatus
	Page      int
	PageSize  int
}
