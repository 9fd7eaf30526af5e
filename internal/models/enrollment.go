package models

import "time"

// EnrollmentState represents the lifecycle of an enrollment.
type EnrollmentState string

// Possible enrollment states. Cancelled rows stop counting against
// capacity and never block a later re-enrollment.
const (
	EnrollmentStatePending   EnrollmentState = "PENDING"
	EnrollmentStateConfirmed EnrollmentState = "CONFIRMED"
	EnrollmentStateCancelled EnrollmentState = "CANCELLED"
)

// Enrollment links a student to a commission.
type Enrollment struct {
	ID           string          `db:"id" json:"id"`
	CommissionID string          `db:"commission_id" json:"commission_id"`
	StudentID    string          `db:"student_id" json:"student_id"`
	State        EnrollmentState `db:"state" json:"state"`
	Notes        *string         `db:"notes" json:"notes,omitempty"`
	EnrolledAt   time.Time       `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with display fields.
type EnrollmentDetail struct {
	Enrollment
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
	StudentUsername  string `db:"student_username" json:"student_username"`
	CommissionName   string `db:"commission_name" json:"commission_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	CommissionID string
	StudentID    string
	State        EnrollmentState
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
