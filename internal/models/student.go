package models

import "time"

// Student is a learner account owned by exactly one guardian. Username
// is the unique login handle shared with every other account kind.
type Student struct {
	ID                 string    `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Username           string    `db:"username" json:"username"`
	Email              *string   `db:"email" json:"email,omitempty"`
	Age                int       `db:"age" json:"age"`
	SchoolLevel        string    `db:"school_level" json:"school_level"`
	GuardianID         string    `db:"guardian_id" json:"guardian_id"`
	HouseID            *string   `db:"house_id" json:"house_id,omitempty"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	TemporaryPassword  *string   `db:"temporary_password" json:"-"`
	MustChangePassword bool      `db:"must_change_password" json:"must_change_password"`
	Active             bool      `db:"active" json:"active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter captures search parameters for listing students.
type StudentFilter struct {
	Search     string
	GuardianID string
	HouseID    string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
