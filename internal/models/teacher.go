package models

import "time"

// Teacher represents an instructor record carrying its own login
// handle in the shared username namespace.
type Teacher struct {
	ID                 string    `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Username           string    `db:"username" json:"username"`
	Email              string    `db:"email" json:"email"`
	Phone              *string   `db:"phone" json:"phone,omitempty"`
	Expertise          *string   `db:"expertise" json:"expertise,omitempty"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	TemporaryPassword  *string   `db:"temporary_password" json:"-"`
	MustChangePassword bool      `db:"must_change_password" json:"must_change_password"`
	Active             bool      `db:"active" json:"active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
