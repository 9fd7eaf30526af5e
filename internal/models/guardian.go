package models

import "time"

// Guardian is the responsible adult account linked to one or more
// students.
type Guardian struct {
	ID                 string    `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Username           string    `db:"username" json:"username"`
	Email              *string   `db:"email" json:"email,omitempty"`
	Phone              *string   `db:"phone" json:"phone,omitempty"`
	DNI                *string   `db:"dni" json:"dni,omitempty"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	TemporaryPassword  *string   `db:"temporary_password" json:"-"`
	MustChangePassword bool      `db:"must_change_password" json:"must_change_password"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (g Guardian) FullName() string {
	return g.FirstName + " " + g.LastName
}
