package models

import "time"

// Commission is one scheduled offering of a product: a capacity-limited
// section with its own schedule, optional house and optional teacher.
type Commission struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	ProductID string     `db:"product_id" json:"product_id"`
	HouseID   *string    `db:"house_id" json:"house_id,omitempty"`
	TeacherID *string    `db:"teacher_id" json:"teacher_id,omitempty"`
	MaxSeats  *int       `db:"max_seats" json:"max_seats,omitempty"`
	Schedule  *string    `db:"schedule" json:"schedule,omitempty"`
	StartsOn  *time.Time `db:"starts_on" json:"starts_on,omitempty"`
	EndsOn    *time.Time `db:"ends_on" json:"ends_on,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// CommissionDetail enriches a Commission with occupancy derived from
// counting non-cancelled enrollments.
type CommissionDetail struct {
	Commission
	ProductName   string  `db:"product_name" json:"product_name"`
	HouseName     *string `db:"house_name" json:"house_name,omitempty"`
	TeacherName   *string `db:"teacher_name" json:"teacher_name,omitempty"`
	OccupiedSeats int     `db:"occupied_seats" json:"occupied_seats"`
	// AvailableSeats is nil when MaxSeats is nil (unlimited).
	AvailableSeats *int `json:"available_seats,omitempty"`
}

// CommissionFilter provides filters for listing commissions.
type CommissionFilter struct {
	ProductID string
	HouseID   string
	TeacherID string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
