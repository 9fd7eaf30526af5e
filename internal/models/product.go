package models

import "time"

// ProductType discriminates offerings that can carry commissions.
type ProductType string

const (
	ProductTypeCourse ProductType = "COURSE"
	ProductTypeEvent  ProductType = "EVENT"
)

// Product is a sellable course or event; commissions are its sections.
type Product struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Type      ProductType `db:"type" json:"type"`
	Active    bool        `db:"active" json:"active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
