package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

// HouseRepository reads houses.
type HouseRepository struct {
	exec sqlx.ExtContext
}

// NewHouseRepository constructs the repository.
func NewHouseRepository(exec sqlx.ExtContext) *HouseRepository {
	return &HouseRepository{exec: exec}
}

// FindByID loads one house.
func (r *HouseRepository) FindByID(ctx context.Context, id string) (*models.House, error) {
	const query = `SELECT id, name, color, created_at FROM houses WHERE id = $1`
	var house models.House
	if err := sqlx.GetContext(ctx, r.exec, &house, query, id); err != nil {
		return nil, err
	}
	return &house, nil
}
