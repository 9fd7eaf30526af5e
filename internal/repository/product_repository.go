package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

// ProductRepository reads products.
type ProductRepository struct {
	exec sqlx.ExtContext
}

// NewProductRepository constructs the repository.
func NewProductRepository(exec sqlx.ExtContext) *ProductRepository {
	return &ProductRepository{exec: exec}
}

// FindByID loads one product.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	const query = `SELECT id, name, type, active, created_at, updated_at FROM products WHERE id = $1`
	var product models.Product
	if err := sqlx.GetContext(ctx, r.exec, &product, query, id); err != nil {
		return nil, err
	}
	return &product, nil
}
