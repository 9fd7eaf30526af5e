package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

const guardianColumns = `id, first_name, last_name, username, email, phone, dni,
        password_hash, temporary_password, must_change_password, created_at, updated_at`

// GuardianRepository handles persistence of guardians.
type GuardianRepository struct {
	exec sqlx.ExtContext
}

// NewGuardianRepository constructs the repository.
func NewGuardianRepository(exec sqlx.ExtContext) *GuardianRepository {
	return &GuardianRepository{exec: exec}
}

// FindByID loads one guardian.
func (r *GuardianRepository) FindByID(ctx context.Context, id string) (*models.Guardian, error) {
	query := fmt.Sprintf("SELECT %s FROM guardians WHERE id = $1", guardianColumns)
	var guardian models.Guardian
	if err := sqlx.GetContext(ctx, r.exec, &guardian, query, id); err != nil {
		return nil, err
	}
	return &guardian, nil
}

// FindByEmail matches case-insensitively; email is the primary
// reuse key when resolving a guardian.
func (r *GuardianRepository) FindByEmail(ctx context.Context, email string) (*models.Guardian, error) {
	query := fmt.Sprintf("SELECT %s FROM guardians WHERE LOWER(email) = LOWER($1)", guardianColumns)
	var guardian models.Guardian
	if err := sqlx.GetContext(ctx, r.exec, &guardian, query, email); err != nil {
		return nil, err
	}
	return &guardian, nil
}

// FindByDNI matches the national identity document number.
func (r *GuardianRepository) FindByDNI(ctx context.Context, dni string) (*models.Guardian, error) {
	query := fmt.Sprintf("SELECT %s FROM guardians WHERE dni = $1", guardianColumns)
	var guardian models.Guardian
	if err := sqlx.GetContext(ctx, r.exec, &guardian, query, dni); err != nil {
		return nil, err
	}
	return &guardian, nil
}

// Create inserts a guardian; username collisions map to ErrDuplicate.
func (r *GuardianRepository) Create(ctx context.Context, guardian *models.Guardian) error {
	const query = `INSERT INTO guardians (id, first_name, last_name, username, email, phone, dni,
                password_hash, temporary_password, must_change_password, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :username, :email, :phone, :dni,
                :password_hash, :temporary_password, :must_change_password, :created_at, :updated_at)`
	if guardian.ID == "" {
		guardian.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	guardian.CreatedAt = now
	guardian.UpdatedAt = now
	if _, err := sqlx.NamedExecContext(ctx, r.exec, query, guardian); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("guardian username %s: %w", guardian.Username, ErrDuplicate)
		}
		return fmt.Errorf("create guardian: %w", err)
	}
	return nil
}
