package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

// IdentityRepository answers cross-table questions about the single
// username namespace shared by students, guardians and teachers.
type IdentityRepository struct {
	exec sqlx.ExtContext
}

// NewIdentityRepository constructs the repository.
func NewIdentityRepository(exec sqlx.ExtContext) *IdentityRepository {
	return &IdentityRepository{exec: exec}
}

// UsernameTaken reports whether any account kind already owns the
// username. The allocator probes with this before inserting; the
// per-table unique indexes remain the final word.
func (r *IdentityRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM students WHERE username = $1)
        OR EXISTS (SELECT 1 FROM guardians WHERE username = $1)
        OR EXISTS (SELECT 1 FROM teachers WHERE username = $1)`
	var taken bool
	if err := sqlx.GetContext(ctx, r.exec, &taken, query, username); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return taken, nil
}

// ListTemporaryCredentials returns every account that still carries a
// system-generated password, across all account kinds.
func (r *IdentityRepository) ListTemporaryCredentials(ctx context.Context) ([]models.TemporaryCredential, error) {
	const query = `SELECT id AS account_id, 'student' AS kind,
                first_name || ' ' || last_name AS full_name, username, temporary_password
        FROM students WHERE must_change_password AND temporary_password IS NOT NULL
        UNION ALL
        SELECT id AS account_id, 'guardian' AS kind,
                first_name || ' ' || last_name AS full_name, username, temporary_password
        FROM guardians WHERE must_change_password AND temporary_password IS NOT NULL
        UNION ALL
        SELECT id AS account_id, 'teacher' AS kind,
                first_name || ' ' || last_name AS full_name, username, temporary_password
        FROM teachers WHERE must_change_password AND temporary_password IS NOT NULL
        ORDER BY kind, full_name`
	var credentials []models.TemporaryCredential
	if err := sqlx.SelectContext(ctx, r.exec, &credentials, query); err != nil {
		return nil, fmt.Errorf("list temporary credentials: %w", err)
	}
	return credentials, nil
}
