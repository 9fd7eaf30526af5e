package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/internal/repository"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
	"github.com/noah-isme/aula-admin-api/pkg/credentials"
)

// GuardianInput identifies or describes the responsible adult for one
// or more students. Email is the primary reuse key, DNI the fallback.
type GuardianInput struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	DNI       *string `json:"dni" validate:"omitempty,max=20"`
}

// GuardianResolver finds or creates the guardian for a provisioning
// call. It operates inside the caller's transaction so a later failure
// rolls the created guardian back too.
type GuardianResolver struct {
	secrets *credentials.Generator
	logger  *zap.Logger
}

// NewGuardianResolver constructs a GuardianResolver.
func NewGuardianResolver(secrets *credentials.Generator, logger *zap.Logger) *GuardianResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardianResolver{secrets: secrets, logger: logger}
}

// Resolve returns the matching guardian, creating one when no natural
// key matches. Credentials are non-nil only for a freshly created
// guardian; an existing guardian's login is left untouched.
func (r *GuardianResolver) Resolve(ctx context.Context, tx repository.Tx, input GuardianInput) (*models.Guardian, bool, *models.Credentials, error) {
	if input.Email != nil && *input.Email != "" {
		guardian, err := tx.Guardians().FindByEmail(ctx, *input.Email)
		if err == nil {
			return guardian, false, nil, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil, fmt.Errorf("lookup guardian by email: %w", err)
		}
	}
	if input.DNI != nil && *input.DNI != "" {
		guardian, err := tx.Guardians().FindByDNI(ctx, *input.DNI)
		if err == nil {
			return guardian, false, nil, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil, fmt.Errorf("lookup guardian by dni: %w", err)
		}
	}

	username, err := AllocateUsername(ctx, tx.Identities(), input.FirstName, input.LastName, "")
	if err != nil {
		return nil, false, nil, err
	}
	password, err := r.secrets.StrongPassword()
	if err != nil {
		return nil, false, nil, fmt.Errorf("generate guardian secret: %w", err)
	}
	hash, err := r.secrets.Hash(password)
	if err != nil {
		return nil, false, nil, fmt.Errorf("hash guardian secret: %w", err)
	}

	guardian := &models.Guardian{
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Username:           username,
		Email:              input.Email,
		Phone:              input.Phone,
		DNI:                input.DNI,
		PasswordHash:       hash,
		TemporaryPassword:  &password,
		MustChangePassword: true,
	}
	if err := tx.Guardians().Create(ctx, guardian); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, nil, appErrors.Clone(appErrors.ErrConflict, "guardian username already taken")
		}
		return nil, false, nil, fmt.Errorf("create guardian: %w", err)
	}
	r.logger.Info("guardian created", zap.String("guardian_id", guardian.ID), zap.String("username", username))
	return guardian, true, &models.Credentials{Username: username, Password: password}, nil
}
