package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/internal/repository"
	"github.com/noah-isme/aula-admin-api/pkg/credentials"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
)

// CreateTeacherRequest represents payload for provisioning a teacher.
// Password is optional: when absent the system mints a strong secret
// and flags the account for a forced change on first login.
type CreateTeacherRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Expertise *string `json:"expertise" validate:"omitempty,max=500"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
}

// TeacherProvisioningResult is the created teacher plus its one-time
// credentials.
type TeacherProvisioningResult struct {
	Teacher     *models.Teacher     `json:"teacher"`
	Credentials *models.Credentials `json:"credentials,omitempty"`
}

// TeacherService orchestrates teacher provisioning and listing.
type TeacherService struct {
	uow       repository.UnitOfWork
	secrets   *credentials.Generator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(uow repository.UnitOfWork, secrets *credentials.Generator, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{uow: uow, secrets: secrets, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.uow.View().Teachers().List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return teachers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one teacher.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.uow.View().Teachers().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create provisions a teacher account with its allocated username,
// all inside one unit of work.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*TeacherProvisioningResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	var result *TeacherProvisioningResult
	err := s.uow.Within(ctx, func(tx repository.Tx) error {
		if _, err := tx.Teachers().FindByEmail(ctx, req.Email); err == nil {
			return appErrors.WithDetails(appErrors.ErrConflict, "a teacher with this email already exists",
				map[string]interface{}{"email": req.Email})
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
		}

		username, err := AllocateUsername(ctx, tx.Identities(), req.FirstName, req.LastName, "")
		if err != nil {
			return err
		}

		generated := req.Password == nil
		password := ""
		if generated {
			password, err = s.secrets.StrongPassword()
			if err != nil {
				return fmt.Errorf("generate teacher secret: %w", err)
			}
		} else {
			password = *req.Password
		}
		hash, err := s.secrets.Hash(password)
		if err != nil {
			return fmt.Errorf("hash teacher secret: %w", err)
		}

		teacher := &models.Teacher{
			FirstName:          req.FirstName,
			LastName:           req.LastName,
			Username:           username,
			Email:              req.Email,
			Phone:              req.Phone,
			Expertise:          req.Expertise,
			PasswordHash:       hash,
			MustChangePassword: generated,
			Active:             true,
		}
		if generated {
			teacher.TemporaryPassword = &password
		}
		if err := tx.Teachers().Create(ctx, teacher); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return appErrors.Clone(appErrors.ErrConflict, "teacher username already taken")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
		}

		result = &TeacherProvisioningResult{Teacher: teacher}
		if generated {
			result.Credentials = &models.Credentials{Username: username, Password: password}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("teacher provisioned",
		zap.String("teacher_id", result.Teacher.ID),
		zap.String("username", result.Teacher.Username))
	return result, nil
}
