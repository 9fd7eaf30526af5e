package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/internal/repository"
	"github.com/noah-isme/aula-admin-api/pkg/credentials"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
)

// StudentInput describes one student to provision.
type StudentInput struct {
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"required,max=100"`
	Age         int     `json:"age" validate:"required,min=1,max=120"`
	SchoolLevel string  `json:"school_level" validate:"required,max=50"`
	Email       *string `json:"email" validate:"omitempty,email"`
	HouseID     *string `json:"house_id"`
}

// ProvisionStudentsRequest creates one guardian (or reuses an existing
// one) plus one or more students.
type ProvisionStudentsRequest struct {
	Guardian GuardianInput  `json:"guardian" validate:"required"`
	Students []StudentInput `json:"students" validate:"required,min=1,dive"`
}

// ProvisionAndEnrollRequest creates a single student under a guardian
// and enrolls it into a commission in the same breath.
type ProvisionAndEnrollRequest struct {
	CommissionID string        `json:"commission_id" validate:"required"`
	Guardian     GuardianInput `json:"guardian" validate:"required"`
	Student      StudentInput  `json:"student" validate:"required"`
	Notes        *string       `json:"notes" validate:"omitempty,max=500"`
}

// ProvisioningResult carries everything a provisioning call produced:
// the persisted entities plus the one-time-visible credential bundle.
type ProvisioningResult struct {
	Guardian        *models.Guardian        `json:"guardian"`
	GuardianCreated bool                    `json:"guardian_created"`
	Students        []models.Student        `json:"students"`
	Enrollment      *models.Enrollment      `json:"enrollment,omitempty"`
	Credentials     models.CredentialBundle `json:"credentials"`
}

// ProvisioningService composes guardian resolution, username
// allocation, secret generation and enrollment into the two admin
// one-stop flows. Each flow runs inside a single unit of work so a
// failure at any step leaves nothing behind.
type ProvisioningService struct {
	uow       repository.UnitOfWork
	resolver  *GuardianResolver
	secrets   *credentials.Generator
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProvisioningService constructs a ProvisioningService.
func NewProvisioningService(uow repository.UnitOfWork, secrets *credentials.Generator, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProvisioningService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningService{
		uow:       uow,
		resolver:  NewGuardianResolver(secrets, logger),
		secrets:   secrets,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// CreateStudents resolves the guardian once and creates every student
// with its own username and memorable secret, all atomically.
func (s *ProvisioningService) CreateStudents(ctx context.Context, req ProvisionStudentsRequest) (*ProvisioningResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provisioning payload")
	}

	var result *ProvisioningResult
	err := s.uow.Within(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.provision(ctx, tx, req.Guardian, req.Students)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("students provisioned",
		zap.String("guardian_id", result.Guardian.ID),
		zap.Bool("guardian_created", result.GuardianCreated),
		zap.Int("students", len(result.Students)))
	return result, nil
}

// CreateStudentAndEnroll provisions one student and enrolls it with
// state Confirmed. The capacity gate runs before any account is
// created, and the whole sequence shares one transaction: if the
// enrollment insert fails, the accounts vanish with it.
func (s *ProvisioningService) CreateStudentAndEnroll(ctx context.Context, req ProvisionAndEnrollRequest) (*ProvisioningResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provisioning payload")
	}

	var result *ProvisioningResult
	err := s.uow.Within(ctx, func(tx repository.Tx) error {
		commission, err := tx.Commissions().LockByID(ctx, req.CommissionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.WithDetails(appErrors.ErrNotFound, "commission not found",
					map[string]interface{}{"commission_id": req.CommissionID})
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commission")
		}
		occupied, err := tx.Enrollments().CountActive(ctx, commission.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		if err := CheckCapacity(commission, occupied, 1); err != nil {
			return err
		}

		result, err = s.provision(ctx, tx, req.Guardian, []StudentInput{req.Student})
		if err != nil {
			return err
		}

		enrollment := &models.Enrollment{
			CommissionID: commission.ID,
			StudentID:    result.Students[0].ID,
			State:        models.EnrollmentStateConfirmed,
			Notes:        req.Notes,
			EnrolledAt:   time.Now().UTC(),
		}
		if err := tx.Enrollments().CreateBatch(ctx, []*models.Enrollment{enrollment}); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "student already enrolled in commission")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
		}
		result.Enrollment = enrollment
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, commissionCachePrefix+"*"); err != nil {
		s.logger.Warn("commission cache invalidation failed", zap.Error(err))
	}
	s.logger.Info("student provisioned and enrolled",
		zap.String("commission_id", req.CommissionID),
		zap.String("student_id", result.Students[0].ID))
	return result, nil
}

// provision creates the guardian (when needed) and every student
// inside the caller's transaction.
func (s *ProvisioningService) provision(ctx context.Context, tx repository.Tx, guardianInput GuardianInput, studentInputs []StudentInput) (*ProvisioningResult, error) {
	guardian, created, guardianCreds, err := s.resolver.Resolve(ctx, tx, guardianInput)
	if err != nil {
		return nil, err
	}

	result := &ProvisioningResult{
		Guardian:        guardian,
		GuardianCreated: created,
		Credentials:     models.CredentialBundle{Guardian: guardianCreds},
	}
	for _, input := range studentInputs {
		username, err := AllocateUsername(ctx, tx.Identities(), input.FirstName, input.LastName, "")
		if err != nil {
			return nil, err
		}
		password, err := s.secrets.MemorablePassword()
		if err != nil {
			return nil, fmt.Errorf("generate student secret: %w", err)
		}
		hash, err := s.secrets.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash student secret: %w", err)
		}

		student := &models.Student{
			FirstName:          input.FirstName,
			LastName:           input.LastName,
			Username:           username,
			Email:              input.Email,
			Age:                input.Age,
			SchoolLevel:        input.SchoolLevel,
			GuardianID:         guardian.ID,
			HouseID:            input.HouseID,
			PasswordHash:       hash,
			TemporaryPassword:  &password,
			MustChangePassword: true,
			Active:             true,
		}
		if err := tx.Students().Create(ctx, student); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "student username already taken")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
		}

		result.Students = append(result.Students, *student)
		result.Credentials.Students = append(result.Credentials.Students, models.StudentCredentials{
			StudentID:   student.ID,
			FullName:    student.FullName(),
			Credentials: models.Credentials{Username: username, Password: password},
		})
	}
	return result, nil
}
