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
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
)

const commissionCachePrefix = "commission:"

// CreateCommissionRequest represents payload for creating commissions.
type CreateCommissionRequest struct {
	Name      string     `json:"name" validate:"required,max=150"`
	ProductID string     `json:"product_id" validate:"required"`
	HouseID   *string    `json:"house_id"`
	TeacherID *string    `json:"teacher_id"`
	MaxSeats  *int       `json:"max_seats" validate:"omitempty,min=1"`
	Schedule  *string    `json:"schedule" validate:"omitempty,max=200"`
	StartsOn  *time.Time `json:"starts_on"`
	EndsOn    *time.Time `json:"ends_on"`
}

// UpdateCommissionRequest represents payload for updating commissions.
// Pointer fields are left untouched when nil; House and Teacher use
// the three-state ref so "clear the teacher" is expressible.
type UpdateCommissionRequest struct {
	Name      *string            `json:"name" validate:"omitempty,max=150"`
	MaxSeats  *int               `json:"max_seats" validate:"omitempty,min=1"`
	Unlimited bool               `json:"unlimited"`
	Schedule  *string            `json:"schedule" validate:"omitempty,max=200"`
	StartsOn  *time.Time         `json:"starts_on"`
	EndsOn    *time.Time         `json:"ends_on"`
	Active    *bool              `json:"active"`
	House     models.OptionalRef `json:"-"`
	Teacher   models.OptionalRef `json:"-"`
}

// CommissionService orchestrates commission CRUD. Detail reads go
// through Redis; any write for a commission drops the whole prefix.
type CommissionService struct {
	uow       repository.UnitOfWork
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommissionService constructs a CommissionService. cache may be
// nil, which disables the read-through layer.
func NewCommissionService(uow repository.UnitOfWork, cache *CacheService, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *CommissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CommissionService{uow: uow, cache: cache, cacheTTL: ttl, validator: validate, logger: logger}
}

// List returns commissions plus pagination data.
func (s *CommissionService) List(ctx context.Context, filter models.CommissionFilter) ([]models.CommissionDetail, *models.Pagination, error) {
	commissions, total, err := s.uow.View().Commissions().List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list commissions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return commissions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns commission detail, served from cache when warm.
func (s *CommissionService) Get(ctx context.Context, id string) (*models.CommissionDetail, error) {
	cacheKey := commissionCachePrefix + "detail:" + id
	var cached models.CommissionDetail
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	detail, err := s.uow.View().Commissions().FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "commission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commission")
	}

	if err := s.cache.Set(ctx, cacheKey, detail, s.cacheTTL); err != nil {
		s.logger.Warn("commission cache write failed", zap.String("commission_id", id), zap.Error(err))
	}
	return detail, nil
}

// Create validates references and persists a new commission.
func (s *CommissionService) Create(ctx context.Context, req CreateCommissionRequest) (*models.Commission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commission payload")
	}

	commission := &models.Commission{
		Name:      req.Name,
		ProductID: req.ProductID,
		HouseID:   req.HouseID,
		TeacherID: req.TeacherID,
		MaxSeats:  req.MaxSeats,
		Schedule:  req.Schedule,
		StartsOn:  req.StartsOn,
		EndsOn:    req.EndsOn,
		Active:    true,
	}
	err := s.uow.Within(ctx, func(tx repository.Tx) error {
		product, err := tx.Products().FindByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "product not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
		}
		if product.Type != models.ProductTypeCourse && product.Type != models.ProductTypeEvent {
			return appErrors.WithDetails(appErrors.ErrValidation, "product cannot carry commissions",
				map[string]interface{}{"product_type": string(product.Type)})
		}
		if req.HouseID != nil {
			if _, err := tx.Houses().FindByID(ctx, *req.HouseID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "house not found")
				}
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load house")
			}
		}
		if req.TeacherID != nil {
			if _, err := tx.Teachers().FindByID(ctx, *req.TeacherID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
				}
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
			}
		}
		if err := tx.Commissions().Create(ctx, commission); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create commission")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("commission created", zap.String("commission_id", commission.ID), zap.String("name", commission.Name))
	return commission, nil
}

// Update applies the partial update. Shrinking max_seats below current
// occupancy is rejected so the capacity invariant keeps holding.
func (s *CommissionService) Update(ctx context.Context, id string, req UpdateCommissionRequest) (*models.Commission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commission payload")
	}

	var updated *models.Commission
	err := s.uow.Within(ctx, func(tx repository.Tx) error {
		commission, err := tx.Commissions().LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "commission not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commission")
		}

		if req.Name != nil {
			commission.Name = *req.Name
		}
		if req.Unlimited {
			commission.MaxSeats = nil
		} else if req.MaxSeats != nil {
			occupied, err := tx.Enrollments().CountActive(ctx, id)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
			}
			if *req.MaxSeats < occupied {
				return appErrors.WithDetails(appErrors.ErrConflict,
					fmt.Sprintf("cannot set max seats to %d with %d seats occupied", *req.MaxSeats, occupied),
					map[string]interface{}{"occupied": occupied, "requested": *req.MaxSeats})
			}
			commission.MaxSeats = req.MaxSeats
		}
		if req.Schedule != nil {
			commission.Schedule = req.Schedule
		}
		if req.StartsOn != nil {
			commission.StartsOn = req.StartsOn
		}
		if req.EndsOn != nil {
			commission.EndsOn = req.EndsOn
		}
		if req.Active != nil {
			commission.Active = *req.Active
		}
		if !req.House.IsUnchanged() {
			target, _ := req.House.Value()
			if target != nil {
				if _, err := tx.Houses().FindByID(ctx, *target); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return appErrors.Clone(appErrors.ErrNotFound, "house not found")
					}
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load house")
				}
			}
			commission.HouseID = target
		}
		if !req.Teacher.IsUnchanged() {
			target, _ := req.Teacher.Value()
			if target != nil {
				if _, err := tx.Teachers().FindByID(ctx, *target); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
					}
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
				}
			}
			commission.TeacherID = target
		}

		if err := tx.Commissions().Update(ctx, commission); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update commission")
		}
		updated = commission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("commission updated", zap.String("commission_id", id))
	return updated, nil
}

// Deactivate soft-deletes the commission and reports how many
// non-cancelled enrollments it still carries. Those stay; new ones are
// refused by the capacity gate.
func (s *CommissionService) Deactivate(ctx context.Context, id string) (int, error) {
	var affected int
	err := s.uow.Within(ctx, func(tx repository.Tx) error {
		count, err := tx.Enrollments().CountActive(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		affected = count
		if err := tx.Commissions().Deactivate(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "commission not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate commission")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	s.logger.Info("commission deactivated",
		zap.String("commission_id", id),
		zap.Int("active_enrollments", affected))
	return affected, nil
}

func (s *CommissionService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, commissionCachePrefix+"*"); err != nil {
		s.logger.Warn("commission cache invalidation failed", zap.Error(err))
	}
}
