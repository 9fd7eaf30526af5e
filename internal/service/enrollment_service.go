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
	"github.com/noah-isme/aula-admin-api/pkg/export"
)

// EnrollRequest represents payload for enrolling students into a
// commission.
type EnrollRequest struct {
	CommissionID string   `json:"commission_id" validate:"required"`
	StudentIDs   []string `json:"student_ids" validate:"required,min=1,unique,dive,required"`
	InitialState string   `json:"initial_state" validate:"omitempty,oneof=PENDING CONFIRMED"`
	Notes        *string  `json:"notes" validate:"omitempty,max=500"`
}

// UpdateEnrollmentStateRequest transitions one enrollment.
type UpdateEnrollmentStateRequest struct {
	State string  `json:"state" validate:"required,oneof=PENDING CONFIRMED CANCELLED"`
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

// EnrollmentService orchestrates enrollment operations. Every write
// path runs inside one unit of work so the capacity re-check and the
// row inserts cannot be separated by a concurrent writer.
type EnrollmentService struct {
	uow       repository.UnitOfWork
	cache     *CacheService
	rosterCSV *export.RosterCSV
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService. Cached
// commission payloads carry occupancy, so every write here drops them.
func NewEnrollmentService(uow repository.UnitOfWork, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{uow: uow, cache: cache, rosterCSV: export.NewRosterCSV(), validator: validate, logger: logger}
}

// Enroll places every requested student into the commission or none of
// them. Order inside the transaction matters: the commission row lock
// comes first so concurrent requests for the same commission serialize,
// then the occupancy count is fresh by construction.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) ([]models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	state := models.EnrollmentState(req.InitialState)
	if state == "" {
		state = models.EnrollmentStatePending
	}

	var created []models.EnrollmentDetail
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
		if err := CheckCapacity(commission, occupied, len(req.StudentIDs)); err != nil {
			return err
		}

		students, err := tx.Students().FindByIDs(ctx, req.StudentIDs)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
		}
		if len(students) != len(req.StudentIDs) {
			missing := missingIDs(req.StudentIDs, students)
			return appErrors.WithDetails(appErrors.ErrNotFound, "one or more students not found",
				map[string]interface{}{"student_ids": missing})
		}

		duplicates, err := tx.Enrollments().FindActiveStudentIDs(ctx, commission.ID, req.StudentIDs)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollments")
		}
		if len(duplicates) > 0 {
			return appErrors.WithDetails(appErrors.ErrDuplicateEnrollment, "student(s) already enrolled in commission",
				map[string]interface{}{"student_ids": duplicates})
		}

		enrollments := make([]*models.Enrollment, 0, len(students))
		byID := make(map[string]models.Student, len(students))
		for _, student := range students {
			byID[student.ID] = student
		}
		now := time.Now().UTC()
		for _, studentID := range req.StudentIDs {
			enrollments = append(enrollments, &models.Enrollment{
				CommissionID: commission.ID,
				StudentID:    studentID,
				State:        state,
				Notes:        req.Notes,
				EnrolledAt:   now,
			})
		}
		if err := tx.Enrollments().CreateBatch(ctx, enrollments); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "student already enrolled in commission")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollments")
		}

		created = make([]models.EnrollmentDetail, 0, len(enrollments))
		for _, enrollment := range enrollments {
			student := byID[enrollment.StudentID]
			created = append(created, models.EnrollmentDetail{
				Enrollment:       *enrollment,
				StudentFirstName: student.FirstName,
				StudentLastName:  student.LastName,
				StudentUsername:  student.Username,
				CommissionName:   commission.Name,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCommissions(ctx)
	s.logger.Info("students enrolled",
		zap.String("commission_id", req.CommissionID),
		zap.Int("count", len(created)),
		zap.String("state", string(state)))
	return created, nil
}

// List returns enrollments plus pagination data.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.uow.View().Enrollments().List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateState transitions an enrollment. Cancelled is terminal: a
// cancelled enrollment never comes back, re-enrollment creates a new
// row instead.
func (s *EnrollmentService) UpdateState(ctx context.Context, id string, req UpdateEnrollmentStateRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid state payload")
	}
	err := s.uow.Within(ctx, func(tx repository.Tx) error {
		current, err := tx.Enrollments().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		next := models.EnrollmentState(req.State)
		if current.State == models.EnrollmentStateCancelled && next != models.EnrollmentStateCancelled {
			return appErrors.Clone(appErrors.ErrConflict, "cancelled enrollments cannot be reactivated")
		}
		if err := tx.Enrollments().UpdateState(ctx, id, next, req.Notes); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
		}
		s.logger.Info("enrollment state changed",
			zap.String("enrollment_id", id),
			zap.String("from", string(current.State)),
			zap.String("to", string(next)))
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateCommissions(ctx)
	return nil
}

// Remove hard-deletes an enrollment row. Distinct from cancellation,
// which keeps the row for history.
func (s *EnrollmentService) Remove(ctx context.Context, id string) error {
	if err := s.uow.View().Enrollments().Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.invalidateCommissions(ctx)
	s.logger.Info("enrollment removed", zap.String("enrollment_id", id))
	return nil
}

// invalidateCommissions drops cached commission payloads whose
// occupancy the write just changed.
func (s *EnrollmentService) invalidateCommissions(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, commissionCachePrefix+"*"); err != nil {
		s.logger.Warn("commission cache invalidation failed", zap.Error(err))
	}
}

// ExportRoster renders the commission roster as CSV.
func (s *EnrollmentService) ExportRoster(ctx context.Context, commissionID string) ([]byte, error) {
	view := s.uow.View()
	if _, err := view.Commissions().FindByID(ctx, commissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "commission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commission")
	}
	roster, err := view.Enrollments().Roster(ctx, commissionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	rows := make([]export.RosterRow, 0, len(roster))
	for _, entry := range roster {
		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}
		rows = append(rows, export.RosterRow{
			StudentName: fmt.Sprintf("%s %s", entry.StudentFirstName, entry.StudentLastName),
			Username:    entry.StudentUsername,
			State:       string(entry.State),
			EnrolledAt:  entry.EnrolledAt.Format(time.RFC3339),
			Notes:       notes,
		})
	}
	return s.rosterCSV.Render(rows)
}

func missingIDs(requested []string, found []models.Student) []string {
	present := make(map[string]struct{}, len(found))
	for _, student := range found {
		present[student.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
