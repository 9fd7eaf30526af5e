package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aula-admin-api/internal/models"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
)

func seedCommission(uow *fakeUow, id string, maxSeats *int, active bool) {
	uow.tx.commissions[id] = &models.Commission{
		ID: id, Name: "Robotics A", ProductID: "prod-1", MaxSeats: maxSeats, Active: active,
	}
	uow.tx.products["prod-1"] = &models.Product{ID: "prod-1", Name: "Robotics", Type: models.ProductTypeCourse, Active: true}
}

func seedStudent(uow *fakeUow, id, username string) {
	uow.tx.students[id] = &models.Student{
		ID: id, FirstName: "Ana", LastName: "Gomez", Username: username, GuardianID: "gua-1", Active: true,
	}
}

func seedEnrollment(uow *fakeUow, id, commissionID, studentID string, state models.EnrollmentState) {
	uow.tx.enrollments[id] = &models.Enrollment{
		ID: id, CommissionID: commissionID, StudentID: studentID, State: state,
	}
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	return appErr.Code
}

func TestEnrollRejectsWhenFull(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, true)
	for i := 0; i < 15; i++ {
		id := string(rune('a' + i))
		seedStudent(uow, "stu-"+id, "filler."+id)
		seedEnrollment(uow, "enr-"+id, "com-1", "stu-"+id, models.EnrollmentStateConfirmed)
	}
	seedStudent(uow, "stu-new", "new.kid")

	svc := NewEnrollmentService(uow, nil, nil, nil)
	_, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-new"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInsufficientCapacity.Code, appErr.Code)
	assert.Equal(t, 0, appErr.Details["available"])
	assert.Equal(t, 1, appErr.Details["requested"])
	assert.Len(t, uow.tx.enrollments, 15)
}

func TestEnrollBatchWithinCapacity(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, true)
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		seedStudent(uow, "stu-"+id, "filler."+id)
		seedEnrollment(uow, "enr-"+id, "com-1", "stu-"+id, models.EnrollmentStateConfirmed)
	}
	seedStudent(uow, "stu-x", "x.kid")
	seedStudent(uow, "stu-y", "y.kid")

	svc := NewEnrollmentService(uow, nil, nil, nil)
	created, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-x", "stu-y"},
		InitialState: string(models.EnrollmentStateConfirmed),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, models.EnrollmentStateConfirmed, created[0].State)
	assert.Equal(t, "Robotics A", created[0].CommissionName)
	assert.Len(t, uow.tx.enrollments, 7)
}

func TestEnrollRejectsDuplicateActive(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	seedEnrollment(uow, "enr-1", "com-1", "stu-1", models.EnrollmentStateConfirmed)

	svc := NewEnrollmentService(uow, nil, nil, nil)
	_, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-1"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErr.Code)
	assert.Equal(t, []string{"stu-1"}, appErr.Details["student_ids"])
}

func TestEnrollAfterCancellationCreatesNewRow(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	seedEnrollment(uow, "enr-1", "com-1", "stu-1", models.EnrollmentStateCancelled)

	svc := NewEnrollmentService(uow, nil, nil, nil)
	created, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-1"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.NotEqual(t, "enr-1", created[0].ID)
	assert.Len(t, uow.tx.enrollments, 2)
}

func TestEnrollUnlimitedCommission(t *testing.T) {
	uow := newFakeUow()
	seedCommission(uow, "com-1", nil, true)
	seedStudent(uow, "stu-1", "ana.gomez")

	svc := NewEnrollmentService(uow, nil, nil, nil)
	created, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatePending, created[0].State)
}

func TestEnrollInactiveCommission(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, false)
	seedStudent(uow, "stu-1", "ana.gomez")

	svc := NewEnrollmentService(uow, nil, nil, nil)
	_, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCommissionInactive.Code, appErrCode(t, err))
	assert.Empty(t, uow.tx.enrollments)
}

func TestEnrollMissingStudents(t *testing.T) {
	uow := newFakeUow()
	seedCommission(uow, "com-1", nil, true)
	seedStudent(uow, "stu-1", "ana.gomez")

	svc := NewEnrollmentService(uow, nil, nil, nil)
	_, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-1", "stu-404"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, []string{"stu-404"}, appErr.Details["student_ids"])
	assert.Empty(t, uow.tx.enrollments)
}

func TestEnrollEmptyStudentList(t *testing.T) {
	uow := newFakeUow()
	svc := NewEnrollmentService(uow, nil, nil, nil)
	_, err := svc.Enroll(context.Background(), EnrollRequest{CommissionID: "com-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrCode(t, err))
}

func TestUpdateStateCancelledIsTerminal(t *testing.T) {
	uow := newFakeUow()
	seedCommission(uow, "com-1", nil, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	seedEnrollment(uow, "enr-1", "com-1", "stu-1", models.EnrollmentStateCancelled)

	svc := NewEnrollmentService(uow, nil, nil, nil)
	err := svc.UpdateState(context.Background(), "enr-1", UpdateEnrollmentStateRequest{
		State: string(models.EnrollmentStateConfirmed),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrCode(t, err))
}

func TestUpdateStateConfirm(t *testing.T) {
	uow := newFakeUow()
	seedCommission(uow, "com-1", nil, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	seedEnrollment(uow, "enr-1", "com-1", "stu-1", models.EnrollmentStatePending)

	svc := NewEnrollmentService(uow, nil, nil, nil)
	require.NoError(t, svc.UpdateState(context.Background(), "enr-1", UpdateEnrollmentStateRequest{
		State: string(models.EnrollmentStateConfirmed),
	}))
	assert.Equal(t, models.EnrollmentStateConfirmed, uow.tx.enrollments["enr-1"].State)
}

func TestExportRoster(t *testing.T) {
	uow := newFakeUow()
	seedCommission(uow, "com-1", nil, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	seedEnrollment(uow, "enr-1", "com-1", "stu-1", models.EnrollmentStateConfirmed)

	svc := NewEnrollmentService(uow, nil, nil, nil)
	csv, err := svc.ExportRoster(context.Background(), "com-1")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(csv), "ana.gomez"))
	assert.True(t, strings.HasPrefix(string(csv), "student,username,state,enrolled_at,notes"))
}

func TestEnrollRejectsRepeatedStudentIDs(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	svc := NewEnrollmentService(uow, nil, nil, nil)

	_, err := svc.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-1", "stu-1"},
	})
	require.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
	assert.Empty(t, uow.tx.enrollments)
}

func TestEnrollRefreshesCommissionOccupancy(t *testing.T) {
	uow := newFakeUow()
	seats := 20
	seedCommission(uow, "com-1", &seats, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	cache := newFakeCache()
	cacheSvc := NewCacheService(cache, nil, time.Minute, nil, true)
	commissions := NewCommissionService(uow, cacheSvc, time.Minute, nil, nil)
	enrollments := NewEnrollmentService(uow, cacheSvc, nil, nil)

	before, err := commissions.Get(context.Background(), "com-1")
	require.NoError(t, err)
	require.Equal(t, 0, before.OccupiedSeats)
	require.NotEmpty(t, cache.entries)

	_, err = enrollments.Enroll(context.Background(), EnrollRequest{
		CommissionID: "com-1",
		StudentIDs:   []string{"stu-1"},
	})
	require.NoError(t, err)

	after, err := commissions.Get(context.Background(), "com-1")
	require.NoError(t, err)
	assert.Equal(t, 1, after.OccupiedSeats)
}

func TestEnrollmentStateChangeInvalidatesCommissionCache(t *testing.T) {
	uow := newFakeUow()
	seats := 20
	seedCommission(uow, "com-1", &seats, true)
	seedStudent(uow, "stu-1", "ana.gomez")
	seedEnrollment(uow, "enr-1", "com-1", "stu-1", models.EnrollmentStateConfirmed)
	cache := newFakeCache()
	cacheSvc := NewCacheService(cache, nil, time.Minute, nil, true)
	commissions := NewCommissionService(uow, cacheSvc, time.Minute, nil, nil)
	enrollments := NewEnrollmentService(uow, cacheSvc, nil, nil)

	_, err := commissions.Get(context.Background(), "com-1")
	require.NoError(t, err)
	require.NotEmpty(t, cache.entries)

	err = enrollments.UpdateState(context.Background(), "enr-1", UpdateEnrollmentStateRequest{State: "CANCELLED"})
	require.NoError(t, err)
	assert.Empty(t, cache.entries)

	after, err := commissions.Get(context.Background(), "com-1")
	require.NoError(t, err)
	assert.Equal(t, 0, after.OccupiedSeats)
}
