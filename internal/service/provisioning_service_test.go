package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/pkg/credentials"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
)

func newProvisioningService(uow *fakeUow) *ProvisioningService {
	return NewProvisioningService(uow, credentials.NewGenerator(credentials.MinBcryptCost), nil, nil, nil)
}

func strPtr(s string) *string { return &s }

func TestCreateStudentsWithNewGuardian(t *testing.T) {
	uow := newFakeUow()
	svc := newProvisioningService(uow)

	result, err := svc.CreateStudents(context.Background(), ProvisionStudentsRequest{
		Guardian: GuardianInput{FirstName: "Laura", LastName: "Díaz", Email: strPtr("laura@example.com")},
		Students: []StudentInput{
			{FirstName: "Ana", LastName: "Gómez", Age: 10, SchoolLevel: "primary"},
			{FirstName: "Luis", LastName: "Gómez", Age: 8, SchoolLevel: "primary"},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.GuardianCreated)
	require.NotNil(t, result.Credentials.Guardian)
	assert.Equal(t, "laura.diaz", result.Credentials.Guardian.Username)
	require.Len(t, result.Students, 2)
	assert.Equal(t, "ana.gomez", result.Students[0].Username)
	assert.Equal(t, "luis.gomez", result.Students[1].Username)
	assert.True(t, result.Students[0].MustChangePassword)
	assert.Len(t, result.Credentials.Students, 2)

	stored := uow.tx.students[result.Students[0].ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, result.Credentials.Students[0].Password, stored.PasswordHash)
	require.NotNil(t, stored.TemporaryPassword)
	assert.Equal(t, result.Credentials.Students[0].Password, *stored.TemporaryPassword)
}

func TestCreateStudentsReusesGuardianByEmail(t *testing.T) {
	uow := newFakeUow()
	email := "laura@example.com"
	uow.tx.guardians["gua-1"] = &models.Guardian{
		ID: "gua-1", FirstName: "Laura", LastName: "Diaz", Username: "laura.diaz", Email: &email,
	}
	svc := newProvisioningService(uow)

	result, err := svc.CreateStudents(context.Background(), ProvisionStudentsRequest{
		Guardian: GuardianInput{FirstName: "Laura", LastName: "Díaz", Email: &email},
		Students: []StudentInput{{FirstName: "Ana", LastName: "Gómez", Age: 10, SchoolLevel: "primary"}},
	})
	require.NoError(t, err)

	assert.False(t, result.GuardianCreated)
	assert.Nil(t, result.Credentials.Guardian)
	assert.Equal(t, "gua-1", result.Guardian.ID)
	assert.Equal(t, "gua-1", result.Students[0].GuardianID)
	assert.Len(t, uow.tx.guardians, 1)
	assert.Len(t, result.Credentials.Students, 1)
}

func TestCreateStudentsCollidingNamesGetSuffixes(t *testing.T) {
	uow := newFakeUow()
	uow.tx.students["stu-0"] = &models.Student{ID: "stu-0", Username: "juan.perez"}
	uow.tx.teachers["tea-0"] = &models.Teacher{ID: "tea-0", Username: "juan.perez1"}
	svc := newProvisioningService(uow)

	result, err := svc.CreateStudents(context.Background(), ProvisionStudentsRequest{
		Guardian: GuardianInput{FirstName: "Marta", LastName: "Pérez"},
		Students: []StudentInput{{FirstName: "Juan", LastName: "Pérez", Age: 9, SchoolLevel: "primary"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "juan.perez2", result.Students[0].Username)
}

func TestCreateStudentAndEnrollConfirmed(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, true)
	svc := newProvisioningService(uow)

	result, err := svc.CreateStudentAndEnroll(context.Background(), ProvisionAndEnrollRequest{
		CommissionID: "com-1",
		Guardian:     GuardianInput{FirstName: "Laura", LastName: "Díaz"},
		Student:      StudentInput{FirstName: "Ana", LastName: "Gómez", Age: 10, SchoolLevel: "primary"},
	})
	require.NoError(t, err)

	require.NotNil(t, result.Enrollment)
	assert.Equal(t, models.EnrollmentStateConfirmed, result.Enrollment.State)
	assert.Equal(t, result.Students[0].ID, result.Enrollment.StudentID)
	assert.Len(t, uow.tx.enrollments, 1)
}

func TestCreateStudentAndEnrollInactiveCommissionLeavesNothing(t *testing.T) {
	uow := newFakeUow()
	seats := 15
	seedCommission(uow, "com-1", &seats, false)
	svc := newProvisioningService(uow)

	_, err := svc.CreateStudentAndEnroll(context.Background(), ProvisionAndEnrollRequest{
		CommissionID: "com-1",
		Guardian:     GuardianInput{FirstName: "Laura", LastName: "Díaz"},
		Student:      StudentInput{FirstName: "Ana", LastName: "Gómez", Age: 10, SchoolLevel: "primary"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCommissionInactive.Code, appErrCode(t, err))
	assert.Empty(t, uow.tx.students)
	assert.Empty(t, uow.tx.guardians)
	assert.Empty(t, uow.tx.enrollments)
}

func TestCreateStudentAndEnrollFullCommissionLeavesNothing(t *testing.T) {
	uow := newFakeUow()
	seats := 1
	seedCommission(uow, "com-1", &seats, true)
	seedStudent(uow, "stu-1", "someone.else")
	seedEnrollment(uow, "enr-1", "com-1", "stu-1", models.EnrollmentStateConfirmed)
	svc := newProvisioningService(uow)

	_, err := svc.CreateStudentAndEnroll(context.Background(), ProvisionAndEnrollRequest{
		CommissionID: "com-1",
		Guardian:     GuardianInput{FirstName: "Laura", LastName: "Díaz"},
		Student:      StudentInput{FirstName: "Ana", LastName: "Gómez", Age: 10, SchoolLevel: "primary"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInsufficientCapacity.Code, appErrCode(t, err))
	assert.Len(t, uow.tx.students, 1)
	assert.Empty(t, uow.tx.guardians)
}

func TestCreateStudentAndEnrollRefreshesCommissionOccupancy(t *testing.T) {
	uow := newFakeUow()
	seats := 5
	seedCommission(uow, "com-1", &seats, true)
	cache := newFakeCache()
	cacheSvc := NewCacheService(cache, nil, time.Minute, nil, true)
	commissions := NewCommissionService(uow, cacheSvc, time.Minute, nil, nil)
	svc := NewProvisioningService(uow, credentials.NewGenerator(credentials.MinBcryptCost), cacheSvc, nil, nil)

	before, err := commissions.Get(context.Background(), "com-1")
	require.NoError(t, err)
	require.Equal(t, 0, before.OccupiedSeats)

	_, err = svc.CreateStudentAndEnroll(context.Background(), ProvisionAndEnrollRequest{
		CommissionID: "com-1",
		Guardian:     GuardianInput{FirstName: "Laura", LastName: "Díaz"},
		Student:      StudentInput{FirstName: "Ana", LastName: "Gómez", Age: 10, SchoolLevel: "primary"},
	})
	require.NoError(t, err)

	after, err := commissions.Get(context.Background(), "com-1")
	require.NoError(t, err)
	assert.Equal(t, 1, after.OccupiedSeats)
}
