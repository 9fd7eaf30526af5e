package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "username", "email", "age",
		"school_level", "guardian_id", "house_id", "password_hash", "temporary_password",
		"must_change_password", "active", "created_at", "updated_at"})
}

func TestStudentRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentRows().
		AddRow("stu-1", "Ana", "Gomez", "ana.gomez", nil, 10, "primary", "gua-1", nil,
			"hash", nil, false, true, time.Now(), time.Now())
	mock.ExpectQuery("FROM students WHERE id IN").
		WithArgs("stu-1", "stu-404").
		WillReturnRows(rows)

	students, err := repo.FindByIDs(context.Background(), []string{"stu-1", "stu-404"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "ana.gomez", students[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDuplicateUsername(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "students_username_key"})

	student := &models.Student{
		FirstName:  "Ana",
		LastName:   "Gomez",
		Username:   "ana.gomez",
		GuardianID: "gua-1",
	}
	err := repo.Create(context.Background(), student)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListByGuardian(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentRows().
		AddRow("stu-1", "Ana", "Gomez", "ana.gomez", nil, 10, "primary", "gua-1", nil,
			"hash", nil, false, true, time.Now(), time.Now())
	mock.ExpectQuery("guardian_id = \\$1").
		WithArgs("gua-1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students").
		WithArgs("gua-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{GuardianID: "gua-1"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
