package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

// ErrDuplicate is returned when an insert trips a uniqueness
// constraint. It is the storage-level backstop behind the
// application-level duplicate checks.
var ErrDuplicate = errors.New("duplicate row")

// CommissionStore persists commissions.
type CommissionStore interface {
	FindByID(ctx context.Context, id string) (*models.Commission, error)
	// LockByID loads the commission acquiring a row lock. Must run
	// inside Within so concurrent enrollments serialize per commission.
	LockByID(ctx context.Context, id string) (*models.Commission, error)
	FindDetailByID(ctx context.Context, id string) (*models.CommissionDetail, error)
	List(ctx context.Context, filter models.CommissionFilter) ([]models.CommissionDetail, int, error)
	Create(ctx context.Context, commission *models.Commission) error
	Update(ctx context.Context, commission *models.Commission) error
	Deactivate(ctx context.Context, id string) error
}

// EnrollmentStore persists enrollments.
type EnrollmentStore interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	// CountActive counts non-cancelled enrollments for a commission.
	CountActive(ctx context.Context, commissionID string) (int, error)
	// FindActiveStudentIDs returns the subset of studentIDs holding a
	// non-cancelled enrollment in the commission.
	FindActiveStudentIDs(ctx context.Context, commissionID string, studentIDs []string) ([]string, error)
	CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error
	UpdateState(ctx context.Context, id string, state models.EnrollmentState, notes *string) error
	Delete(ctx context.Context, id string) error
	Roster(ctx context.Context, commissionID string) ([]models.EnrollmentDetail, error)
}

// StudentStore persists students.
type StudentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	Create(ctx context.Context, student *models.Student) error
}

// GuardianStore persists guardians.
type GuardianStore interface {
	FindByID(ctx context.Context, id string) (*models.Guardian, error)
	FindByEmail(ctx context.Context, email string) (*models.Guardian, error)
	FindByDNI(ctx context.Context, dni string) (*models.Guardian, error)
	Create(ctx context.Context, guardian *models.Guardian) error
}

// TeacherStore persists teachers.
type TeacherStore interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	Create(ctx context.Context, teacher *models.Teacher) error
}

// IdentityStore answers questions about the single username namespace
// shared by students, guardians and teachers.
type IdentityStore interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	ListTemporaryCredentials(ctx context.Context) ([]models.TemporaryCredential, error)
}

// ProductStore reads products.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// HouseStore reads houses.
type HouseStore interface {
	FindByID(ctx context.Context, id string) (*models.House, error)
}

// Tx exposes every store bound to one database handle.
type Tx interface {
	Commissions() CommissionStore
	Enrollments() EnrollmentStore
	Students() StudentStore
	Guardians() GuardianStore
	Teachers() TeacherStore
	Identities() IdentityStore
	Products() ProductStore
	Houses() HouseStore
}

// UnitOfWork hands out stores bound to the connection pool (View) or
// to a single transaction (Within). Everything executed inside Within
// commits or rolls back as one unit.
type UnitOfWork interface {
	View() Tx
	Within(ctx context.Context, fn func(tx Tx) error) error
}

// SQLUnitOfWork implements UnitOfWork over sqlx/Postgres.
type SQLUnitOfWork struct {
	db *sqlx.DB
}

// NewSQLUnitOfWork constructs the unit of work.
func NewSQLUnitOfWork(db *sqlx.DB) *SQLUnitOfWork {
	return &SQLUnitOfWork{db: db}
}

// View returns stores bound to the pooled connection.
func (u *SQLUnitOfWork) View() Tx {
	return newSQLTx(u.db)
}

// Within runs fn inside one database transaction.
func (u *SQLUnitOfWork) Within(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(newSQLTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type sqlTx struct {
	commissions *CommissionRepository
	enrollments *EnrollmentRepository
	students    *StudentRepository
	guardians   *GuardianRepository
	teachers    *TeacherRepository
	identities  *IdentityRepository
	products    *ProductRepository
	houses      *HouseRepository
}

func newSQLTx(exec sqlx.ExtContext) *sqlTx {
	return &sqlTx{
		commissions: NewCommissionRepository(exec),
		enrollments: NewEnrollmentRepository(exec),
		students:    NewStudentRepository(exec),
		guardians:   NewGuardianRepository(exec),
		teachers:    NewTeacherRepository(exec),
		identities:  NewIdentityRepository(exec),
		products:    NewProductRepository(exec),
		houses:      NewHouseRepository(exec),
	}
}

func (t *sqlTx) Commissions() CommissionStore { return t.commissions }
func (t *sqlTx) Enrollments() EnrollmentStore { return t.enrollments }
func (t *sqlTx) Students() StudentStore       { return t.students }
func (t *sqlTx) Guardians() GuardianStore     { return t.guardians }
func (t *sqlTx) Teachers() TeacherStore       { return t.teachers }
func (t *sqlTx) Identities() IdentityStore    { return t.identities }
func (t *sqlTx) Products() ProductStore       { return t.products }
func (t *sqlTx) Houses() HouseStore           { return t.houses }

// isUniqueViolation reports whether err is a Postgres 23505.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
