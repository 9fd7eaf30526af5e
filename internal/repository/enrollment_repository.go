package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

const enrollmentDetailColumns = `e.id, e.commission_id, e.student_id, e.state, e.notes, e.enrolled_at,
        s.first_name AS student_first_name, s.last_name AS student_last_name, s.username AS student_username,
        c.name AS commission_name`

const enrollmentDetailJoins = `FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN commissions c ON c.id = e.commission_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	exec sqlx.ExtContext
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(exec sqlx.ExtContext) *EnrollmentRepository {
	return &EnrollmentRepository{exec: exec}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.CommissionID != "" {
		conditions = append(conditions, fmt.Sprintf("e.commission_id = $%d", len(args)+1))
		args = append(args, filter.CommissionID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("e.state = $%d", len(args)+1))
		args = append(args, filter.State)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"student_name": "s.last_name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.enrolled_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s%s ORDER BY %s %s LIMIT %d OFFSET %d",
		enrollmentDetailColumns, enrollmentDetailJoins, clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := sqlx.SelectContext(ctx, r.exec, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", enrollmentDetailJoins, clause)
	var total int
	if err := sqlx.GetContext(ctx, r.exec, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID loads one enrollment.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, commission_id, student_id, state, notes, enrolled_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, r.exec, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CountActive counts non-cancelled enrollments for a commission. Run
// inside the same transaction as the insert it guards.
func (r *EnrollmentRepository) CountActive(ctx context.Context, commissionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE commission_id = $1 AND state <> $2`
	var count int
	if err := sqlx.GetContext(ctx, r.exec, &count, query, commissionID, models.EnrollmentStateCancelled); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// FindActiveStudentIDs returns the subset of studentIDs that already
// hold a non-cancelled enrollment in the commission.
func (r *EnrollmentRepository) FindActiveStudentIDs(ctx context.Context, commissionID string, studentIDs []string) ([]string, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT student_id FROM enrollments
        WHERE commission_id = ? AND state <> ? AND student_id IN (?)`,
		commissionID, models.EnrollmentStateCancelled, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("build duplicate enrollment query: %w", err)
	}
	query = r.exec.Rebind(query)
	var ids []string
	if err := sqlx.SelectContext(ctx, r.exec, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("find duplicate enrollments: %w", err)
	}
	return ids, nil
}

// CreateBatch inserts one row per enrollment. Callers wrap it in a
// transaction so the batch persists or vanishes as a whole; the
// partial unique index on non-cancelled (commission_id, student_id)
// surfaces as ErrDuplicate.
func (r *EnrollmentRepository) CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error {
	const query = `INSERT INTO enrollments (id, commission_id, student_id, state, notes, enrolled_at)
        VALUES (:id, :commission_id, :student_id, :state, :notes, :enrolled_at)`
	now := time.Now().UTC()
	for _, enrollment := range enrollments {
		if enrollment.ID == "" {
			enrollment.ID = uuid.NewString()
		}
		if enrollment.State == "" {
			enrollment.State = models.EnrollmentStatePending
		}
		if enrollment.EnrolledAt.IsZero() {
			enrollment.EnrolledAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, r.exec, query, enrollment); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("enrollment for student %s: %w", enrollment.StudentID, ErrDuplicate)
			}
			return fmt.Errorf("create enrollment: %w", err)
		}
	}
	return nil
}

// UpdateState transitions an enrollment and optionally replaces notes.
func (r *EnrollmentRepository) UpdateState(ctx context.Context, id string, state models.EnrollmentState, notes *string) error {
	const query = `UPDATE enrollments SET state = $2, notes = COALESCE($3, notes) WHERE id = $1`
	res, err := r.exec.ExecContext(ctx, query, id, state, notes)
	if err != nil {
		return fmt.Errorf("update enrollment state: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the enrollment row for good. State transitions use
// UpdateState; this is only for the explicit remove-student operation.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	res, err := r.exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Roster returns every non-cancelled enrollment of a commission with
// student display fields, ordered for export.
func (r *EnrollmentRepository) Roster(ctx context.Context, commissionID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE e.commission_id = $1 AND e.state <> $2
        ORDER BY s.last_name, s.first_name`, enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := sqlx.SelectContext(ctx, r.exec, &enrollments, query, commissionID, models.EnrollmentStateCancelled); err != nil {
		return nil, fmt.Errorf("load commission roster: %w", err)
	}
	return enrollments, nil
}
