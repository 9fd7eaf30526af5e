package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

const studentColumns = `id, first_name, last_name, username, email, age, school_level, guardian_id,
        house_id, password_hash, temporary_password, must_change_password, active, created_at, updated_at`

// StudentRepository handles persistence of students.
type StudentRepository struct {
	exec sqlx.ExtContext
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(exec sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{exec: exec}
}

// FindByID loads one student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := sqlx.GetContext(ctx, r.exec, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIDs loads the students whose ids appear in the list. Missing
// ids simply do not appear in the result; callers diff the sets.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM students WHERE id IN (?)", studentColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build students query: %w", err)
	}
	query = r.exec.Rebind(query)
	var students []models.Student
	if err := sqlx.SelectContext(ctx, r.exec, &students, query, args...); err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	return students, nil
}

// List returns students matching the filter with a total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR username ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.GuardianID != "" {
		conditions = append(conditions, fmt.Sprintf("guardian_id = $%d", len(args)+1))
		args = append(args, filter.GuardianID)
	}
	if filter.HouseID != "" {
		conditions = append(conditions, fmt.Sprintf("house_id = $%d", len(args)+1))
		args = append(args, filter.HouseID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"last_name":  "last_name",
		"username":   "username",
		"created_at": "created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s FROM students%s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentColumns, clause, orderBy, order, size, offset)

	var students []models.Student
	if err := sqlx.SelectContext(ctx, r.exec, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, r.exec, &total, "SELECT COUNT(*) FROM students"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// Create inserts a student. A username collision surfaces as
// ErrDuplicate so the allocator can retry with the next suffix.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (id, first_name, last_name, username, email, age, school_level,
                guardian_id, house_id, password_hash, temporary_password, must_change_password, active,
                created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :username, :email, :age, :school_level,
                :guardian_id, :house_id, :password_hash, :temporary_password, :must_change_password, :active,
                :created_at, :updated_at)`
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	if _, err := sqlx.NamedExecContext(ctx, r.exec, query, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("student username %s: %w", student.Username, ErrDuplicate)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
