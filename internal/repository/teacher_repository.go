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

const teacherColumns = `id, first_name, last_name, username, email, phone, expertise,
        password_hash, temporary_password, must_change_password, active, created_at, updated_at`

// TeacherRepository handles persistence of teachers.
type TeacherRepository struct {
	exec sqlx.ExtContext
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(exec sqlx.ExtContext) *TeacherRepository {
	return &TeacherRepository{exec: exec}
}

// FindByID loads one teacher.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, r.exec, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByEmail matches case-insensitively; used to reject duplicate
// provisioning for the same instructor.
func (r *TeacherRepository) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE LOWER(email) = LOWER($1)", teacherColumns)
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, r.exec, &teacher, query, email); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// List returns teachers matching the filter with a total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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
		"email":      "email",
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

	query := fmt.Sprintf("SELECT %s FROM teachers%s ORDER BY %s %s LIMIT %d OFFSET %d",
		teacherColumns, clause, orderBy, order, size, offset)

	var teachers []models.Teacher
	if err := sqlx.SelectContext(ctx, r.exec, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, r.exec, &total, "SELECT COUNT(*) FROM teachers"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// Create inserts a teacher; username collisions map to ErrDuplicate.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	const query = `INSERT INTO teachers (id, first_name, last_name, username, email, phone, expertise,
                password_hash, temporary_password, must_change_password, active, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :username, :email, :phone, :expertise,
                :password_hash, :temporary_password, :must_change_password, :active, :created_at, :updated_at)`
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	if _, err := sqlx.NamedExecContext(ctx, r.exec, query, teacher); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("teacher username %s: %w", teacher.Username, ErrDuplicate)
		}
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}
