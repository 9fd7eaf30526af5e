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

const commissionDetailColumns = `c.id, c.name, c.product_id, c.house_id, c.teacher_id, c.max_seats,
        c.schedule, c.starts_on, c.ends_on, c.active, c.created_at, c.updated_at,
        p.name AS product_name, h.name AS house_name,
        CASE WHEN t.id IS NULL THEN NULL ELSE t.first_name || ' ' || t.last_name END AS teacher_name,
        (SELECT COUNT(*) FROM enrollments e WHERE e.commission_id = c.id AND e.state <> 'CANCELLED') AS occupied_seats`

const commissionDetailJoins = `FROM commissions c
        JOIN products p ON p.id = c.product_id
        LEFT JOIN houses h ON h.id = c.house_id
        LEFT JOIN teachers t ON t.id = c.teacher_id`

// CommissionRepository handles persistence of commissions.
type CommissionRepository struct {
	exec sqlx.ExtContext
}

// NewCommissionRepository constructs the repository over a pooled
// connection or a transaction.
func NewCommissionRepository(exec sqlx.ExtContext) *CommissionRepository {
	return &CommissionRepository{exec: exec}
}

// FindByID returns a commission by its ID.
func (r *CommissionRepository) FindByID(ctx context.Context, id string) (*models.Commission, error) {
	const query = `SELECT id, name, product_id, house_id, teacher_id, max_seats, schedule, starts_on, ends_on, active, created_at, updated_at
        FROM commissions WHERE id = $1`
	var commission models.Commission
	if err := sqlx.GetContext(ctx, r.exec, &commission, query, id); err != nil {
		return nil, err
	}
	return &commission, nil
}

// LockByID loads the commission row FOR UPDATE so competing enrollment
// transactions for the same commission serialize.
func (r *CommissionRepository) LockByID(ctx context.Context, id string) (*models.Commission, error) {
	const query = `SELECT id, name, product_id, house_id, teacher_id, max_seats, schedule, starts_on, ends_on, active, created_at, updated_at
        FROM commissions WHERE id = $1 FOR UPDATE`
	var commission models.Commission
	if err := sqlx.GetContext(ctx, r.exec, &commission, query, id); err != nil {
		return nil, err
	}
	return &commission, nil
}

// FindDetailByID returns a commission with display fields and derived
// occupancy.
func (r *CommissionRepository) FindDetailByID(ctx context.Context, id string) (*models.CommissionDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1", commissionDetailColumns, commissionDetailJoins)
	var detail models.CommissionDetail
	if err := sqlx.GetContext(ctx, r.exec, &detail, query, id); err != nil {
		return nil, err
	}
	fillAvailableSeats(&detail)
	return &detail, nil
}

// List returns commissions filtered by the provided criteria.
func (r *CommissionRepository) List(ctx context.Context, filter models.CommissionFilter) ([]models.CommissionDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.ProductID != "" {
		conditions = append(conditions, fmt.Sprintf("c.product_id = $%d", len(args)+1))
		args = append(args, filter.ProductID)
	}
	if filter.HouseID != "" {
		conditions = append(conditions, fmt.Sprintf("c.house_id = $%d", len(args)+1))
		args = append(args, filter.HouseID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("c.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"name":       "c.name",
		"starts_on":  "c.starts_on",
		"created_at": "c.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "c.created_at"
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
		commissionDetailColumns, commissionDetailJoins, clause, orderBy, order, size, offset)

	var commissions []models.CommissionDetail
	if err := sqlx.SelectContext(ctx, r.exec, &commissions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list commissions: %w", err)
	}
	for i := range commissions {
		fillAvailableSeats(&commissions[i])
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", commissionDetailJoins, clause)
	var total int
	if err := sqlx.GetContext(ctx, r.exec, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count commissions: %w", err)
	}
	return commissions, total, nil
}

// Create persists a new commission.
func (r *CommissionRepository) Create(ctx context.Context, commission *models.Commission) error {
	if commission.ID == "" {
		commission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if commission.CreatedAt.IsZero() {
		commission.CreatedAt = now
	}
	commission.UpdatedAt = now
	const query = `INSERT INTO commissions (id, name, product_id, house_id, teacher_id, max_seats, schedule, starts_on, ends_on, active, created_at, updated_at)
        VALUES (:id, :name, :product_id, :house_id, :teacher_id, :max_seats, :schedule, :starts_on, :ends_on, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec, query, commission); err != nil {
		return fmt.Errorf("create commission: %w", err)
	}
	return nil
}

// Update writes every mutable commission column.
func (r *CommissionRepository) Update(ctx context.Context, commission *models.Commission) error {
	commission.UpdatedAt = time.Now().UTC()
	const query = `UPDATE commissions SET name = :name, house_id = :house_id, teacher_id = :teacher_id,
        max_seats = :max_seats, schedule = :schedule, starts_on = :starts_on, ends_on = :ends_on,
        active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec, query, commission); err != nil {
		return fmt.Errorf("update commission: %w", err)
	}
	return nil
}

// Deactivate performs the soft delete; enrollments keep referencing
// the row.
func (r *CommissionRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE commissions SET active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.exec.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate commission: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func fillAvailableSeats(detail *models.CommissionDetail) {
	if detail.MaxSeats == nil {
		return
	}
	available := *detail.MaxSeats - detail.OccupiedSeats
	detail.AvailableSeats = &available
}
