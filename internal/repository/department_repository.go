package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

var (
	ErrDuplicateDepartment = errors.New("department with this name already exists")
	ErrDepartmentInUse     = errors.New("department still has teachers assigned")
)

// DepartmentRepository handles department data access.
type DepartmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository creates a new DepartmentRepository.
func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// GetByID retrieves a department by ID.
func (r *DepartmentRepository) GetByID(ctx context.Context, id int) (*model.Department, error) {
	d := &model.Department{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List retrieves all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]model.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// Create inserts a new department.
func (r *DepartmentRepository) Create(ctx context.Context, d *model.Department) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO departments (name) VALUES ($1) RETURNING id, created_at`,
		d.Name,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDepartment
		}
		return err
	}
	return nil
}

// Update renames a department.
func (r *DepartmentRepository) Update(ctx context.Context, d *model.Department) error {
	_, err := r.pool.Exec(ctx, `UPDATE departments SET name = $1 WHERE id = $2`, d.Name, d.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDepartment
		}
		return err
	}
	return nil
}

// Delete removes a department; fails while teachers still reference it.
func (r *DepartmentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrDepartmentInUse
		}
		return err
	}
	return nil
}
