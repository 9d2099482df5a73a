package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

var ErrDuplicateTeacherID = errors.New("teacher with this staff code already exists")

// TeacherRepository handles teacher data access.
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

// GetByID retrieves a teacher by internal ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, name, department_id, email, phone, portal_enabled, password_hash, created_at, updated_at
		 FROM teachers WHERE id = $1`, id,
	).Scan(&t.ID, &t.TeacherID, &t.Name, &t.DepartmentID, &t.Email, &t.Phone, &t.PortalEnabled, &t.PasswordHash, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByTeacherID retrieves a teacher by their external staff code.
func (r *TeacherRepository) GetByTeacherID(ctx context.Context, teacherID string) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, name, department_id, email, phone, portal_enabled, password_hash, created_at, updated_at
		 FROM teachers WHERE teacher_id = $1`, teacherID,
	).Scan(&t.ID, &t.TeacherID, &t.Name, &t.DepartmentID, &t.Email, &t.Phone, &t.PortalEnabled, &t.PasswordHash, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListPaginated retrieves teachers with pagination and optional department filter.
func (r *TeacherRepository) ListPaginated(ctx context.Context, departmentID *int, limit, offset int) ([]model.Teacher, int, error) {
	countQuery := `SELECT COUNT(*) FROM teachers`
	var countArgs []interface{}
	if departmentID != nil {
		countQuery += ` WHERE department_id = $1`
		countArgs = append(countArgs, *departmentID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, teacher_id, name, department_id, email, phone, portal_enabled, password_hash, created_at, updated_at FROM teachers`
	var args []interface{}
	argIdx := 1

	if departmentID != nil {
		query += ` WHERE department_id = $1`
		args = append(args, *departmentID)
		argIdx++
	}

	query += ` ORDER BY name LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var teachers []model.Teacher
	for rows.Next() {
		var t model.Teacher
		if err := rows.Scan(&t.ID, &t.TeacherID, &t.Name, &t.DepartmentID, &t.Email, &t.Phone, &t.PortalEnabled, &t.PasswordHash, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		teachers = append(teachers, t)
	}
	return teachers, total, rows.Err()
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, t *model.Teacher) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teachers (teacher_id, name, department_id, email, phone, portal_enabled, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		t.TeacherID, t.Name, t.DepartmentID, t.Email, t.Phone, t.PortalEnabled, t.PasswordHash,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTeacherID
		}
		return err
	}
	return nil
}

// Update modifies a teacher's info. A nil passwordHash keeps the stored hash.
func (r *TeacherRepository) Update(ctx context.Context, t *model.Teacher) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE teachers SET teacher_id = $1, name = $2, department_id = $3, email = $4, phone = $5,
		   portal_enabled = $6, password_hash = COALESCE($7, password_hash), updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8`,
		t.TeacherID, t.Name, t.DepartmentID, t.Email, t.Phone, t.PortalEnabled, t.PasswordHash, t.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTeacherID
		}
		return err
	}
	return nil
}

// Delete removes a teacher by internal ID.
func (r *TeacherRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	return err
}

// Count returns the number of registered teachers.
func (r *TeacherRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teachers`).Scan(&n)
	return n, err
}
