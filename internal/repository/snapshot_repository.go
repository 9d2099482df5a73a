package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

// timestampWire renders timestamptz columns in RFC3339 UTC for snapshot
// documents; Postgres parses the same form back on restore.
const timestampWire = `YYYY-MM-DD"T"HH24:MI:SS"Z"`

// SnapshotRepository reads and replaces the full set of managed tables.
// It is the only component allowed to touch every table at once; all
// regular mutation goes through the per-entity repositories.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// ExportAll reads every managed table into snapshot row form.
func (r *SnapshotRepository) ExportAll(ctx context.Context) (*model.SnapshotData, error) {
	data := &model.SnapshotData{
		Users:             []model.SnapshotUser{},
		Departments:       []model.SnapshotDepartment{},
		Teachers:          []model.SnapshotTeacher{},
		AttendanceRecords: []model.SnapshotAttendance{},
		Holidays:          []model.SnapshotHoliday{},
		Alerts:            []model.SnapshotAlert{},
	}

	if err := r.exportUsers(ctx, data); err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	if err := r.exportDepartments(ctx, data); err != nil {
		return nil, fmt.Errorf("export departments: %w", err)
	}
	if err := r.exportTeachers(ctx, data); err != nil {
		return nil, fmt.Errorf("export teachers: %w", err)
	}
	if err := r.exportAttendance(ctx, data); err != nil {
		return nil, fmt.Errorf("export attendance records: %w", err)
	}
	if err := r.exportHolidays(ctx, data); err != nil {
		return nil, fmt.Errorf("export holidays: %w", err)
	}
	if err := r.exportAlerts(ctx, data); err != nil {
		return nil, fmt.Errorf("export alerts: %w", err)
	}
	return data, nil
}

// RestoreAll replaces the contents of every managed table with the given
// snapshot data inside a single transaction. Any failure rolls the whole
// restore back: a partially replaced database is never observable.
func (r *SnapshotRepository) RestoreAll(ctx context.Context, data *model.SnapshotData) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	// Children before parents so FK constraints never fire mid-wipe.
	for _, table := range []string{"attendance_records", "alerts", "holidays", "teachers", "users", "departments"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := restoreDepartments(ctx, tx, data.Departments); err != nil {
		return fmt.Errorf("restore departments: %w", err)
	}
	if err := restoreUsers(ctx, tx, data.Users); err != nil {
		return fmt.Errorf("restore users: %w", err)
	}
	if err := restoreTeachers(ctx, tx, data.Teachers); err != nil {
		return fmt.Errorf("restore teachers: %w", err)
	}
	if err := restoreAttendance(ctx, tx, data.AttendanceRecords); err != nil {
		return fmt.Errorf("restore attendance records: %w", err)
	}
	if err := restoreHolidays(ctx, tx, data.Holidays); err != nil {
		return fmt.Errorf("restore holidays: %w", err)
	}
	if err := restoreAlerts(ctx, tx, data.Alerts); err != nil {
		return fmt.Errorf("restore alerts: %w", err)
	}

	// Snapshot rows carry their original ids; bump each serial past them.
	for _, table := range []string{"departments", "users", "teachers", "attendance_records", "holidays", "alerts"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
			table, table)
		if _, err := tx.Exec(ctx, query); err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// ─── Export helpers ─────────────────────────────────────────────────

func (r *SnapshotRepository) exportUsers(ctx context.Context, data *model.SnapshotData) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, name, role, password_hash,
		   to_char(created_at AT TIME ZONE 'UTC', '`+timestampWire+`')
		 FROM users ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u model.SnapshotUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return err
		}
		data.Users = append(data.Users, u)
	}
	return rows.Err()
}

func (r *SnapshotRepository) exportDepartments(ctx context.Context, data *model.SnapshotData) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, to_char(created_at AT TIME ZONE 'UTC', '`+timestampWire+`')
		 FROM departments ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d model.SnapshotDepartment
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return err
		}
		data.Departments = append(data.Departments, d)
	}
	return rows.Err()
}

func (r *SnapshotRepository) exportTeachers(ctx context.Context, data *model.SnapshotData) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, name, department_id, email, phone, portal_enabled, password_hash,
		   to_char(created_at AT TIME ZONE 'UTC', '`+timestampWire+`'),
		   to_char(updated_at AT TIME ZONE 'UTC', '`+timestampWire+`')
		 FROM teachers ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t model.SnapshotTeacher
		if err := rows.Scan(&t.ID, &t.TeacherID, &t.Name, &t.DepartmentID, &t.Email, &t.Phone,
			&t.PortalEnabled, &t.PasswordHash, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		data.Teachers = append(data.Teachers, t)
	}
	return rows.Err()
}

func (r *SnapshotRepository) exportAttendance(ctx context.Context, data *model.SnapshotData) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, to_char(date, 'YYYY-MM-DD'), status, absent_category,
		   check_in_time, check_out_time, recorded_by,
		   to_char(created_at AT TIME ZONE 'UTC', '`+timestampWire+`')
		 FROM attendance_records ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.SnapshotAttendance
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.Date, &a.Status, &a.AbsentCategory,
			&a.CheckInTime, &a.CheckOutTime, &a.RecordedBy, &a.CreatedAt); err != nil {
			return err
		}
		data.AttendanceRecords = append(data.AttendanceRecords, a)
	}
	return rows.Err()
}

func (r *SnapshotRepository) exportHolidays(ctx context.Context, data *model.SnapshotData) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, to_char(date, 'YYYY-MM-DD'), name FROM holidays ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var h model.SnapshotHoliday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return err
		}
		data.Holidays = append(data.Holidays, h)
	}
	return rows.Err()
}

func (r *SnapshotRepository) exportAlerts(ctx context.Context, data *model.SnapshotData) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, message, teacher_id,
		   to_char(created_at AT TIME ZONE 'UTC', '`+timestampWire+`')
		 FROM alerts ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.SnapshotAlert
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.TeacherID, &a.CreatedAt); err != nil {
			return err
		}
		data.Alerts = append(data.Alerts, a)
	}
	return rows.Err()
}

// ─── Restore helpers ────────────────────────────────────────────────

func restoreDepartments(ctx context.Context, tx pgx.Tx, rows []model.SnapshotDepartment) error {
	for _, d := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO departments (id, name, created_at) VALUES ($1, $2, $3::timestamptz)`,
			d.ID, d.Name, d.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func restoreUsers(ctx context.Context, tx pgx.Tx, rows []model.SnapshotUser) error {
	for _, u := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, username, name, role, password_hash, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6::timestamptz)`,
			u.ID, u.Username, u.Name, u.Role, u.PasswordHash, u.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func restoreTeachers(ctx context.Context, tx pgx.Tx, rows []model.SnapshotTeacher) error {
	for _, t := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO teachers
			   (id, teacher_id, name, department_id, email, phone, portal_enabled, password_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::timestamptz, $10::timestamptz)`,
			t.ID, t.TeacherID, t.Name, t.DepartmentID, t.Email, t.Phone,
			t.PortalEnabled, t.PasswordHash, t.CreatedAt, t.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func restoreAttendance(ctx context.Context, tx pgx.Tx, rows []model.SnapshotAttendance) error {
	for _, a := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO attendance_records
			   (id, teacher_id, date, status, absent_category, check_in_time, check_out_time, recorded_by, created_at)
			 VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9::timestamptz)`,
			a.ID, a.TeacherID, a.Date, a.Status, a.AbsentCategory,
			a.CheckInTime, a.CheckOutTime, a.RecordedBy, a.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func restoreHolidays(ctx context.Context, tx pgx.Tx, rows []model.SnapshotHoliday) error {
	for _, h := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO holidays (id, date, name) VALUES ($1, $2::date, $3)`,
			h.ID, h.Date, h.Name); err != nil {
			return err
		}
	}
	return nil
}

func restoreAlerts(ctx context.Context, tx pgx.Tx, rows []model.SnapshotAlert) error {
	for _, a := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO alerts (id, type, message, teacher_id, created_at)
			 VALUES ($1, $2, $3, $4, $5::timestamptz)`,
			a.ID, a.Type, a.Message, a.TeacherID, a.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}
