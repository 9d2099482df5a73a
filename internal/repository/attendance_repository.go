package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

// attendanceColumns is the shared SELECT list; date is rendered in wire
// form so records round-trip without timezone drift.
const attendanceColumns = `id, teacher_id, to_char(date, 'YYYY-MM-DD'), status, absent_category,
	 check_in_time, check_out_time, recorded_by, created_at`

// AttendanceRepository handles attendance record data access.
// The attendance_records table carries UNIQUE (teacher_id, date), so the
// at-most-one-record-per-day invariant is enforced by the database, not
// by application-level read-then-write.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Upsert writes the record for (teacher_id, date), creating it on first
// submission and fully replacing the mutable fields on later ones.
// id and created_at of an existing row are preserved; every mutable
// field comes from this request so two concurrent submissions can never
// leave a row merging fields from both. Fills rec.ID and rec.CreatedAt.
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attendance_records
		   (teacher_id, date, status, absent_category, check_in_time, check_out_time, recorded_by)
		 VALUES ($1, $2::date, $3, $4, $5, $6, $7)
		 ON CONFLICT (teacher_id, date) DO UPDATE SET
		   status = EXCLUDED.status,
		   absent_category = EXCLUDED.absent_category,
		   check_in_time = EXCLUDED.check_in_time,
		   check_out_time = EXCLUDED.check_out_time,
		   recorded_by = EXCLUDED.recorded_by
		 RETURNING id, created_at`,
		rec.TeacherID, rec.Date, rec.Status, rec.AbsentCategory,
		rec.CheckInTime, rec.CheckOutTime, rec.RecordedBy,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// GetByTeacherAndDate retrieves the single record for a teacher/date pair.
// Returns pgx.ErrNoRows when no status was recorded for that day.
func (r *AttendanceRepository) GetByTeacherAndDate(ctx context.Context, teacherID int, date string) (*model.AttendanceRecord, error) {
	rec := &model.AttendanceRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+`
		 FROM attendance_records WHERE teacher_id = $1 AND date = $2::date`,
		teacherID, date,
	).Scan(&rec.ID, &rec.TeacherID, &rec.Date, &rec.Status, &rec.AbsentCategory,
		&rec.CheckInTime, &rec.CheckOutTime, &rec.RecordedBy, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByDate retrieves every record for one date.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attendanceColumns+`
		 FROM attendance_records WHERE date = $1::date ORDER BY teacher_id`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.TeacherID, &rec.Date, &rec.Status, &rec.AbsentCategory,
			&rec.CheckInTime, &rec.CheckOutTime, &rec.RecordedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListByTeacherBetween retrieves a teacher's records for a date range
// (inclusive), oldest first.
func (r *AttendanceRepository) ListByTeacherBetween(ctx context.Context, teacherID int, from, to string) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attendanceColumns+`
		 FROM attendance_records
		 WHERE teacher_id = $1 AND date BETWEEN $2::date AND $3::date
		 ORDER BY date`,
		teacherID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.TeacherID, &rec.Date, &rec.Status, &rec.AbsentCategory,
			&rec.CheckInTime, &rec.CheckOutTime, &rec.RecordedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByStatus aggregates one date's records per status.
func (r *AttendanceRepository) CountByStatus(ctx context.Context, date string) (map[model.AttendanceStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM attendance_records WHERE date = $1::date GROUP BY status`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.AttendanceStatus]int)
	for rows.Next() {
		var status model.AttendanceStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
