package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

// AlertRepository handles alert data access.
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// ListRecent retrieves the newest alerts, newest first.
func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, message, teacher_id, created_at
		 FROM alerts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.TeacherID, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// BulkInsert persists a batch of alerts in one statement via UNNEST.
// Used by the alert worker to drain its Redis queue efficiently.
func (r *AlertRepository) BulkInsert(ctx context.Context, alerts []model.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	n := len(alerts)
	types := make([]string, 0, n)
	messages := make([]string, 0, n)
	teacherIDs := make([]*int, 0, n)
	createdAts := make([]time.Time, 0, n)

	for _, a := range alerts {
		types = append(types, string(a.Type))
		messages = append(messages, a.Message)
		teacherIDs = append(teacherIDs, a.TeacherID)
		createdAts = append(createdAts, a.CreatedAt)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO alerts (type, message, teacher_id, created_at)
		 SELECT u.type, u.message, u.teacher_id, u.created_at
		 FROM UNNEST($1::text[], $2::text[], $3::int[], $4::timestamptz[])
		   AS u (type, message, teacher_id, created_at)`,
		types, messages, teacherIDs, createdAts,
	)
	return err
}
