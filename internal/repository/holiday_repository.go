package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

var ErrDuplicateHoliday = errors.New("holiday already declared for this date")

// HolidayRepository handles holiday data access.
type HolidayRepository struct {
	pool *pgxpool.Pool
}

// NewHolidayRepository creates a new HolidayRepository.
func NewHolidayRepository(pool *pgxpool.Pool) *HolidayRepository {
	return &HolidayRepository{pool: pool}
}

// List retrieves all holidays ordered by date.
func (r *HolidayRepository) List(ctx context.Context) ([]model.Holiday, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, to_char(date, 'YYYY-MM-DD'), name FROM holidays ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []model.Holiday
	for rows.Next() {
		var h model.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// Create declares a holiday.
func (r *HolidayRepository) Create(ctx context.Context, h *model.Holiday) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO holidays (date, name) VALUES ($1::date, $2) RETURNING id`,
		h.Date, h.Name,
	).Scan(&h.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateHoliday
		}
		return err
	}
	return nil
}

// Delete removes a holiday by ID.
func (r *HolidayRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	return err
}

// IsHoliday reports whether a date is a declared holiday.
func (r *HolidayRepository) IsHoliday(ctx context.Context, date string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM holidays WHERE date = $1::date)`, date,
	).Scan(&exists)
	return exists, err
}
