package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/config"
	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
)

// DashboardService serves derived attendance statistics. Results are
// cached in Redis and invalidated by bus events, so connected dashboards
// re-fetching after an event never pay the aggregate query twice.
type DashboardService struct {
	attendance *repository.AttendanceRepository
	teachers   *repository.TeacherRepository
	holidays   *repository.HolidayRepository
	alerts     *repository.AlertRepository
	rdb        *redis.Client
	ttl        time.Duration
	log        zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	attendance *repository.AttendanceRepository,
	teachers *repository.TeacherRepository,
	holidays *repository.HolidayRepository,
	alerts *repository.AlertRepository,
	rdb *redis.Client,
	ttl time.Duration,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		attendance: attendance,
		teachers:   teachers,
		holidays:   holidays,
		alerts:     alerts,
		rdb:        rdb,
		ttl:        ttl,
		log:        log.With().Str("component", "dashboard_service").Logger(),
	}
}

// DailyStats returns one day's status counts plus the unmarked teacher
// count, served from cache when possible.
func (s *DashboardService) DailyStats(ctx context.Context, date string) (*model.DailyStats, error) {
	key := config.CacheKey.DailyStatsKey(date)

	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		stats := &model.DailyStats{}
		if err := json.Unmarshal([]byte(cached), stats); err == nil {
			return stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("stats cache read failed")
	}

	counts, err := s.attendance.CountByStatus(ctx, date)
	if err != nil {
		return nil, err
	}
	total, err := s.teachers.Count(ctx)
	if err != nil {
		return nil, err
	}
	isHoliday, err := s.holidays.IsHoliday(ctx, date)
	if err != nil {
		return nil, err
	}

	stats := &model.DailyStats{
		Date:       date,
		Present:    counts[model.StatusPresent],
		Absent:     counts[model.StatusAbsent],
		HalfDay:    counts[model.StatusHalfDay],
		ShortLeave: counts[model.StatusShortLeave],
		Total:      total,
		IsHoliday:  isHoliday,
	}
	marked := stats.Present + stats.Absent + stats.HalfDay + stats.ShortLeave
	if total > marked {
		stats.Unmarked = total - marked
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}

	return stats, nil
}

// RecentAlerts lists the newest generated alerts.
func (s *DashboardService) RecentAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	alerts, err := s.alerts.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return alerts, nil
}

// StartCacheInvalidator subscribes to the bus and drops cached stats
// whenever attendance changes. Runs until ctx is cancelled.
func (s *DashboardService) StartCacheInvalidator(ctx context.Context, bus *event.Bus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	s.log.Info().Msg("stats cache invalidator started")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			switch ev.Type {
			case event.AttendanceUpdated:
				if data, ok := ev.Data.(event.AttendanceData); ok && data.Date != "" {
					s.invalidateDate(ctx, data.Date)
					continue
				}
				s.invalidateAll(ctx)
			case event.InvalidateAll, event.TeacherUpdated:
				// Teacher roster changes shift the unmarked count too.
				s.invalidateAll(ctx)
			}
		}
	}
}

func (s *DashboardService) invalidateDate(ctx context.Context, date string) {
	if err := s.rdb.Del(ctx, config.CacheKey.DailyStatsKey(date)).Err(); err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("stats cache invalidation failed")
	}
}

func (s *DashboardService) invalidateAll(ctx context.Context) {
	iter := s.rdb.Scan(ctx, 0, config.CacheKey.DailyStatsPattern(), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", iter.Val()).Msg("stats cache invalidation failed")
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Msg("stats cache scan failed")
	}
}
