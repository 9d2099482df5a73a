package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

// ErrTeacherNotFound is returned when a submission references a staff
// code that does not exist.
var ErrTeacherNotFound = errors.New("teacher not found")

// attendanceStore is the slice of AttendanceRepository the service needs.
type attendanceStore interface {
	Upsert(ctx context.Context, rec *model.AttendanceRecord) error
	GetByTeacherAndDate(ctx context.Context, teacherID int, date string) (*model.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]model.AttendanceRecord, error)
	ListByTeacherBetween(ctx context.Context, teacherID int, from, to string) ([]model.AttendanceRecord, error)
}

// teacherLookup resolves external staff codes to teacher rows.
type teacherLookup interface {
	GetByTeacherID(ctx context.Context, teacherID string) (*model.Teacher, error)
}

// publisher is the bus surface used after committed writes.
type publisher interface {
	Publish(ev event.Event)
}

// AlertSink receives absence notifications for asynchronous persistence.
type AlertSink interface {
	EnqueueAbsence(ctx context.Context, teacher *model.Teacher, date string, category *model.AbsenceCategory)
}

// AttendanceService owns single and bulk status writes. Every committed
// mutation is followed by exactly one attendance_updated event; rejected
// input never reaches the bus.
type AttendanceService struct {
	store    attendanceStore
	teachers teacherLookup
	bus      publisher
	alerts   AlertSink
	log      zerolog.Logger
	now      func() time.Time
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(store attendanceStore, teachers teacherLookup, bus publisher, alerts AlertSink, log zerolog.Logger) *AttendanceService {
	return &AttendanceService{
		store:    store,
		teachers: teachers,
		bus:      bus,
		alerts:   alerts,
		log:      log.With().Str("component", "attendance_service").Logger(),
		now:      time.Now,
	}
}

// Record validates and commits one status submission, then publishes one
// attendance_updated event carrying the affected date. Submitting again
// for the same teacher/date replaces the existing record's fields in
// full; id and created_at survive.
func (s *AttendanceService) Record(ctx context.Context, req model.RecordAttendanceRequest, recordedBy string) (*model.AttendanceRecord, error) {
	rec, err := s.apply(ctx, req.Date, model.BulkTarget{
		TeacherID:      req.TeacherID,
		Status:         req.Status,
		AbsentCategory: req.AbsentCategory,
		CheckOutTime:   req.CheckOutTime,
	}, recordedBy)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(event.New(event.AttendanceUpdated, event.AttendanceData{Date: req.Date}))
	return rec, nil
}

// ApplyBulk commits a best-effort batch for one date: each target is
// validated and written independently, failures are collected per target
// and never abort the rest. Exactly one aggregate attendance_updated
// event is published for the whole batch, and only when at least one
// target actually committed.
func (s *AttendanceService) ApplyBulk(ctx context.Context, req model.BulkApplyRequest, recordedBy string) (*model.BulkResult, error) {
	result := &model.BulkResult{
		Succeeded: []string{},
		Failed:    []model.BulkFailure{},
	}

	for _, target := range req.Targets {
		if _, err := s.apply(ctx, req.Date, target, recordedBy); err != nil {
			result.Failed = append(result.Failed, model.BulkFailure{
				TeacherID: target.TeacherID,
				Reason:    failureReason(err),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, target.TeacherID)
	}

	if len(result.Succeeded) > 0 {
		s.bus.Publish(event.New(event.AttendanceUpdated, event.AttendanceData{Date: req.Date}))
	}

	s.log.Info().
		Str("date", req.Date).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Str("recorded_by", recordedBy).
		Msg("bulk attendance applied")

	return result, nil
}

// GetForDate lists all records for one date.
func (s *AttendanceService) GetForDate(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	records, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return records, nil
}

// GetForTeacherAndDate fetches the single record for a teacher/date pair.
func (s *AttendanceService) GetForTeacherAndDate(ctx context.Context, staffCode, date string) (*model.AttendanceRecord, error) {
	teacher, err := s.teachers.GetByTeacherID(ctx, staffCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return s.store.GetByTeacherAndDate(ctx, teacher.ID, date)
}

// GetHistory lists a teacher's records for an inclusive date range,
// oldest first.
func (s *AttendanceService) GetHistory(ctx context.Context, staffCode, from, to string) ([]model.AttendanceRecord, error) {
	teacher, err := s.teachers.GetByTeacherID(ctx, staffCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	records, err := s.store.ListByTeacherBetween(ctx, teacher.ID, from, to)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return records, nil
}

// apply validates one target and commits its upsert. No event is
// published here; callers decide the event granularity.
func (s *AttendanceService) apply(ctx context.Context, date string, target model.BulkTarget, recordedBy string) (*model.AttendanceRecord, error) {
	fields, err := ComputeTransition(TransitionRequest{
		Status:       target.Status,
		Category:     target.AbsentCategory,
		CheckOutTime: target.CheckOutTime,
	}, s.now())
	if err != nil {
		return nil, err
	}

	teacher, err := s.teachers.GetByTeacherID(ctx, target.TeacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	rec := &model.AttendanceRecord{
		TeacherID:      teacher.ID,
		Date:           date,
		Status:         fields.Status,
		AbsentCategory: fields.AbsentCategory,
		CheckInTime:    fields.CheckInTime,
		CheckOutTime:   fields.CheckOutTime,
		RecordedBy:     recordedBy,
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		s.log.Error().Err(err).
			Str("teacher_id", target.TeacherID).
			Str("date", date).
			Msg("attendance upsert failed")
		return nil, err
	}

	if fields.Status == model.StatusAbsent && s.alerts != nil {
		s.alerts.EnqueueAbsence(ctx, teacher, date, fields.AbsentCategory)
	}

	return rec, nil
}

// failureReason maps an error to the short code reported in BulkResult.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return "INVALID_STATUS"
	case errors.Is(err, ErrInvalidCategory):
		return "INVALID_CATEGORY"
	case errors.Is(err, ErrTeacherNotFound):
		return "TEACHER_NOT_FOUND"
	default:
		return "STORAGE_ERROR"
	}
}
