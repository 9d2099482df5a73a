package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

// fakeStore keeps records in memory keyed by (teacherID, date), mirroring
// the database uniqueness constraint.
type recKey struct {
	teacherID int
	date      string
}

type fakeStore struct {
	records map[recKey]*model.AttendanceRecord
	nextID  int
	failIDs map[int]error // internal teacher id -> injected upsert error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[recKey]*model.AttendanceRecord),
		failIDs: make(map[int]error),
	}
}

func (f *fakeStore) Upsert(_ context.Context, rec *model.AttendanceRecord) error {
	if err, ok := f.failIDs[rec.TeacherID]; ok {
		return err
	}
	k := recKey{rec.TeacherID, rec.Date}
	if existing, ok := f.records[k]; ok {
		// Full-field replace preserving identity and created_at.
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		f.records[k] = rec
		return nil
	}
	f.nextID++
	rec.ID = f.nextID
	rec.CreatedAt = time.Now()
	f.records[k] = rec
	return nil
}

func (f *fakeStore) GetByTeacherAndDate(_ context.Context, teacherID int, date string) (*model.AttendanceRecord, error) {
	rec, ok := f.records[recKey{teacherID, date}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return rec, nil
}

func (f *fakeStore) ListByDate(_ context.Context, date string) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for k, rec := range f.records {
		if k.date == date {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByTeacherBetween(_ context.Context, teacherID int, from, to string) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for k, rec := range f.records {
		if k.teacherID == teacherID && k.date >= from && k.date <= to {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type fakeTeachers struct {
	byCode map[string]*model.Teacher
}

func (f *fakeTeachers) GetByTeacherID(_ context.Context, code string) (*model.Teacher, error) {
	t, ok := f.byCode[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

type fakeBus struct {
	events []event.Event
}

func (f *fakeBus) Publish(ev event.Event) { f.events = append(f.events, ev) }

type fakeAlerts struct {
	enqueued int
}

func (f *fakeAlerts) EnqueueAbsence(_ context.Context, _ *model.Teacher, _ string, _ *model.AbsenceCategory) {
	f.enqueued++
}

func newTestService() (*AttendanceService, *fakeStore, *fakeBus, *fakeAlerts) {
	store := newFakeStore()
	teachers := &fakeTeachers{byCode: map[string]*model.Teacher{
		"T-001": {ID: 1, TeacherID: "T-001", Name: "Asha"},
		"T-002": {ID: 2, TeacherID: "T-002", Name: "Bilal"},
		"T-003": {ID: 3, TeacherID: "T-003", Name: "Chipo"},
	}}
	bus := &fakeBus{}
	alerts := &fakeAlerts{}
	svc := NewAttendanceService(store, teachers, bus, alerts, zerolog.Nop())
	return svc, store, bus, alerts
}

func TestRecordCreatesThenReplacesSameDay(t *testing.T) {
	svc, store, bus, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Record(ctx, model.RecordAttendanceRequest{
		TeacherID: "T-001", Date: "2026-08-20", Status: "present",
	}, "clerk")
	if err != nil {
		t.Fatalf("first Record: %v", err)
	}

	second, err := svc.Record(ctx, model.RecordAttendanceRequest{
		TeacherID: "T-001", Date: "2026-08-20", Status: "absent", AbsentCategory: "sick_leave",
	}, "clerk")
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}

	// Still exactly one record for the pair, same identity.
	if len(store.records) != 1 {
		t.Fatalf("record count = %d, want 1", len(store.records))
	}
	if second.ID != first.ID {
		t.Errorf("second submission created a new record: id %d vs %d", second.ID, first.ID)
	}
	if second.Status != model.StatusAbsent {
		t.Errorf("status = %q, want absent", second.Status)
	}
	if second.CheckInTime != nil {
		t.Errorf("check-in not cleared on absent: %v", *second.CheckInTime)
	}
	if second.AbsentCategory == nil || *second.AbsentCategory != model.CategorySickLeave {
		t.Errorf("category = %v, want sick_leave", second.AbsentCategory)
	}

	if len(bus.events) != 2 {
		t.Errorf("published %d events, want 2 (one per committed write)", len(bus.events))
	}
}

func TestRecordUnknownTeacher(t *testing.T) {
	svc, _, bus, _ := newTestService()

	_, err := svc.Record(context.Background(), model.RecordAttendanceRequest{
		TeacherID: "T-999", Date: "2026-08-20", Status: "present",
	}, "clerk")
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Fatalf("error = %v, want ErrTeacherNotFound", err)
	}
	if len(bus.events) != 0 {
		t.Errorf("rejected write reached the bus: %d events", len(bus.events))
	}
}

func TestRecordInvalidStatusNeverReachesStorage(t *testing.T) {
	svc, store, bus, _ := newTestService()

	_, err := svc.Record(context.Background(), model.RecordAttendanceRequest{
		TeacherID: "T-001", Date: "2026-08-20", Status: "bogus",
	}, "clerk")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("error = %v, want ErrInvalidStatus", err)
	}
	if len(store.records) != 0 {
		t.Error("invalid submission was persisted")
	}
	if len(bus.events) != 0 {
		t.Error("invalid submission published an event")
	}
}

func TestRecordAbsentEnqueuesAlert(t *testing.T) {
	svc, _, _, alerts := newTestService()

	if _, err := svc.Record(context.Background(), model.RecordAttendanceRequest{
		TeacherID: "T-001", Date: "2026-08-20", Status: "absent", AbsentCategory: "official_leave",
	}, "clerk"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if alerts.enqueued != 1 {
		t.Errorf("alerts enqueued = %d, want 1", alerts.enqueued)
	}
}

func TestApplyBulkBestEffort(t *testing.T) {
	svc, store, bus, _ := newTestService()

	result, err := svc.ApplyBulk(context.Background(), model.BulkApplyRequest{
		Date: "2026-08-20",
		Targets: []model.BulkTarget{
			{TeacherID: "T-001", Status: "present"},
			{TeacherID: "T-002", Status: "definitely_not_a_status"},
			{TeacherID: "T-003", Status: "half_day"},
		},
	}, "clerk")
	if err != nil {
		t.Fatalf("ApplyBulk: %v", err)
	}

	if len(result.Succeeded) != 2 || result.Succeeded[0] != "T-001" || result.Succeeded[1] != "T-003" {
		t.Errorf("Succeeded = %v, want [T-001 T-003]", result.Succeeded)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Failed = %v, want one entry", result.Failed)
	}
	if result.Failed[0].TeacherID != "T-002" || result.Failed[0].Reason != "INVALID_STATUS" {
		t.Errorf("failure = %+v, want T-002/INVALID_STATUS", result.Failed[0])
	}

	// Successes committed despite the failure.
	if len(store.records) != 2 {
		t.Errorf("committed records = %d, want 2", len(store.records))
	}
	// Exactly one aggregate event for the whole batch.
	if len(bus.events) != 1 {
		t.Errorf("published %d events, want exactly 1", len(bus.events))
	}
	if len(bus.events) == 1 && bus.events[0].Type != event.AttendanceUpdated {
		t.Errorf("event type = %q, want attendance_updated", bus.events[0].Type)
	}
}

func TestGetHistoryReturnsOnlyRangeRecords(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	for _, date := range []string{"2026-08-18", "2026-08-19", "2026-08-21"} {
		if _, err := svc.Record(ctx, model.RecordAttendanceRequest{
			TeacherID: "T-001", Date: date, Status: "present",
		}, "clerk"); err != nil {
			t.Fatalf("Record %s: %v", date, err)
		}
	}
	// A second teacher's record must not leak into T-001's history.
	if _, err := svc.Record(ctx, model.RecordAttendanceRequest{
		TeacherID: "T-002", Date: "2026-08-19", Status: "present",
	}, "clerk"); err != nil {
		t.Fatalf("Record T-002: %v", err)
	}

	records, err := svc.GetHistory(ctx, "T-001", "2026-08-18", "2026-08-19")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("history length = %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.TeacherID != 1 {
			t.Errorf("history contains record for teacher row %d", rec.TeacherID)
		}
	}

	if _, err := svc.GetHistory(ctx, "T-999", "2026-08-18", "2026-08-19"); !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("unknown staff code error = %v, want ErrTeacherNotFound", err)
	}
}

func TestApplyBulkStorageFailureIsReportedPerTarget(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.failIDs[2] = errors.New("connection reset")

	result, err := svc.ApplyBulk(context.Background(), model.BulkApplyRequest{
		Date: "2026-08-20",
		Targets: []model.BulkTarget{
			{TeacherID: "T-001", Status: "present"},
			{TeacherID: "T-002", Status: "present"},
		},
	}, "clerk")
	if err != nil {
		t.Fatalf("ApplyBulk: %v", err)
	}

	if len(result.Succeeded) != 1 || result.Succeeded[0] != "T-001" {
		t.Errorf("Succeeded = %v, want [T-001]", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].Reason != "STORAGE_ERROR" {
		t.Errorf("Failed = %v, want T-002/STORAGE_ERROR", result.Failed)
	}
}

func TestApplyBulkAllFailedPublishesNothing(t *testing.T) {
	svc, _, bus, _ := newTestService()

	result, err := svc.ApplyBulk(context.Background(), model.BulkApplyRequest{
		Date: "2026-08-20",
		Targets: []model.BulkTarget{
			{TeacherID: "T-001", Status: "nope"},
			{TeacherID: "T-404", Status: "present"},
		},
	}, "clerk")
	if err != nil {
		t.Fatalf("ApplyBulk: %v", err)
	}
	if len(result.Succeeded) != 0 || len(result.Failed) != 2 {
		t.Errorf("result = %+v, want 0 succeeded / 2 failed", result)
	}
	if len(bus.events) != 0 {
		t.Errorf("batch with no committed writes published %d events", len(bus.events))
	}
}
