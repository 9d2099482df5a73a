package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

func validSnapshotDoc(t *testing.T, mutate func(m map[string]interface{})) []byte {
	t.Helper()
	doc := map[string]interface{}{
		"metadata": map[string]interface{}{
			"version":     "1.0",
			"createdAt":   "2026-08-20T07:00:00Z",
			"schoolLabel": "Pakaya Secondary School",
			"description": "nightly",
		},
		"data": map[string]interface{}{
			"users":             []interface{}{},
			"departments":       []interface{}{},
			"teachers":          []interface{}{},
			"attendanceRecords": []interface{}{},
			"holidays":          []interface{}{},
			"alerts":            []interface{}{},
		},
	}
	if mutate != nil {
		mutate(doc)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal snapshot doc: %v", err)
	}
	return raw
}

func TestValidateSnapshot(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(m map[string]interface{})
		wantCode       string
		wantCollection string
	}{
		{
			name: "valid with empty collections",
		},
		{
			name:     "missing metadata",
			mutate:   func(m map[string]interface{}) { delete(m, "metadata") },
			wantCode: SnapshotMissingMetadata,
		},
		{
			name:     "missing data",
			mutate:   func(m map[string]interface{}) { delete(m, "data") },
			wantCode: SnapshotMissingMetadata,
		},
		{
			name: "missing version",
			mutate: func(m map[string]interface{}) {
				delete(m["metadata"].(map[string]interface{}), "version")
			},
			wantCode: SnapshotMissingVersionInfo,
		},
		{
			name: "blank createdAt",
			mutate: func(m map[string]interface{}) {
				m["metadata"].(map[string]interface{})["createdAt"] = ""
			},
			wantCode: SnapshotMissingVersionInfo,
		},
		{
			name: "missing holidays collection",
			mutate: func(m map[string]interface{}) {
				delete(m["data"].(map[string]interface{}), "holidays")
			},
			wantCode:       SnapshotMissingCollection,
			wantCollection: "holidays",
		},
		{
			name: "teachers is not a sequence",
			mutate: func(m map[string]interface{}) {
				m["data"].(map[string]interface{})["teachers"] = "oops"
			},
			wantCode:       SnapshotMissingCollection,
			wantCollection: "teachers",
		},
		{
			name: "alerts may be absent",
			mutate: func(m map[string]interface{}) {
				delete(m["data"].(map[string]interface{}), "alerts")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshot(validSnapshotDoc(t, tt.mutate))
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateSnapshot() = %v, want nil", err)
				}
				return
			}
			var verr *SnapshotValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateSnapshot() = %v, want SnapshotValidationError", err)
			}
			if verr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", verr.Code, tt.wantCode)
			}
			if verr.Collection != tt.wantCollection {
				t.Errorf("collection = %q, want %q", verr.Collection, tt.wantCollection)
			}
		})
	}
}

func TestValidateSnapshotGarbageInput(t *testing.T) {
	for _, doc := range []string{"", "not json", "[]", "null"} {
		if err := ValidateSnapshot([]byte(doc)); err == nil {
			t.Errorf("ValidateSnapshot(%q) accepted garbage", doc)
		}
	}
}

// fakeSnapshotStore lets tests observe and fail the restore path.
type fakeSnapshotStore struct {
	restored   *model.SnapshotData
	restoreErr error
}

func (f *fakeSnapshotStore) ExportAll(context.Context) (*model.SnapshotData, error) {
	// Mirrors the real repository: collections are empty, never nil, so
	// exports always serialize as arrays.
	return &model.SnapshotData{
		Users:             []model.SnapshotUser{},
		Departments:       []model.SnapshotDepartment{},
		Teachers:          []model.SnapshotTeacher{},
		AttendanceRecords: []model.SnapshotAttendance{},
		Holidays:          []model.SnapshotHoliday{},
		Alerts:            []model.SnapshotAlert{},
	}, nil
}

func (f *fakeSnapshotStore) RestoreAll(_ context.Context, data *model.SnapshotData) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.restored = data
	return nil
}

func TestImportRejectsInvalidDocumentBeforeStorage(t *testing.T) {
	store := &fakeSnapshotStore{}
	bus := &fakeBus{}
	svc := NewBackupService(store, bus, "Pakaya", zerolog.Nop())

	doc := validSnapshotDoc(t, func(m map[string]interface{}) {
		delete(m["data"].(map[string]interface{}), "users")
	})
	err := svc.Import(context.Background(), doc)

	var verr *SnapshotValidationError
	if !errors.As(err, &verr) || verr.Collection != "users" {
		t.Fatalf("Import() = %v, want MISSING_COLLECTION(users)", err)
	}
	if store.restored != nil {
		t.Error("invalid document reached the restore path")
	}
	if len(bus.events) != 0 {
		t.Error("rejected import published an event")
	}
}

func TestImportPublishesInvalidateAllOnSuccess(t *testing.T) {
	store := &fakeSnapshotStore{}
	bus := &fakeBus{}
	svc := NewBackupService(store, bus, "Pakaya", zerolog.Nop())

	if err := svc.Import(context.Background(), validSnapshotDoc(t, nil)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if store.restored == nil {
		t.Fatal("restore was not invoked")
	}
	if len(bus.events) != 1 || bus.events[0].Type != event.InvalidateAll {
		t.Fatalf("events = %v, want single invalidate_all", bus.events)
	}
}

func TestImportStorageFailurePropagatesWithoutEvent(t *testing.T) {
	injected := errors.New("disk full")
	store := &fakeSnapshotStore{restoreErr: injected}
	bus := &fakeBus{}
	svc := NewBackupService(store, bus, "Pakaya", zerolog.Nop())

	err := svc.Import(context.Background(), validSnapshotDoc(t, nil))
	if !errors.Is(err, injected) {
		t.Fatalf("Import() = %v, want the injected storage error unwrapped", err)
	}
	if len(bus.events) != 0 {
		t.Error("failed restore published an event")
	}
}

func TestExportStampsMetadata(t *testing.T) {
	store := &fakeSnapshotStore{}
	svc := NewBackupService(store, &fakeBus{}, "Pakaya Secondary School", zerolog.Nop())

	snap, err := svc.Export(context.Background(), "manual")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snap.Metadata.Version != SnapshotVersion {
		t.Errorf("version = %q, want %q", snap.Metadata.Version, SnapshotVersion)
	}
	if snap.Metadata.SchoolLabel != "Pakaya Secondary School" {
		t.Errorf("school label = %q", snap.Metadata.SchoolLabel)
	}
	if snap.Metadata.CreatedAt == "" {
		t.Error("createdAt not stamped")
	}

	// An exported document must pass its own validator.
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}
	if err := ValidateSnapshot(raw); err != nil {
		t.Errorf("exported snapshot failed validation: %v", err)
	}
}
