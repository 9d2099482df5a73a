package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

// SnapshotVersion is stamped into exported snapshot metadata.
const SnapshotVersion = "1.0"

// Snapshot validation failure codes.
const (
	SnapshotMissingMetadata    = "MISSING_METADATA"
	SnapshotMissingVersionInfo = "MISSING_VERSION_INFO"
	SnapshotMissingCollection  = "MISSING_COLLECTION"
)

// requiredCollections are the data keys a snapshot must carry as arrays
// (possibly empty). alerts is optional: older exports predate it.
var requiredCollections = []string{"users", "departments", "teachers", "attendanceRecords", "holidays"}

// SnapshotValidationError describes why an import document was rejected
// before any storage access.
type SnapshotValidationError struct {
	Code       string
	Collection string
}

func (e *SnapshotValidationError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("invalid snapshot: %s (%s)", e.Code, e.Collection)
	}
	return "invalid snapshot: " + e.Code
}

// snapshotStore reads and atomically replaces all managed tables.
type snapshotStore interface {
	ExportAll(ctx context.Context) (*model.SnapshotData, error)
	RestoreAll(ctx context.Context, data *model.SnapshotData) error
}

// BackupService produces snapshot exports and applies validated restores.
type BackupService struct {
	store       snapshotStore
	bus         publisher
	schoolLabel string
	log         zerolog.Logger
}

// NewBackupService creates a new BackupService.
func NewBackupService(store snapshotStore, bus publisher, schoolLabel string, log zerolog.Logger) *BackupService {
	return &BackupService{
		store:       store,
		bus:         bus,
		schoolLabel: schoolLabel,
		log:         log.With().Str("component", "backup_service").Logger(),
	}
}

// Export reads every managed table and wraps it in snapshot metadata.
func (s *BackupService) Export(ctx context.Context, description string) (*model.BackupSnapshot, error) {
	data, err := s.store.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	return &model.BackupSnapshot{
		Metadata: model.SnapshotMetadata{
			Version:     SnapshotVersion,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
			SchoolLabel: s.schoolLabel,
			Description: description,
		},
		Data: *data,
	}, nil
}

// ValidateSnapshot shape-checks an untrusted import document. The check
// is structural only: metadata/data presence, version info, and every
// required collection present as an array. Referential integrity (e.g.
// attendance rows pointing at restored teachers) is not verified.
func ValidateSnapshot(doc []byte) error {
	var top struct {
		Metadata json.RawMessage `json:"metadata"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(doc, &top); err != nil {
		return &SnapshotValidationError{Code: SnapshotMissingMetadata}
	}
	if len(top.Metadata) == 0 || string(top.Metadata) == "null" ||
		len(top.Data) == 0 || string(top.Data) == "null" {
		return &SnapshotValidationError{Code: SnapshotMissingMetadata}
	}

	var meta struct {
		Version   *string `json:"version"`
		CreatedAt *string `json:"createdAt"`
	}
	if err := json.Unmarshal(top.Metadata, &meta); err != nil {
		return &SnapshotValidationError{Code: SnapshotMissingMetadata}
	}
	if meta.Version == nil || *meta.Version == "" || meta.CreatedAt == nil || *meta.CreatedAt == "" {
		return &SnapshotValidationError{Code: SnapshotMissingVersionInfo}
	}

	var collections map[string]json.RawMessage
	if err := json.Unmarshal(top.Data, &collections); err != nil {
		return &SnapshotValidationError{Code: SnapshotMissingMetadata}
	}
	for _, name := range requiredCollections {
		raw, ok := collections[name]
		if !ok || !isJSONArray(raw) {
			return &SnapshotValidationError{Code: SnapshotMissingCollection, Collection: name}
		}
	}
	return nil
}

// Import validates doc and, only then, replaces the entire database with
// its contents in one transaction. On success an invalidate_all event
// tells every subscriber to drop cached derived state. On failure the
// database is untouched and the error propagates unwrapped.
func (s *BackupService) Import(ctx context.Context, doc []byte) error {
	if err := ValidateSnapshot(doc); err != nil {
		return err
	}

	var snap model.BackupSnapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return &SnapshotValidationError{Code: SnapshotMissingMetadata}
	}

	if err := s.store.RestoreAll(ctx, &snap.Data); err != nil {
		s.log.Error().Err(err).Msg("snapshot restore failed, rolled back")
		return err
	}

	s.log.Info().
		Str("version", snap.Metadata.Version).
		Str("created_at", snap.Metadata.CreatedAt).
		Int("teachers", len(snap.Data.Teachers)).
		Int("attendance_records", len(snap.Data.AttendanceRecords)).
		Msg("snapshot restored")

	s.bus.Publish(event.New(event.InvalidateAll, nil))
	return nil
}

// isJSONArray reports whether raw's first significant byte opens an array.
func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
