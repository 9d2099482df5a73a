package event

import "time"

// Type identifies what kind of mutation an event announces.
type Type string

const (
	// AttendanceUpdated is published after a committed attendance write.
	// Its data carries the affected date; subscribers re-fetch rather than
	// trusting the payload, so a lost event degrades to a stale view only.
	AttendanceUpdated Type = "attendance_updated"
	TeacherUpdated    Type = "teacher_updated"
	DepartmentUpdated Type = "department_updated"

	// InvalidateAll tells subscribers to discard every cached derived
	// view. Published after a successful snapshot restore.
	InvalidateAll Type = "invalidate_all"
)

// Event is the envelope published on the bus and fanned out to viewers.
// Events are ephemeral: published once, never persisted or replayed.
type Event struct {
	Type      Type        `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// New builds an event stamped with the current time.
func New(t Type, data interface{}) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// AttendanceData is the payload of an AttendanceUpdated event.
type AttendanceData struct {
	Date string `json:"date"`
}
