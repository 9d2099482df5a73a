package model

import "time"

// AlertType classifies generated alerts.
type AlertType string

const (
	AlertAbsence AlertType = "absence"
)

// Alert is a persisted notification generated from attendance activity.
// Alerts are produced asynchronously by the alert worker.
type Alert struct {
	ID        int       `json:"id"`
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	TeacherID *int      `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}
