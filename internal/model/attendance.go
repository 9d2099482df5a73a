package model

import "time"

// DateFormat is the wire format for attendance dates.
const DateFormat = "2006-01-02"

// ClockFormat is the wire format for check-in/check-out times.
const ClockFormat = "15:04"

// AttendanceStatus enumerates the recordable daily statuses.
type AttendanceStatus string

const (
	StatusPresent    AttendanceStatus = "present"
	StatusAbsent     AttendanceStatus = "absent"
	StatusHalfDay    AttendanceStatus = "half_day"
	StatusShortLeave AttendanceStatus = "short_leave"
)

// AbsenceCategory sub-classifies an absent status.
type AbsenceCategory string

const (
	CategoryOfficialLeave AbsenceCategory = "official_leave"
	CategoryPrivateLeave  AbsenceCategory = "private_leave"
	CategorySickLeave     AbsenceCategory = "sick_leave"

	// CategoryIrregularLeave is a legacy spelling still sent by older
	// clients; it is normalized to private_leave on write.
	CategoryIrregularLeave AbsenceCategory = "irregular_leave"
)

// AttendanceRecord is one teacher's attendance for one date.
// At most one record exists per (teacher_id, date).
type AttendanceRecord struct {
	ID             int               `json:"id"`
	TeacherID      int               `json:"teacher_id"`
	Date           string            `json:"date"`
	Status         AttendanceStatus  `json:"status"`
	AbsentCategory *AbsenceCategory  `json:"absent_category"`
	CheckInTime    *string           `json:"check_in_time"`
	CheckOutTime   *string           `json:"check_out_time"`
	RecordedBy     string            `json:"recorded_by"`
	CreatedAt      time.Time         `json:"created_at"`
}

// RecordAttendanceRequest is the payload for a single status submission.
// Status and category are deliberately not constrained by binding tags:
// the transition engine owns that validation so bad values surface as
// INVALID_STATUS / INVALID_CATEGORY rather than a generic binding error.
type RecordAttendanceRequest struct {
	TeacherID      string  `json:"teacher_id" binding:"required,min=1,max=40"`
	Date           string  `json:"date" binding:"required,datetime=2006-01-02"`
	Status         string  `json:"status" binding:"required"`
	AbsentCategory string  `json:"absent_category" binding:"omitempty,max=40"`
	CheckOutTime   *string `json:"check_out_time" binding:"omitempty,datetime=15:04"`
}

// BulkTarget is one teacher entry inside a bulk submission.
type BulkTarget struct {
	TeacherID      string  `json:"teacher_id" binding:"required,min=1,max=40"`
	Status         string  `json:"status" binding:"required"`
	AbsentCategory string  `json:"absent_category" binding:"omitempty,max=40"`
	CheckOutTime   *string `json:"check_out_time" binding:"omitempty,datetime=15:04"`
}

// BulkApplyRequest applies statuses to many teachers for one date.
type BulkApplyRequest struct {
	Date    string       `json:"date" binding:"required,datetime=2006-01-02"`
	Targets []BulkTarget `json:"targets" binding:"required,min=1,max=500,dive"`
}

// BulkFailure reports one target that could not be applied.
type BulkFailure struct {
	TeacherID string `json:"teacher_id"`
	Reason    string `json:"reason"`
}

// BulkResult summarizes a best-effort batch: successes are committed even
// when other targets fail.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// DailyStats aggregates one day's attendance for the dashboard.
type DailyStats struct {
	Date       string `json:"date"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	HalfDay    int    `json:"half_day"`
	ShortLeave int    `json:"short_leave"`
	Unmarked   int    `json:"unmarked"`
	Total      int    `json:"total"`
	IsHoliday  bool   `json:"is_holiday"`
}
