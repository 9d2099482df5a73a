package service

import (
	"errors"
	"time"

	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

// Transition engine errors.
var (
	ErrInvalidStatus   = errors.New("status is not one of present, absent, half_day, short_leave")
	ErrInvalidCategory = errors.New("absence category is not one of official_leave, private_leave, sick_leave")
)

// TransitionRequest is the typed form of one status submission after
// boundary decoding, before any storage access.
type TransitionRequest struct {
	Status   string
	Category string
	// CheckOutTime is honored for short_leave only.
	CheckOutTime *string
}

// ComputedFields is the persisted outcome of a valid transition.
type ComputedFields struct {
	Status         model.AttendanceStatus
	AbsentCategory *model.AbsenceCategory
	CheckInTime    *string
	CheckOutTime   *string
}

// ComputeTransition decides what fields a status submission persists.
// Pure: same inputs and clock always yield the same result, so callers
// can validate before touching storage.
//
// Rules: present sets check-in to now and clears the category; absent
// clears check-in/out and keeps the category; half_day sets check-in;
// short_leave sets check-in and keeps an optional check-out. A category
// supplied with a non-absent status is silently dropped — it only means
// something for absences.
func ComputeTransition(req TransitionRequest, now time.Time) (ComputedFields, error) {
	status := model.AttendanceStatus(req.Status)

	switch status {
	case model.StatusPresent, model.StatusAbsent, model.StatusHalfDay, model.StatusShortLeave:
	default:
		return ComputedFields{}, ErrInvalidStatus
	}

	clock := now.Format(model.ClockFormat)
	fields := ComputedFields{Status: status}

	switch status {
	case model.StatusAbsent:
		if req.Category != "" {
			cat, err := normalizeCategory(req.Category)
			if err != nil {
				return ComputedFields{}, err
			}
			fields.AbsentCategory = &cat
		}
	case model.StatusPresent, model.StatusHalfDay:
		fields.CheckInTime = &clock
	case model.StatusShortLeave:
		fields.CheckInTime = &clock
		fields.CheckOutTime = req.CheckOutTime
	}

	return fields, nil
}

// normalizeCategory validates a category and maps the legacy
// irregular_leave spelling onto private_leave.
func normalizeCategory(raw string) (model.AbsenceCategory, error) {
	switch model.AbsenceCategory(raw) {
	case model.CategoryOfficialLeave, model.CategoryPrivateLeave, model.CategorySickLeave:
		return model.AbsenceCategory(raw), nil
	case model.CategoryIrregularLeave:
		return model.CategoryPrivateLeave, nil
	default:
		return "", ErrInvalidCategory
	}
}
