package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ngmvpwd/pakaya-sub001/internal/model"
)

func strptr(s string) *string { return &s }

func TestComputeTransition(t *testing.T) {
	now := time.Date(2026, 8, 20, 7, 42, 0, 0, time.Local)
	clock := "07:42"
	checkOut := "11:30"

	sick := model.CategorySickLeave
	private := model.CategoryPrivateLeave

	tests := []struct {
		name    string
		req     TransitionRequest
		want    ComputedFields
		wantErr error
	}{
		{
			name: "present sets check-in",
			req:  TransitionRequest{Status: "present"},
			want: ComputedFields{Status: model.StatusPresent, CheckInTime: &clock},
		},
		{
			name: "present drops supplied category",
			req:  TransitionRequest{Status: "present", Category: "sick_leave"},
			want: ComputedFields{Status: model.StatusPresent, CheckInTime: &clock},
		},
		{
			name: "absent keeps category, clears times",
			req:  TransitionRequest{Status: "absent", Category: "sick_leave"},
			want: ComputedFields{Status: model.StatusAbsent, AbsentCategory: &sick},
		},
		{
			name: "absent without category",
			req:  TransitionRequest{Status: "absent"},
			want: ComputedFields{Status: model.StatusAbsent},
		},
		{
			name: "absent normalizes irregular_leave",
			req:  TransitionRequest{Status: "absent", Category: "irregular_leave"},
			want: ComputedFields{Status: model.StatusAbsent, AbsentCategory: &private},
		},
		{
			name: "half_day sets check-in only",
			req:  TransitionRequest{Status: "half_day", CheckOutTime: &checkOut},
			want: ComputedFields{Status: model.StatusHalfDay, CheckInTime: &clock},
		},
		{
			name: "short_leave keeps optional check-out",
			req:  TransitionRequest{Status: "short_leave", CheckOutTime: &checkOut},
			want: ComputedFields{Status: model.StatusShortLeave, CheckInTime: &clock, CheckOutTime: &checkOut},
		},
		{
			name: "short_leave without check-out",
			req:  TransitionRequest{Status: "short_leave"},
			want: ComputedFields{Status: model.StatusShortLeave, CheckInTime: &clock},
		},
		{
			name:    "unknown status",
			req:     TransitionRequest{Status: "bogus"},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "empty status",
			req:     TransitionRequest{Status: ""},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "unknown category",
			req:     TransitionRequest{Status: "absent", Category: "vacation"},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTransition(tt.req, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ComputeTransition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got.Status != tt.want.Status {
				t.Errorf("Status = %q, want %q", got.Status, tt.want.Status)
			}
			if !eqStrPtr((*string)(got.AbsentCategory), (*string)(tt.want.AbsentCategory)) {
				t.Errorf("AbsentCategory = %v, want %v", deref((*string)(got.AbsentCategory)), deref((*string)(tt.want.AbsentCategory)))
			}
			if !eqStrPtr(got.CheckInTime, tt.want.CheckInTime) {
				t.Errorf("CheckInTime = %v, want %v", deref(got.CheckInTime), deref(tt.want.CheckInTime))
			}
			if !eqStrPtr(got.CheckOutTime, tt.want.CheckOutTime) {
				t.Errorf("CheckOutTime = %v, want %v", deref(got.CheckOutTime), deref(tt.want.CheckOutTime))
			}
		})
	}
}

func TestComputeTransitionIsReproducible(t *testing.T) {
	now := time.Date(2026, 8, 20, 7, 42, 0, 0, time.Local)
	req := TransitionRequest{Status: "present"}

	a, err := ComputeTransition(req, now)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	b, err := ComputeTransition(req, now)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if *a.CheckInTime != *b.CheckInTime || a.Status != b.Status {
		t.Errorf("same inputs produced different outputs: %+v vs %+v", a, b)
	}
}

func eqStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
