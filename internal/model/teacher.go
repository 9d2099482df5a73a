package model

import "time"

// Teacher is a staff member whose daily attendance is tracked.
// TeacherID is the external-facing identifier (staff code); ID is internal.
type Teacher struct {
	ID            int       `json:"id"`
	TeacherID     string    `json:"teacher_id"`
	Name          string    `json:"name"`
	DepartmentID  int       `json:"department_id"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone"`
	PortalEnabled bool      `json:"portal_enabled"`
	PasswordHash  *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateTeacherRequest is the payload for registering a teacher.
type CreateTeacherRequest struct {
	TeacherID     string  `json:"teacher_id" binding:"required,min=1,max=40"`
	Name          string  `json:"name" binding:"required,min=2,max=100"`
	DepartmentID  int     `json:"department_id" binding:"required"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	PortalEnabled bool    `json:"portal_enabled"`
	Password      string  `json:"password" binding:"omitempty,min=6,max=128"`
}

// UpdateTeacherRequest is the payload for updating an existing teacher.
type UpdateTeacherRequest struct {
	TeacherID     string  `json:"teacher_id" binding:"required,min=1,max=40"`
	Name          string  `json:"name" binding:"required,min=2,max=100"`
	DepartmentID  int     `json:"department_id" binding:"required"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	PortalEnabled bool    `json:"portal_enabled"`
	Password      string  `json:"password" binding:"omitempty,min=6,max=128"`
}
