package model

import "time"

// Department groups teachers for filtering and reporting.
type Department struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentRequest is the payload for creating or renaming a department.
type DepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
