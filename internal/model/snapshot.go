package model

// BackupSnapshot is the full point-in-time export of all managed tables.
// It is also the import format, treated as untrusted until validated.
type BackupSnapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Data     SnapshotData     `json:"data"`
}

// SnapshotMetadata describes when and where a snapshot was taken.
type SnapshotMetadata struct {
	Version     string `json:"version"`
	CreatedAt   string `json:"createdAt"`
	SchoolLabel string `json:"schoolLabel"`
	Description string `json:"description"`
}

// SnapshotData carries every managed table. The row types below include
// credential hashes on purpose — a snapshot must round-trip the whole
// database, unlike API responses which hide them.
type SnapshotData struct {
	Users             []SnapshotUser       `json:"users"`
	Departments       []SnapshotDepartment `json:"departments"`
	Teachers          []SnapshotTeacher    `json:"teachers"`
	AttendanceRecords []SnapshotAttendance `json:"attendanceRecords"`
	Holidays          []SnapshotHoliday    `json:"holidays"`
	Alerts            []SnapshotAlert      `json:"alerts"`
}

type SnapshotUser struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"created_at"`
}

type SnapshotDepartment struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type SnapshotTeacher struct {
	ID            int     `json:"id"`
	TeacherID     string  `json:"teacher_id"`
	Name          string  `json:"name"`
	DepartmentID  int     `json:"department_id"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	PortalEnabled bool    `json:"portal_enabled"`
	PasswordHash  *string `json:"password_hash"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type SnapshotAttendance struct {
	ID             int     `json:"id"`
	TeacherID      int     `json:"teacher_id"`
	Date           string  `json:"date"`
	Status         string  `json:"status"`
	AbsentCategory *string `json:"absent_category"`
	CheckInTime    *string `json:"check_in_time"`
	CheckOutTime   *string `json:"check_out_time"`
	RecordedBy     string  `json:"recorded_by"`
	CreatedAt      string  `json:"created_at"`
}

type SnapshotHoliday struct {
	ID   int    `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

type SnapshotAlert struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	TeacherID *int   `json:"teacher_id"`
	CreatedAt string `json:"created_at"`
}
