package employee

import (
	"time"
)

type Employee struct {
	ID        string
	ManagerID *string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// References counts the rows in other tables that point at an employee.
type References struct {
	Attendance       int64 `json:"attendance"`
	CompOffTracking  int64 `json:"comp_off_tracking"`
	CompOffRequests  int64 `json:"comp_off_requests"`
	LeaveRequests    int64 `json:"leave_requests"`
	OvertimeRequests int64 `json:"overtime_requests"`
	DirectReports    int64 `json:"direct_reports"`
}

func (r References) Total() int64 {
	return r.Attendance + r.CompOffTracking + r.CompOffRequests + r.LeaveRequests + r.OvertimeRequests + r.DirectReports
}
