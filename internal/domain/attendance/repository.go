package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns nil when no record exists for that day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// ListWithClockTimes returns every record that has both in and out times,
	// oldest first. Used by the nightly correction pass.
	ListWithClockTimes(ctx context.Context) ([]Attendance, error)

	// UpdateComputed persists clock times, break policy and the derived hours.
	UpdateComputed(ctx context.Context, attendance Attendance) error

	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
}
