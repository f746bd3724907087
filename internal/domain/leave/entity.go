package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

type LeaveType string

const (
	LeaveTypePaid    LeaveType = "paid"
	LeaveTypeUnpaid  LeaveType = "unpaid"
	LeaveTypeCompOff LeaveType = "comp_off"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypePaid, LeaveTypeUnpaid, LeaveTypeCompOff:
		return true
	}
	return false
}

// LeaveDuration maps to leave_duration_enum in DB
type LeaveDuration string

const (
	LeaveDurationFullDay          LeaveDuration = "full_day"
	LeaveDurationHalfDayMorning   LeaveDuration = "half_day_morning"
	LeaveDurationHalfDayAfternoon LeaveDuration = "half_day_afternoon"
)

func (d LeaveDuration) Valid() bool {
	switch d {
	case LeaveDurationFullDay, LeaveDurationHalfDayMorning, LeaveDurationHalfDayAfternoon:
		return true
	}
	return false
}

func (d LeaveDuration) IsHalfDay() bool {
	switch d {
	case LeaveDurationHalfDayMorning, LeaveDurationHalfDayAfternoon:
		return true
	case LeaveDurationFullDay:
		return false
	}
	return false
}

var halfDay = decimal.RequireFromString("0.5")

// CalculateDays returns the balance a request consumes: one per calendar day for
// full-day leave, 0.5 for a half day.
func CalculateDays(start, end time.Time, duration LeaveDuration) decimal.Decimal {
	if duration.IsHalfDay() {
		return halfDay
	}
	days := int64(end.Sub(start).Hours()/24) + 1
	return decimal.NewFromInt(days)
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	ManagerID  *string

	StartDate time.Time
	EndDate   time.Time

	LeaveType    LeaveType
	DurationType LeaveDuration
	TotalDays    decimal.Decimal

	Reason string

	Status     workflow.Status
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
