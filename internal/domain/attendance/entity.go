package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOnTime     Status = "on_time"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusEarlyLeave:
		return true
	}
	return false
}

// Attendance is one employee-day. InTime and OutTime are wall-clock "HH:MM"
// values without a date; BreakMinutes is the policy value used to compute
// WorkedHours.
type Attendance struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	InTime        *string
	OutTime       *string
	BreakMinutes  int
	WorkedHours   decimal.Decimal
	OvertimeHours decimal.Decimal
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasClockTimes reports whether both clock values are present.
func (a Attendance) HasClockTimes() bool {
	return a.InTime != nil && a.OutTime != nil
}
