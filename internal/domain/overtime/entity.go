package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

// OvertimeRequest entity. FromTime and ToTime are "HH:MM" wall-clock values;
// ToTime earlier than FromTime means the work ran past midnight.
type OvertimeRequest struct {
	ID           string
	EmployeeID   string
	ManagerID    *string
	RequestDate  time.Time
	FromTime     string
	ToTime       string
	RequestHours decimal.Decimal
	Reason       string
	Status       workflow.Status
	ApprovedAt   *time.Time
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reconciliation compares approved overtime with what attendance derived for the
// same employee and date. Neither side is adjusted.
type Reconciliation struct {
	EmployeeID              string           `json:"employee_id"`
	Date                    string           `json:"date"`
	AttendanceFound         bool             `json:"attendance_found"`
	AttendanceOvertimeHours *decimal.Decimal `json:"attendance_overtime_hours"`
	ApprovedHours           decimal.Decimal  `json:"approved_hours"`
	Difference              decimal.Decimal  `json:"difference"`
	Mismatch                bool             `json:"mismatch"`
}

// Reconcile builds a Reconciliation. approvedHours is the sum of every approved
// request for the day. A missing attendance record with approved hours is a
// mismatch.
func Reconcile(employeeID string, date time.Time, attendanceHours *decimal.Decimal, approvedHours decimal.Decimal) Reconciliation {
	rec := Reconciliation{
		EmployeeID:    employeeID,
		Date:          date.Format("2006-01-02"),
		ApprovedHours: approvedHours,
	}
	if attendanceHours == nil {
		rec.Difference = approvedHours
		rec.Mismatch = approvedHours.IsPositive()
		return rec
	}
	rec.AttendanceFound = true
	rec.AttendanceOvertimeHours = attendanceHours
	rec.Difference = approvedHours.Sub(*attendanceHours)
	rec.Mismatch = !rec.Difference.IsZero()
	return rec
}
