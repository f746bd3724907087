package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type SubmitLeaveRequest struct {
	EmployeeID   string `json:"employee_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	LeaveType    string `json:"leave_type"`
	DurationType string `json:"duration_type"`
	Reason       string `json:"reason"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && start.After(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	if !LeaveType(r.LeaveType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: paid, unpaid, comp_off",
		})
	}

	duration := LeaveDuration(r.DurationType)
	if !duration.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "duration_type",
			Message: "duration_type must be one of: full_day, half_day_morning, half_day_afternoon",
		})
	} else if duration.IsHalfDay() && startOK && endOK && !start.Equal(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "duration_type",
			Message: ErrHalfDaySpansDays.Error(),
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReviewLeaveRequest struct {
	RequestID  string    `json:"-"`
	ManagerID  string    `json:"-"`
	Decision   string    `json:"decision"`
	ReviewedAt time.Time `json:"-"`
}

func (r *ReviewLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if validator.IsEmpty(r.ManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id is required",
		})
	}
	if _, err := workflow.ParseDecision(r.Decision); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: approved, rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRequestResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	ManagerID    *string         `json:"manager_id"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	LeaveType    LeaveType       `json:"leave_type"`
	DurationType LeaveDuration   `json:"duration_type"`
	TotalDays    decimal.Decimal `json:"total_days"`
	Reason       string          `json:"reason"`
	Status       workflow.Status `json:"status"`
	ReviewedAt   *time.Time      `json:"reviewed_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		ManagerID:    r.ManagerID,
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		LeaveType:    r.LeaveType,
		DurationType: r.DurationType,
		TotalDays:    r.TotalDays,
		Reason:       r.Reason,
		Status:       r.Status,
		ReviewedAt:   r.ReviewedAt,
		CreatedAt:    r.CreatedAt,
	}
}
