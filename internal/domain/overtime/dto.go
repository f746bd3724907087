package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type SubmitOvertimeRequest struct {
	EmployeeID   string          `json:"employee_id"`
	RequestDate  string          `json:"request_date"`
	FromTime     string          `json:"from_time"`
	ToTime       string          `json:"to_time"`
	RequestHours decimal.Decimal `json:"request_hours"`
	Reason       string          `json:"reason"`
}

func (r *SubmitOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, ok := validator.IsValidDate(r.RequestDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "request_date",
			Message: "request_date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsValidClock(r.FromTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "from_time",
			Message: "from_time must be in HH:MM format",
		})
	}
	if !validator.IsValidClock(r.ToTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "to_time",
			Message: "to_time must be in HH:MM format",
		})
	}
	if !r.RequestHours.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "request_hours",
			Message: "request_hours must be greater than zero",
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

type ReviewOvertimeRequest struct {
	RequestID  string    `json:"-"`
	ManagerID  string    `json:"-"`
	Decision   string    `json:"decision"`
	ReviewedAt time.Time `json:"-"`
}

func (r *ReviewOvertimeRequest) Validate() error {
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

type OvertimeRequestResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	ManagerID    *string         `json:"manager_id"`
	RequestDate  string          `json:"request_date"`
	FromTime     string          `json:"from_time"`
	ToTime       string          `json:"to_time"`
	RequestHours decimal.Decimal `json:"request_hours"`
	Reason       string          `json:"reason"`
	Status       workflow.Status `json:"status"`
	ApprovedAt   *time.Time      `json:"approved_at"`
	ReviewedAt   *time.Time      `json:"reviewed_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ReviewOvertimeResponse struct {
	Request        OvertimeRequestResponse `json:"request"`
	Reconciliation *Reconciliation         `json:"reconciliation,omitempty"`
}

func ToOvertimeRequestResponse(r OvertimeRequest) OvertimeRequestResponse {
	return OvertimeRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		ManagerID:    r.ManagerID,
		RequestDate:  r.RequestDate.Format("2006-01-02"),
		FromTime:     r.FromTime,
		ToTime:       r.ToTime,
		RequestHours: r.RequestHours,
		Reason:       r.Reason,
		Status:       r.Status,
		ApprovedAt:   r.ApprovedAt,
		ReviewedAt:   r.ReviewedAt,
		CreatedAt:    r.CreatedAt,
	}
}
