package compoff

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var (
	halfDay = decimal.RequireFromString("0.5")
	fullDay = decimal.NewFromInt(1)
)

// Snapshot is the JSON shape of a balance used in responses and audit values.
type Snapshot struct {
	EarnedDays    decimal.Decimal `json:"earned_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	ExpiredDays   decimal.Decimal `json:"expired_days"`
	AvailableDays decimal.Decimal `json:"available_days"`
}

func (t Tracking) Snapshot() Snapshot {
	return Snapshot{
		EarnedDays:    t.EarnedDays,
		UsedDays:      t.UsedDays,
		ExpiredDays:   t.ExpiredDays,
		AvailableDays: t.AvailableDays,
	}
}

// ========================================
// LEDGER DTOs
// ========================================

type EarnRequest struct {
	ActorID    *string         `json:"-"`
	EmployeeID string          `json:"employee_id"`
	Days       decimal.Decimal `json:"days"`
	EarnedDate string          `json:"earned_date"`
	Note       string          `json:"note"`
}

func (r *EarnRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if !r.Days.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be greater than zero",
		})
	}
	if validator.IsEmpty(r.EarnedDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "earned_date",
			Message: "earned_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.EarnedDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "earned_date",
			Message: "earned_date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ExpireBucketRequest struct {
	ActorID    *string `json:"-"`
	EmployeeID string  `json:"employee_id"`
	Month      string  `json:"month"`
	// AsOf defaults to today when empty.
	AsOf string `json:"as_of,omitempty"`
}

func (r *ExpireBucketRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}
	if r.AsOf != "" {
		if _, ok := validator.IsValidDate(r.AsOf); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "as_of",
				Message: "as_of must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ExpireBucketResponse struct {
	EmployeeID  string          `json:"employee_id"`
	Month       string          `json:"month"`
	ExpiredDays decimal.Decimal `json:"expired_days"`
	Balance     Snapshot        `json:"balance"`
}

type SweepOutcome string

const (
	SweepExpired SweepOutcome = "expired"
	SweepSkipped SweepOutcome = "skipped"
	SweepFailed  SweepOutcome = "failed"
)

// BucketExpiry is the outcome of one bucket in an expiry sweep.
type BucketExpiry struct {
	EmployeeID string          `json:"employee_id"`
	Month      string          `json:"month"`
	Outcome    SweepOutcome    `json:"outcome"`
	Days       decimal.Decimal `json:"days"`
	Before     *Snapshot       `json:"before,omitempty"`
	After      *Snapshot       `json:"after,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type SweepSummary struct {
	AsOf    time.Time      `json:"as_of"`
	Expired int            `json:"expired"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
	Results []BucketExpiry `json:"results"`
}

func (s *SweepSummary) Add(r BucketExpiry) {
	switch r.Outcome {
	case SweepExpired:
		s.Expired++
	case SweepSkipped:
		s.Skipped++
	case SweepFailed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

type BucketResponse struct {
	Month     string          `json:"month"`
	Earned    decimal.Decimal `json:"earned"`
	Used      decimal.Decimal `json:"used"`
	Expired   decimal.Decimal `json:"expired"`
	Remaining decimal.Decimal `json:"remaining"`
	ExpiresAt string          `json:"expires_at"`
}

type BalanceResponse struct {
	EmployeeID string           `json:"employee_id"`
	Snapshot
	EarnedDate *time.Time       `json:"earned_date,omitempty"`
	Halted     bool             `json:"halted"`
	Buckets    []BucketResponse `json:"buckets"`
}

type DetailResponse struct {
	ID          string          `json:"id"`
	Type        DetailType      `json:"type"`
	Days        decimal.Decimal `json:"days"`
	Date        string          `json:"date"`
	EarnedMonth string          `json:"earned_month"`
	Note        *string         `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func ToDetailResponse(d Detail) DetailResponse {
	return DetailResponse{
		ID:          d.ID,
		Type:        d.Type,
		Days:        d.Days,
		Date:        d.Date.Format("2006-01-02"),
		EarnedMonth: d.EarnedMonth,
		Note:        d.Note,
		CreatedAt:   d.CreatedAt,
	}
}

// ========================================
// COMP-OFF REQUEST DTOs
// ========================================

type SubmitRequestRequest struct {
	EmployeeID string          `json:"employee_id"`
	WorkedDate string          `json:"worked_date"`
	Days       decimal.Decimal `json:"days"`
	Reason     string          `json:"reason"`
}

func (r *SubmitRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.WorkedDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "worked_date",
			Message: "worked_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.WorkedDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "worked_date",
			Message: "worked_date must be in YYYY-MM-DD format",
		})
	}
	if !r.Days.Equal(fullDay) && !r.Days.Equal(halfDay) {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be 1 or 0.5",
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

type ReviewRequestRequest struct {
	RequestID  string    `json:"-"`
	ManagerID  string    `json:"-"`
	Decision   string    `json:"decision"`
	ReviewedAt time.Time `json:"-"`
}

func (r *ReviewRequestRequest) Validate() error {
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

type RequestResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	ManagerID  *string         `json:"manager_id"`
	WorkedDate string          `json:"worked_date"`
	Days       decimal.Decimal `json:"days"`
	Reason     string          `json:"reason"`
	Status     workflow.Status `json:"status"`
	ReviewedAt *time.Time      `json:"reviewed_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

func ToRequestResponse(r Request) RequestResponse {
	return RequestResponse{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		ManagerID:  r.ManagerID,
		WorkedDate: r.WorkedDate.Format("2006-01-02"),
		Days:       r.Days,
		Reason:     r.Reason,
		Status:     r.Status,
		ReviewedAt: r.ReviewedAt,
		CreatedAt:  r.CreatedAt,
	}
}
