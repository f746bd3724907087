package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type RecordCheckOutRequest struct {
	EmployeeID   string `json:"employee_id"`
	Date         string `json:"date"`
	InTime       string `json:"in_time"`
	OutTime      string `json:"out_time"`
	BreakMinutes *int   `json:"break_minutes,omitempty"`
	Status       string `json:"status"`
}

func (r *RecordCheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must not be negative",
		})
	}

	if r.Status == "" {
		r.Status = string(StatusOnTime)
	} else if !Status(r.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: on_time, late, early_leave",
		})
	}

	// in_time/out_time format is checked by the engine so the caller gets
	// ErrInvalidTimeFormat rather than a generic validation error.
	if validator.IsEmpty(r.InTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "in_time",
			Message: "in_time is required",
		})
	}
	if validator.IsEmpty(r.OutTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "out_time",
			Message: "out_time is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// CorrectionInput is one raw clock tuple keyed by attendance record ID.
type CorrectionInput struct {
	RecordID     string `json:"record_id"`
	InTime       string `json:"in_time"`
	OutTime      string `json:"out_time"`
	BreakMinutes *int   `json:"break_minutes,omitempty"`
}

type CorrectBatchRequest struct {
	ActorID *string           `json:"-"`
	Records []CorrectionInput `json:"records"`
}

func (r *CorrectBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Records) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "records",
			Message: "records must not be empty",
		})
	}
	for i, rec := range r.Records {
		if validator.IsEmpty(rec.RecordID) {
			errs = append(errs, validator.ValidationError{
				Field:   "records[" + validator.Itoa(i) + "].record_id",
				Message: "record_id is required",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Outcome string

const (
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeError     Outcome = "error"
)

type CorrectionResult struct {
	RecordID       string           `json:"record_id"`
	Outcome        Outcome          `json:"outcome"`
	OldWorkedHours *decimal.Decimal `json:"old_worked_hours,omitempty"`
	NewWorkedHours *decimal.Decimal `json:"new_worked_hours,omitempty"`
	Error          string           `json:"error,omitempty"`
}

type CorrectionSummary struct {
	Total     int                `json:"total"`
	Changed   int                `json:"changed"`
	Unchanged int                `json:"unchanged"`
	Errored   int                `json:"errored"`
	Results   []CorrectionResult `json:"results"`
}

// Add tallies one per-record result.
func (s *CorrectionSummary) Add(r CorrectionResult) {
	s.Total++
	switch r.Outcome {
	case OutcomeChanged:
		s.Changed++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeError:
		s.Errored++
	}
	s.Results = append(s.Results, r)
}

type AttendanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	Date          string          `json:"date"`
	InTime        *string         `json:"in_time"`
	OutTime       *string         `json:"out_time"`
	BreakMinutes  int             `json:"break_minutes"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		Date:          a.Date.Format("2006-01-02"),
		InTime:        a.InTime,
		OutTime:       a.OutTime,
		BreakMinutes:  a.BreakMinutes,
		WorkedHours:   a.WorkedHours,
		OvertimeHours: a.OvertimeHours,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
