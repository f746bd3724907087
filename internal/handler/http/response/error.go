package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Workflow
	case errors.Is(err, workflow.ErrAlreadyReviewed):
		Conflict(w, "Request already reviewed")
	case errors.Is(err, workflow.ErrInvalidDecision):
		BadRequest(w, "Decision must be approved or rejected", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrManagerNotFound):
		NotFound(w, "Manager not found")
	case errors.Is(err, employee.ErrEmployeeExists):
		Conflict(w, "Employee already exists")
	case errors.Is(err, employee.ErrEmployeeHasReferences):
		Conflict(w, "Employee is still referenced by other records")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidTimeFormat):
		BadRequest(w, "Invalid time format, expected HH:MM", nil)
	case errors.Is(err, attendance.ErrInvalidBreakMinutes):
		BadRequest(w, "Invalid break minutes", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAttendanceAlreadyExists):
		Conflict(w, "Attendance already recorded for this date")
	case errors.Is(err, attendance.ErrEmptyBatch):
		BadRequest(w, "Correction batch is empty", nil)

	// Comp-off domain errors
	case errors.Is(err, compoff.ErrInsufficientBalance):
		UnprocessableEntity(w, "INSUFFICIENT_BALANCE", "Insufficient comp-off balance")
	case errors.Is(err, compoff.ErrLedgerHalted):
		Locked(w, "Comp-off ledger is halted for this employee")
	case errors.Is(err, compoff.ErrLedgerReconciliation):
		Locked(w, "Comp-off ledger does not reconcile")
	case errors.Is(err, compoff.ErrBucketNotExpired):
		Conflict(w, "Comp-off bucket has not expired yet")
	case errors.Is(err, compoff.ErrInvalidMonth):
		BadRequest(w, "Invalid month, expected YYYY-MM", nil)
	case errors.Is(err, compoff.ErrInvalidDays):
		BadRequest(w, "Days must be greater than zero", nil)
	case errors.Is(err, compoff.ErrTrackingNotFound):
		NotFound(w, "Comp-off balance not found")
	case errors.Is(err, compoff.ErrCompOffRequestNotFound):
		NotFound(w, "Comp-off request not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "start_date must not be after end_date", nil)
	case errors.Is(err, leave.ErrHalfDaySpansDays):
		BadRequest(w, "Half day leave must start and end on the same date", nil)

	// Overtime domain errors
	case errors.Is(err, overtime.ErrOvertimeRequestNotFound):
		NotFound(w, "Overtime request not found")
	case errors.Is(err, overtime.ErrHoursExceedSpan):
		BadRequest(w, "request_hours exceeds the requested time span", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
