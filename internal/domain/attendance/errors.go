package attendance

import (
	"errors"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/worktime"
)

// Attendance domain errors
var (
	ErrInvalidTimeFormat       = worktime.ErrInvalidTimeFormat
	ErrInvalidBreakMinutes     = worktime.ErrInvalidBreakMinutes
	ErrAttendanceNotFound      = errors.New("attendance record not found")
	ErrAttendanceAlreadyExists = errors.New("attendance already recorded for this employee and date")
	ErrEmptyBatch              = errors.New("correction batch is empty")
)
