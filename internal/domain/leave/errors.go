package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidDateRange     = errors.New("start_date must not be after end_date")
	ErrHalfDaySpansDays     = errors.New("half day leave must start and end on the same date")
)
