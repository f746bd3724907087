package overtime

import "errors"

var (
	ErrOvertimeRequestNotFound = errors.New("overtime request not found")
	ErrHoursExceedSpan         = errors.New("request_hours exceeds the time between from_time and to_time")
)
