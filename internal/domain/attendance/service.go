package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// RecordCheckOut creates the single record for an employee-day
	RecordCheckOut(ctx context.Context, req RecordCheckOutRequest) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// CorrectBatch re-runs the worked-hours computation for each input.
	// Per-record failures are reported in the summary, never returned.
	CorrectBatch(ctx context.Context, req CorrectBatchRequest) (CorrectionSummary, error)

	// RecalculateAll corrects every stored record using its own clock values
	RecalculateAll(ctx context.Context) (CorrectionSummary, error)
}
