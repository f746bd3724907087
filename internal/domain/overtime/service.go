package overtime

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OvertimeService interface {
	SubmitOvertimeRequest(ctx context.Context, req SubmitOvertimeRequest) (OvertimeRequestResponse, error)
	// ReviewOvertimeRequest approves or rejects a pending request. Approval
	// reports how the approved hours compare with attendance overtime.
	ReviewOvertimeRequest(ctx context.Context, req ReviewOvertimeRequest) (ReviewOvertimeResponse, error)
	GetOvertimeRequest(ctx context.Context, id string) (OvertimeRequestResponse, error)
	// AuthoritativeOvertime is the approved overtime for an employee-day.
	AuthoritativeOvertime(ctx context.Context, employeeID string, date time.Time) (decimal.Decimal, error)
}
