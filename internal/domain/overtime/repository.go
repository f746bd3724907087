package overtime

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OvertimeRequestRepository - interface for overtime_requests table
type OvertimeRequestRepository interface {
	Create(ctx context.Context, request OvertimeRequest) (OvertimeRequest, error)
	GetByID(ctx context.Context, id string) (OvertimeRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (OvertimeRequest, error)
	// UpdateReview writes status, manager_id, approved_at and reviewed_at.
	UpdateReview(ctx context.Context, request OvertimeRequest) error
	// SumApprovedHours totals request_hours of approved requests for the day.
	SumApprovedHours(ctx context.Context, employeeID string, date time.Time) (decimal.Decimal, error)
	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
}
