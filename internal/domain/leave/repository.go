package leave

import (
	"context"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	// UpdateReview writes status, manager_id and reviewed_at.
	UpdateReview(ctx context.Context, request LeaveRequest) error
	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
}
