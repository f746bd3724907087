package leave

import (
	"context"
)

type LeaveService interface {
	SubmitLeaveRequest(ctx context.Context, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	// ReviewLeaveRequest approves or rejects a pending request. Approving a
	// comp_off request debits the comp-off ledger in the same transaction.
	ReviewLeaveRequest(ctx context.Context, req ReviewLeaveRequest) (LeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
}
