package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
)

type leaveRequestRepository struct {
	store *Store
}

func NewLeaveRequestRepository(store *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{store: store}
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	err := r.store.write(ctx, func(t *tables) error {
		now := r.store.now()
		request.ID = newID()
		if request.Status == "" {
			request.Status = workflow.StatusPending
		}
		request.CreatedAt = now
		request.UpdatedAt = now
		t.leaveRequests[request.ID] = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	var found leave.LeaveRequest
	err := r.store.read(func(t *tables) error {
		req, ok := t.leaveRequests[id]
		if !ok {
			return leave.ErrLeaveRequestNotFound
		}
		found = req
		return nil
	})
	return found, err
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

// UpdateReview implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) UpdateReview(ctx context.Context, request leave.LeaveRequest) error {
	return r.store.write(ctx, func(t *tables) error {
		existing, ok := t.leaveRequests[request.ID]
		if !ok {
			return leave.ErrLeaveRequestNotFound
		}
		existing.Status = request.Status
		existing.ManagerID = request.ManagerID
		existing.ReviewedAt = request.ReviewedAt
		existing.UpdatedAt = r.store.now()
		t.leaveRequests[request.ID] = existing
		return nil
	})
}

// CountByEmployee implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.store.read(func(t *tables) error {
		for _, req := range t.leaveRequests {
			if req.EmployeeID == employeeID {
				count++
			}
		}
		return nil
	})
	return count, err
}
