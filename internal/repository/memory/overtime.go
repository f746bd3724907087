package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

type overtimeRequestRepository struct {
	store *Store
}

func NewOvertimeRequestRepository(store *Store) overtime.OvertimeRequestRepository {
	return &overtimeRequestRepository{store: store}
}

// Create implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepository) Create(ctx context.Context, request overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	err := r.store.write(ctx, func(t *tables) error {
		now := r.store.now()
		request.ID = newID()
		if request.Status == "" {
			request.Status = workflow.StatusPending
		}
		request.CreatedAt = now
		request.UpdatedAt = now
		t.overtimeRequests[request.ID] = request
		return nil
	})
	if err != nil {
		return overtime.OvertimeRequest{}, err
	}
	return request, nil
}

// GetByID implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepository) GetByID(ctx context.Context, id string) (overtime.OvertimeRequest, error) {
	var found overtime.OvertimeRequest
	err := r.store.read(func(t *tables) error {
		req, ok := t.overtimeRequests[id]
		if !ok {
			return overtime.ErrOvertimeRequestNotFound
		}
		found = req
		return nil
	})
	return found, err
}

// GetByIDForUpdate implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (overtime.OvertimeRequest, error) {
	return r.GetByID(ctx, id)
}

// UpdateReview implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepository) UpdateReview(ctx context.Context, request overtime.OvertimeRequest) error {
	return r.store.write(ctx, func(t *tables) error {
		existing, ok := t.overtimeRequests[request.ID]
		if !ok {
			return overtime.ErrOvertimeRequestNotFound
		}
		existing.Status = request.Status
		existing.ManagerID = request.ManagerID
		existing.ApprovedAt = request.ApprovedAt
		existing.ReviewedAt = request.ReviewedAt
		existing.UpdatedAt = r.store.now()
		t.overtimeRequests[request.ID] = existing
		return nil
	})
}

// SumApprovedHours implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepository) SumApprovedHours(ctx context.Context, employeeID string, date time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.store.read(func(t *tables) error {
		for _, req := range t.overtimeRequests {
			if req.EmployeeID == employeeID && req.Status == workflow.StatusApproved && sameDay(req.RequestDate, date) {
				total = total.Add(req.RequestHours)
			}
		}
		return nil
	})
	return total, err
}

// CountByEmployee implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.store.read(func(t *tables) error {
		for _, req := range t.overtimeRequests {
			if req.EmployeeID == employeeID {
				count++
			}
		}
		return nil
	})
	return count, err
}
