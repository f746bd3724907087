package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

type compOffTrackingRepository struct {
	store *Store
}

func NewCompOffTrackingRepository(store *Store) compoff.TrackingRepository {
	return &compOffTrackingRepository{store: store}
}

// GetByEmployee implements compoff.TrackingRepository.
func (r *compOffTrackingRepository) GetByEmployee(ctx context.Context, employeeID string) (compoff.Tracking, error) {
	var found compoff.Tracking
	err := r.store.read(func(t *tables) error {
		tr, ok := t.tracking[employeeID]
		if !ok {
			return compoff.ErrTrackingNotFound
		}
		found = tr
		return nil
	})
	return found, err
}

// GetByEmployeeForUpdate implements compoff.TrackingRepository. Transactions are
// already serialized by the store, so no extra locking is needed.
func (r *compOffTrackingRepository) GetByEmployeeForUpdate(ctx context.Context, employeeID string) (compoff.Tracking, error) {
	return r.GetByEmployee(ctx, employeeID)
}

// EnsureForUpdate implements compoff.TrackingRepository.
func (r *compOffTrackingRepository) EnsureForUpdate(ctx context.Context, employeeID string) (compoff.Tracking, error) {
	var tracking compoff.Tracking
	err := r.store.write(ctx, func(t *tables) error {
		tr, ok := t.tracking[employeeID]
		if !ok {
			now := r.store.now()
			tr = compoff.Tracking{
				ID:         newID(),
				EmployeeID: employeeID,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			t.tracking[employeeID] = tr
		}
		tracking = tr
		return nil
	})
	return tracking, err
}

// Update implements compoff.TrackingRepository.
func (r *compOffTrackingRepository) Update(ctx context.Context, tracking compoff.Tracking) error {
	return r.store.write(ctx, func(t *tables) error {
		if _, ok := t.tracking[tracking.EmployeeID]; !ok {
			return compoff.ErrTrackingNotFound
		}
		tracking.UpdatedAt = r.store.now()
		t.tracking[tracking.EmployeeID] = tracking
		return nil
	})
}

// ListEmployeeIDs implements compoff.TrackingRepository.
func (r *compOffTrackingRepository) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.store.read(func(t *tables) error {
		for id := range t.tracking {
			ids = append(ids, id)
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

// CountByEmployee implements compoff.TrackingRepository.
func (r *compOffTrackingRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.store.read(func(t *tables) error {
		if _, ok := t.tracking[employeeID]; ok {
			count = 1
		}
		return nil
	})
	return count, err
}

type compOffDetailRepository struct {
	store *Store
}

func NewCompOffDetailRepository(store *Store) compoff.DetailRepository {
	return &compOffDetailRepository{store: store}
}

// Append implements compoff.DetailRepository.
func (r *compOffDetailRepository) Append(ctx context.Context, detail compoff.Detail) (compoff.Detail, error) {
	err := r.store.write(ctx, func(t *tables) error {
		detail.ID = newID()
		detail.CreatedAt = r.store.now()
		t.details = append(t.details, detail)
		return nil
	})
	if err != nil {
		return compoff.Detail{}, err
	}
	return detail, nil
}

// ListByEmployee implements compoff.DetailRepository.
func (r *compOffDetailRepository) ListByEmployee(ctx context.Context, employeeID string) ([]compoff.Detail, error) {
	var list []compoff.Detail
	err := r.store.read(func(t *tables) error {
		for _, d := range t.details {
			if d.EmployeeID == employeeID {
				list = append(list, d)
			}
		}
		return nil
	})
	return list, err
}

// SumByType implements compoff.DetailRepository.
func (r *compOffDetailRepository) SumByType(ctx context.Context, employeeID string) (map[compoff.DetailType]decimal.Decimal, error) {
	sums := map[compoff.DetailType]decimal.Decimal{
		compoff.DetailEarned:  decimal.Zero,
		compoff.DetailUsed:    decimal.Zero,
		compoff.DetailExpired: decimal.Zero,
	}
	err := r.store.read(func(t *tables) error {
		for _, d := range t.details {
			if d.EmployeeID == employeeID {
				sums[d.Type] = sums[d.Type].Add(d.Days)
			}
		}
		return nil
	})
	return sums, err
}

type compOffRequestRepository struct {
	store *Store
}

func NewCompOffRequestRepository(store *Store) compoff.RequestRepository {
	return &compOffRequestRepository{store: store}
}

// Create implements compoff.RequestRepository.
func (r *compOffRequestRepository) Create(ctx context.Context, request compoff.Request) (compoff.Request, error) {
	err := r.store.write(ctx, func(t *tables) error {
		now := r.store.now()
		request.ID = newID()
		if request.Status == "" {
			request.Status = workflow.StatusPending
		}
		request.CreatedAt = now
		request.UpdatedAt = now
		t.compOffRequests[request.ID] = request
		return nil
	})
	if err != nil {
		return compoff.Request{}, err
	}
	return request, nil
}

// GetByID implements compoff.RequestRepository.
func (r *compOffRequestRepository) GetByID(ctx context.Context, id string) (compoff.Request, error) {
	var found compoff.Request
	err := r.store.read(func(t *tables) error {
		req, ok := t.compOffRequests[id]
		if !ok {
			return compoff.ErrCompOffRequestNotFound
		}
		found = req
		return nil
	})
	return found, err
}

// GetByIDForUpdate implements compoff.RequestRepository.
func (r *compOffRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (compoff.Request, error) {
	return r.GetByID(ctx, id)
}

// UpdateReview implements compoff.RequestRepository.
func (r *compOffRequestRepository) UpdateReview(ctx context.Context, request compoff.Request) error {
	return r.store.write(ctx, func(t *tables) error {
		existing, ok := t.compOffRequests[request.ID]
		if !ok {
			return compoff.ErrCompOffRequestNotFound
		}
		existing.Status = request.Status
		existing.ManagerID = request.ManagerID
		existing.ReviewedAt = request.ReviewedAt
		existing.UpdatedAt = r.store.now()
		t.compOffRequests[request.ID] = existing
		return nil
	})
}

// CountByEmployee implements compoff.RequestRepository.
func (r *compOffRequestRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.store.read(func(t *tables) error {
		for _, req := range t.compOffRequests {
			if req.EmployeeID == employeeID {
				count++
			}
		}
		return nil
	})
	return count, err
}
