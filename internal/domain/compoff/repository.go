package compoff

import (
	"context"

	"github.com/shopspring/decimal"
)

// TrackingRepository - interface for comp_off_tracking table
type TrackingRepository interface {
	GetByEmployee(ctx context.Context, employeeID string) (Tracking, error)
	// GetByEmployeeForUpdate locks the row until the surrounding transaction ends.
	GetByEmployeeForUpdate(ctx context.Context, employeeID string) (Tracking, error)
	// EnsureForUpdate creates a zero balance row when none exists, then locks it.
	EnsureForUpdate(ctx context.Context, employeeID string) (Tracking, error)
	Update(ctx context.Context, tracking Tracking) error
	ListEmployeeIDs(ctx context.Context) ([]string, error)
	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
}

// DetailRepository - interface for comp_off_details table, append only
type DetailRepository interface {
	Append(ctx context.Context, detail Detail) (Detail, error)
	// ListByEmployee returns details oldest first.
	ListByEmployee(ctx context.Context, employeeID string) ([]Detail, error)
	SumByType(ctx context.Context, employeeID string) (map[DetailType]decimal.Decimal, error)
}

// RequestRepository - interface for comp_off_requests table
type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)
	UpdateReview(ctx context.Context, request Request) error
	CountByEmployee(ctx context.Context, employeeID string) (int64, error)
}
