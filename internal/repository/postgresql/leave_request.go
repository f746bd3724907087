package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `id, employee_id, manager_id, start_date, end_date, leave_type, duration_type,
	total_days, reason, status, reviewed_at, created_at, updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.ManagerID,
		&lr.StartDate,
		&lr.EndDate,
		&lr.LeaveType,
		&lr.DurationType,
		&lr.TotalDays,
		&lr.Reason,
		&lr.Status,
		&lr.ReviewedAt,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, start_date, end_date, leave_type, duration_type,
			total_days, reason, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		id,
		request.EmployeeID,
		request.StartDate,
		request.EndDate,
		request.LeaveType,
		request.DurationType,
		request.TotalDays,
		request.Reason,
		request.Status,
	))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

func (r *leaveRequestRepositoryImpl) get(ctx context.Context, id string, lock bool) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.get(ctx, id, true)
}

// UpdateReview implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateReview(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, manager_id = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, request.ID, request.Status, request.ManagerID, request.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// CountByEmployee implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return countWhere(ctx, GetQuerier(ctx, r.db), `SELECT COUNT(*) FROM leave_requests WHERE employee_id = $1`, employeeID)
}
