package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type overtimeRequestRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRequestRepository(db *database.DB) overtime.OvertimeRequestRepository {
	return &overtimeRequestRepositoryImpl{db: db}
}

const overtimeRequestColumns = `id, employee_id, manager_id, request_date, from_time, to_time, request_hours,
	reason, status, approved_at, reviewed_at, created_at, updated_at`

func scanOvertimeRequest(row pgx.Row) (overtime.OvertimeRequest, error) {
	var or overtime.OvertimeRequest
	err := row.Scan(
		&or.ID,
		&or.EmployeeID,
		&or.ManagerID,
		&or.RequestDate,
		&or.FromTime,
		&or.ToTime,
		&or.RequestHours,
		&or.Reason,
		&or.Status,
		&or.ApprovedAt,
		&or.ReviewedAt,
		&or.CreatedAt,
		&or.UpdatedAt,
	)
	return or, err
}

// Create implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) Create(ctx context.Context, request overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return overtime.OvertimeRequest{}, err
	}

	query := `
		INSERT INTO overtime_requests (
			id, employee_id, request_date, from_time, to_time, request_hours,
			reason, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + overtimeRequestColumns

	created, err := scanOvertimeRequest(q.QueryRow(ctx, query,
		id,
		request.EmployeeID,
		request.RequestDate,
		request.FromTime,
		request.ToTime,
		request.RequestHours,
		request.Reason,
		request.Status,
	))
	if err != nil {
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to create overtime request: %w", err)
	}
	return created, nil
}

func (r *overtimeRequestRepositoryImpl) get(ctx context.Context, id string, lock bool) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeRequestColumns + ` FROM overtime_requests WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	or, err := scanOvertimeRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return overtime.OvertimeRequest{}, overtime.ErrOvertimeRequestNotFound
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to get overtime request: %w", err)
	}
	return or, nil
}

// GetByID implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) GetByID(ctx context.Context, id string) (overtime.OvertimeRequest, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (overtime.OvertimeRequest, error) {
	return r.get(ctx, id, true)
}

// UpdateReview implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) UpdateReview(ctx context.Context, request overtime.OvertimeRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests
		SET status = $2, manager_id = $3, approved_at = $4, reviewed_at = $5, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		request.ID, request.Status, request.ManagerID, request.ApprovedAt, request.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update overtime request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return overtime.ErrOvertimeRequestNotFound
	}
	return nil
}

// SumApprovedHours implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) SumApprovedHours(ctx context.Context, employeeID string, date time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(request_hours), 0)
		FROM overtime_requests
		WHERE employee_id = $1 AND request_date = $2 AND status = 'approved'
	`
	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, date.Format("2006-01-02")).Scan(&total); err != nil {
		if isNoRows(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to sum approved overtime: %w", err)
	}
	return total, nil
}

// CountByEmployee implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return countWhere(ctx, GetQuerier(ctx, r.db), `SELECT COUNT(*) FROM overtime_requests WHERE employee_id = $1`, employeeID)
}
