package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ========================================
// COMP-OFF TRACKING
// ========================================

type compOffTrackingRepositoryImpl struct {
	db *database.DB
}

func NewCompOffTrackingRepository(db *database.DB) compoff.TrackingRepository {
	return &compOffTrackingRepositoryImpl{db: db}
}

const trackingColumns = `id, employee_id, earned_days, used_days, expired_days, available_days, earned_date, created_at, updated_at`

func scanTracking(row pgx.Row) (compoff.Tracking, error) {
	var t compoff.Tracking
	err := row.Scan(
		&t.ID,
		&t.EmployeeID,
		&t.EarnedDays,
		&t.UsedDays,
		&t.ExpiredDays,
		&t.AvailableDays,
		&t.EarnedDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *compOffTrackingRepositoryImpl) get(ctx context.Context, employeeID string, lock bool) (compoff.Tracking, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + trackingColumns + ` FROM comp_off_tracking WHERE employee_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	t, err := scanTracking(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if isNoRows(err) {
			return compoff.Tracking{}, compoff.ErrTrackingNotFound
		}
		return compoff.Tracking{}, fmt.Errorf("failed to get comp-off tracking: %w", err)
	}
	return t, nil
}

// GetByEmployee implements compoff.TrackingRepository.
func (r *compOffTrackingRepositoryImpl) GetByEmployee(ctx context.Context, employeeID string) (compoff.Tracking, error) {
	return r.get(ctx, employeeID, false)
}

// GetByEmployeeForUpdate implements compoff.TrackingRepository.
func (r *compOffTrackingRepositoryImpl) GetByEmployeeForUpdate(ctx context.Context, employeeID string) (compoff.Tracking, error) {
	return r.get(ctx, employeeID, true)
}

// EnsureForUpdate implements compoff.TrackingRepository. Concurrent callers race
// on the unique employee_id; the loser's insert is a no-op and both then lock
// the same row.
func (r *compOffTrackingRepositoryImpl) EnsureForUpdate(ctx context.Context, employeeID string) (compoff.Tracking, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return compoff.Tracking{}, err
	}

	query := `
		INSERT INTO comp_off_tracking (id, employee_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (employee_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, id, employeeID); err != nil {
		return compoff.Tracking{}, fmt.Errorf("failed to ensure comp-off tracking: %w", err)
	}
	return r.get(ctx, employeeID, true)
}

// Update implements compoff.TrackingRepository.
func (r *compOffTrackingRepositoryImpl) Update(ctx context.Context, t compoff.Tracking) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE comp_off_tracking
		SET earned_days = $2, used_days = $3, expired_days = $4, available_days = $5,
			earned_date = $6, updated_at = NOW()
		WHERE employee_id = $1
	`
	commandTag, err := q.Exec(ctx, query,
		t.EmployeeID, t.EarnedDays, t.UsedDays, t.ExpiredDays, t.AvailableDays, t.EarnedDate)
	if err != nil {
		return fmt.Errorf("failed to update comp-off tracking: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return compoff.ErrTrackingNotFound
	}
	return nil
}

// ListEmployeeIDs implements compoff.TrackingRepository.
func (r *compOffTrackingRepositoryImpl) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id::text FROM comp_off_tracking ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list comp-off employees: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan comp-off employees: %w", err)
	}
	return ids, nil
}

// CountByEmployee implements compoff.TrackingRepository.
func (r *compOffTrackingRepositoryImpl) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return countWhere(ctx, GetQuerier(ctx, r.db), `SELECT COUNT(*) FROM comp_off_tracking WHERE employee_id = $1`, employeeID)
}

// ========================================
// COMP-OFF DETAILS
// ========================================

type compOffDetailRepositoryImpl struct {
	db *database.DB
}

func NewCompOffDetailRepository(db *database.DB) compoff.DetailRepository {
	return &compOffDetailRepositoryImpl{db: db}
}

// Append implements compoff.DetailRepository.
func (r *compOffDetailRepositoryImpl) Append(ctx context.Context, d compoff.Detail) (compoff.Detail, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return compoff.Detail{}, err
	}
	d.ID = id

	query := `
		INSERT INTO comp_off_details (id, employee_id, tracking_id, type, days, date, earned_month, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	err = q.QueryRow(ctx, query,
		d.ID, d.EmployeeID, d.TrackingID, d.Type, d.Days, d.Date, d.EarnedMonth, d.Note,
	).Scan(&d.CreatedAt)
	if err != nil {
		return compoff.Detail{}, fmt.Errorf("failed to append comp-off detail: %w", err)
	}
	return d, nil
}

// ListByEmployee implements compoff.DetailRepository.
func (r *compOffDetailRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]compoff.Detail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, tracking_id, type, days, date, earned_month, note, created_at
		FROM comp_off_details
		WHERE employee_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comp-off details: %w", err)
	}
	defer rows.Close()

	var list []compoff.Detail
	for rows.Next() {
		var d compoff.Detail
		if err := rows.Scan(
			&d.ID,
			&d.EmployeeID,
			&d.TrackingID,
			&d.Type,
			&d.Days,
			&d.Date,
			&d.EarnedMonth,
			&d.Note,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comp-off detail: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comp-off details: %w", err)
	}
	return list, nil
}

// SumByType implements compoff.DetailRepository.
func (r *compOffDetailRepositoryImpl) SumByType(ctx context.Context, employeeID string) (map[compoff.DetailType]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	sums := map[compoff.DetailType]decimal.Decimal{
		compoff.DetailEarned:  decimal.Zero,
		compoff.DetailUsed:    decimal.Zero,
		compoff.DetailExpired: decimal.Zero,
	}

	rows, err := q.Query(ctx, `
		SELECT type, COALESCE(SUM(days), 0)
		FROM comp_off_details
		WHERE employee_id = $1
		GROUP BY type
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum comp-off details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t   compoff.DetailType
			sum decimal.Decimal
		)
		if err := rows.Scan(&t, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan comp-off sum: %w", err)
		}
		sums[t] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comp-off sums: %w", err)
	}
	return sums, nil
}

// ========================================
// COMP-OFF REQUESTS
// ========================================

type compOffRequestRepositoryImpl struct {
	db *database.DB
}

func NewCompOffRequestRepository(db *database.DB) compoff.RequestRepository {
	return &compOffRequestRepositoryImpl{db: db}
}

const compOffRequestColumns = `id, employee_id, manager_id, worked_date, days, reason, status, reviewed_at, created_at, updated_at`

func scanCompOffRequest(row pgx.Row) (compoff.Request, error) {
	var req compoff.Request
	err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&req.ManagerID,
		&req.WorkedDate,
		&req.Days,
		&req.Reason,
		&req.Status,
		&req.ReviewedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	return req, err
}

// Create implements compoff.RequestRepository.
func (r *compOffRequestRepositoryImpl) Create(ctx context.Context, req compoff.Request) (compoff.Request, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return compoff.Request{}, err
	}

	query := `
		INSERT INTO comp_off_requests (id, employee_id, worked_date, days, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + compOffRequestColumns
	created, err := scanCompOffRequest(q.QueryRow(ctx, query,
		id, req.EmployeeID, req.WorkedDate, req.Days, req.Reason, req.Status))
	if err != nil {
		return compoff.Request{}, fmt.Errorf("failed to create comp-off request: %w", err)
	}
	return created, nil
}

func (r *compOffRequestRepositoryImpl) get(ctx context.Context, id string, lock bool) (compoff.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + compOffRequestColumns + ` FROM comp_off_requests WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	req, err := scanCompOffRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return compoff.Request{}, compoff.ErrCompOffRequestNotFound
		}
		return compoff.Request{}, fmt.Errorf("failed to get comp-off request: %w", err)
	}
	return req, nil
}

// GetByID implements compoff.RequestRepository.
func (r *compOffRequestRepositoryImpl) GetByID(ctx context.Context, id string) (compoff.Request, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate implements compoff.RequestRepository.
func (r *compOffRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (compoff.Request, error) {
	return r.get(ctx, id, true)
}

// UpdateReview implements compoff.RequestRepository.
func (r *compOffRequestRepositoryImpl) UpdateReview(ctx context.Context, req compoff.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE comp_off_requests
		SET status = $2, manager_id = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, req.ID, req.Status, req.ManagerID, req.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update comp-off request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return compoff.ErrCompOffRequestNotFound
	}
	return nil
}

// CountByEmployee implements compoff.RequestRepository.
func (r *compOffRequestRepositoryImpl) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return countWhere(ctx, GetQuerier(ctx, r.db), `SELECT COUNT(*) FROM comp_off_requests WHERE employee_id = $1`, employeeID)
}
