package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `id, employee_id, date, in_time, out_time, break_minutes, worked_hours, overtime_hours, status, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID,
		&a.EmployeeID,
		&a.Date,
		&a.InTime,
		&a.OutTime,
		&a.BreakMinutes,
		&a.WorkedHours,
		&a.OvertimeHours,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, err
	}

	query := `
		INSERT INTO attendances (
			id, employee_id, date, in_time, out_time, break_minutes,
			worked_hours, overtime_hours, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		id,
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.InTime,
		newAttendance.OutTime,
		newAttendance.BreakMinutes,
		newAttendance.WorkedHours,
		newAttendance.OvertimeHours,
		newAttendance.Status,
	))
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return attendance.Attendance{}, attendance.ErrAttendanceAlreadyExists
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendances WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND date = $2`
	a, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date.Format("2006-01-02")))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance for %s: %w", date.Format("2006-01-02"), err)
	}
	return &a, nil
}

// ListWithClockTimes implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListWithClockTimes(ctx context.Context) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE in_time IS NOT NULL AND out_time IS NOT NULL
		ORDER BY date ASC, id ASC
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var list []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}
	return list, nil
}

// UpdateComputed implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) UpdateComputed(ctx context.Context, a attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET in_time = $2, out_time = $3, break_minutes = $4,
			worked_hours = $5, overtime_hours = $6, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, a.ID, a.InTime, a.OutTime, a.BreakMinutes, a.WorkedHours, a.OvertimeHours)
	if err != nil {
		if isNoRows(err) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// CountByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return countWhere(ctx, GetQuerier(ctx, r.db), `SELECT COUNT(*) FROM attendances WHERE employee_id = $1`, employeeID)
}
