package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	err := r.store.write(ctx, func(t *tables) error {
		for _, a := range t.attendances {
			if a.EmployeeID == newAttendance.EmployeeID && sameDay(a.Date, newAttendance.Date) {
				return attendance.ErrAttendanceAlreadyExists
			}
		}
		now := r.store.now()
		newAttendance.ID = newID()
		newAttendance.CreatedAt = now
		newAttendance.UpdatedAt = now
		t.attendances[newAttendance.ID] = newAttendance
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	var found attendance.Attendance
	err := r.store.read(func(t *tables) error {
		a, ok := t.attendances[id]
		if !ok {
			return attendance.ErrAttendanceNotFound
		}
		found = a
		return nil
	})
	return found, err
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	var found *attendance.Attendance
	err := r.store.read(func(t *tables) error {
		for _, a := range t.attendances {
			if a.EmployeeID == employeeID && sameDay(a.Date, date) {
				a := a
				found = &a
				return nil
			}
		}
		return nil
	})
	return found, err
}

// ListWithClockTimes implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListWithClockTimes(ctx context.Context) ([]attendance.Attendance, error) {
	var list []attendance.Attendance
	err := r.store.read(func(t *tables) error {
		for _, a := range t.attendances {
			if a.HasClockTimes() {
				list = append(list, a)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

// UpdateComputed implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpdateComputed(ctx context.Context, updated attendance.Attendance) error {
	return r.store.write(ctx, func(t *tables) error {
		a, ok := t.attendances[updated.ID]
		if !ok {
			return attendance.ErrAttendanceNotFound
		}
		a.InTime = updated.InTime
		a.OutTime = updated.OutTime
		a.BreakMinutes = updated.BreakMinutes
		a.WorkedHours = updated.WorkedHours
		a.OvertimeHours = updated.OvertimeHours
		a.UpdatedAt = r.store.now()
		t.attendances[a.ID] = a
		return nil
	})
}

// CountByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) CountByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.store.read(func(t *tables) error {
		for _, a := range t.attendances {
			if a.EmployeeID == employeeID {
				count++
			}
		}
		return nil
	})
	return count, err
}
