package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
)

// Referrers are the repositories whose rows point at an employee.
type Referrers struct {
	Attendance       attendance.AttendanceRepository
	CompOffTracking  compoff.TrackingRepository
	CompOffRequests  compoff.RequestRepository
	LeaveRequests    leave.LeaveRequestRepository
	OvertimeRequests overtime.OvertimeRequestRepository
}

type EmployeeServiceImpl struct {
	uow          database.UnitOfWork
	employeeRepo employee.EmployeeRepository
	referrers    Referrers
	recorder     audit.Recorder
}

func NewEmployeeService(
	uow database.UnitOfWork,
	employeeRepo employee.EmployeeRepository,
	referrers Referrers,
	recorder audit.Recorder,
) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{
		uow:          uow,
		employeeRepo: employeeRepo,
		referrers:    referrers,
		recorder:     recorder,
	}
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToEmployeeResponse(e), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	rec := audit.RecordInput{
		Actor:      actorOf(req.ActorID),
		Action:     audit.ActionCreateEmployee,
		EntityType: audit.EntityEmployee,
		EntityID:   req.ID,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return employee.EmployeeResponse{}, err
	}

	var created employee.Employee
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.ManagerID != nil {
			if _, err := s.employeeRepo.GetByID(ctx, *req.ManagerID); err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					return employee.ErrManagerNotFound
				}
				return fmt.Errorf("failed to get manager: %w", err)
			}
		}

		var err error
		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			ID:        req.ID,
			ManagerID: req.ManagerID,
			FullName:  req.FullName,
		})
		return err
	})
	if err != nil {
		s.fail(ctx, rec, err)
		return employee.EmployeeResponse{}, err
	}

	rec.EntityID = created.ID
	rec.Description = "Created employee " + created.FullName
	rec.NewValues = employee.ToEmployeeResponse(created)
	auditsvc.Emit(ctx, s.recorder, rec)

	return employee.ToEmployeeResponse(created), nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, req employee.DeleteEmployeeRequest) error {
	rec := audit.RecordInput{
		Actor:      actorOf(req.ActorID),
		Action:     audit.ActionDeleteEmployee,
		EntityType: audit.EntityEmployee,
		EntityID:   req.ID,
	}

	var deleted employee.Employee
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		e, err := s.employeeRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		refs, err := s.countReferences(ctx, req.ID)
		if err != nil {
			return err
		}
		if refs.Total() > 0 {
			rec.OldValues = refs
			return fmt.Errorf("%w: %d rows", employee.ErrEmployeeHasReferences, refs.Total())
		}

		if err := s.employeeRepo.Delete(ctx, req.ID); err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		deleted = e
		return nil
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeHasReferences) {
			slog.Warn("employee delete denied", "employee_id", req.ID, "error", err)
		}
		s.fail(ctx, rec, err)
		return err
	}

	rec.Description = "Deleted employee " + deleted.FullName
	rec.OldValues = employee.ToEmployeeResponse(deleted)
	auditsvc.Emit(ctx, s.recorder, rec)
	return nil
}

func (s *EmployeeServiceImpl) countReferences(ctx context.Context, id string) (employee.References, error) {
	var (
		refs employee.References
		err  error
	)
	if refs.Attendance, err = s.referrers.Attendance.CountByEmployee(ctx, id); err != nil {
		return refs, fmt.Errorf("failed to count attendance: %w", err)
	}
	if refs.CompOffTracking, err = s.referrers.CompOffTracking.CountByEmployee(ctx, id); err != nil {
		return refs, fmt.Errorf("failed to count comp-off tracking: %w", err)
	}
	if refs.CompOffRequests, err = s.referrers.CompOffRequests.CountByEmployee(ctx, id); err != nil {
		return refs, fmt.Errorf("failed to count comp-off requests: %w", err)
	}
	if refs.LeaveRequests, err = s.referrers.LeaveRequests.CountByEmployee(ctx, id); err != nil {
		return refs, fmt.Errorf("failed to count leave requests: %w", err)
	}
	if refs.OvertimeRequests, err = s.referrers.OvertimeRequests.CountByEmployee(ctx, id); err != nil {
		return refs, fmt.Errorf("failed to count overtime requests: %w", err)
	}
	if refs.DirectReports, err = s.employeeRepo.CountDirectReports(ctx, id); err != nil {
		return refs, fmt.Errorf("failed to count direct reports: %w", err)
	}
	return refs, nil
}

func actorOf(id *string) audit.Actor {
	if id == nil {
		return audit.SystemActor()
	}
	return audit.ManagerActor(*id)
}

func (s *EmployeeServiceImpl) fail(ctx context.Context, rec audit.RecordInput, err error) {
	rec.Status = audit.StatusFailed
	rec.ErrorMessage = err.Error()
	if rec.Description == "" {
		rec.Description = "Failed: " + rec.Action
	}
	auditsvc.Emit(ctx, s.recorder, rec)
}

var _ employee.EmployeeService = (*EmployeeServiceImpl)(nil)
