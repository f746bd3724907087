package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
)

type LeaveServiceImpl struct {
	uow database.UnitOfWork
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	ledger   compoff.Ledger
	recorder audit.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewLeaveService(
	uow database.UnitOfWork,
	leaveRequestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	ledger compoff.Ledger,
	recorder audit.Recorder,
	m *metrics.Metrics,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		uow:                    uow,
		LeaveRequestRepository: leaveRequestRepo,
		EmployeeRepository:     employeeRepo,
		ledger:                 ledger,
		recorder:               recorder,
		metrics:                m,
		now:                    time.Now,
	}
}

// SubmitLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) SubmitLeaveRequest(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	rec := audit.RecordInput{
		Actor:      audit.EmployeeActor(req.EmployeeID),
		Action:     audit.ActionSubmitLeave,
		EntityType: audit.EntityLeave,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return leave.LeaveRequestResponse{}, err
	}

	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		s.fail(ctx, rec, err)
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)
	duration := leave.LeaveDuration(req.DurationType)

	created, err := s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID:   req.EmployeeID,
		StartDate:    startDate,
		EndDate:      endDate,
		LeaveType:    leave.LeaveType(req.LeaveType),
		DurationType: duration,
		TotalDays:    leave.CalculateDays(startDate, endDate, duration),
		Reason:       req.Reason,
		Status:       workflow.StatusPending,
	})
	if err != nil {
		s.fail(ctx, rec, err)
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	resp := leave.ToLeaveRequestResponse(created)
	rec.EntityID = created.ID
	rec.Description = fmt.Sprintf("Submitted %s leave from %s to %s", created.LeaveType, req.StartDate, req.EndDate)
	rec.NewValues = map[string]any{
		"status":        created.Status,
		"leave_type":    created.LeaveType,
		"duration_type": created.DurationType,
		"start_date":    req.StartDate,
		"end_date":      req.EndDate,
		"total_days":    created.TotalDays,
	}
	auditsvc.Emit(ctx, s.recorder, rec)

	return resp, nil
}

// ReviewLeaveRequest implements leave.LeaveService. The status change and, for
// an approved comp_off request, the ledger debit commit together or not at all.
func (s *LeaveServiceImpl) ReviewLeaveRequest(ctx context.Context, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	rec := audit.RecordInput{
		Actor:      audit.ManagerActor(req.ManagerID),
		Action:     audit.ActionReviewLeave,
		EntityType: audit.EntityLeave,
		EntityID:   req.RequestID,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return leave.LeaveRequestResponse{}, err
	}
	decision, _ := workflow.ParseDecision(req.Decision)
	reviewedAt := req.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = s.now()
	}

	var (
		before leave.LeaveRequest
		after  leave.LeaveRequest
		ledger *compoff.LedgerEntry
	)
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}
		before = request

		next, err := workflow.Transition(request.Status, decision)
		if err != nil {
			return err
		}

		if next == workflow.StatusApproved && request.LeaveType == leave.LeaveTypeCompOff {
			entry, err := s.ledger.Use(ctx, request.EmployeeID, request.TotalDays, request.StartDate,
				fmt.Sprintf("leave request %s", request.ID))
			if err != nil {
				return err
			}
			ledger = &entry
		}

		request.Status = next
		request.ManagerID = &req.ManagerID
		request.ReviewedAt = &reviewedAt
		if err := s.LeaveRequestRepository.UpdateReview(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		after = request
		return nil
	})
	if err != nil {
		s.metrics.WorkflowReviewed(audit.EntityLeave, "failed")
		if before.ID != "" {
			rec.OldValues = map[string]any{"status": before.Status}
		}
		s.fail(ctx, rec, err)
		return leave.LeaveRequestResponse{}, err
	}

	s.metrics.WorkflowReviewed(audit.EntityLeave, string(after.Status))

	oldValues := map[string]any{"status": before.Status}
	newValues := map[string]any{
		"status":      after.Status,
		"manager_id":  req.ManagerID,
		"reviewed_at": reviewedAt,
	}
	if ledger != nil {
		used := ledger.Tracking
		prior := used
		prior.UsedDays = prior.UsedDays.Sub(after.TotalDays)
		prior.Recompute()
		oldValues["comp_off"] = prior.Snapshot()
		newValues["comp_off"] = used.Snapshot()
		newValues["comp_off_days_used"] = after.TotalDays
	}
	rec.Description = fmt.Sprintf("Leave request %s", after.Status)
	rec.OldValues = oldValues
	rec.NewValues = newValues
	auditsvc.Emit(ctx, s.recorder, rec)

	return leave.ToLeaveRequestResponse(after), nil
}

// GetLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := s.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.ToLeaveRequestResponse(request), nil
}

func (s *LeaveServiceImpl) fail(ctx context.Context, rec audit.RecordInput, err error) {
	rec.Status = audit.StatusFailed
	rec.ErrorMessage = err.Error()
	if rec.Description == "" {
		rec.Description = "Failed: " + rec.Action
	}
	auditsvc.Emit(ctx, s.recorder, rec)
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)
