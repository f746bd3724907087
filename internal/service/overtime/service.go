package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/worktime"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	"github.com/shopspring/decimal"
)

type OvertimeServiceImpl struct {
	uow database.UnitOfWork
	overtime.OvertimeRequestRepository
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	recorder       audit.Recorder
	metrics        *metrics.Metrics
	now            func() time.Time
}

func NewOvertimeService(
	uow database.UnitOfWork,
	overtimeRequestRepo overtime.OvertimeRequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	recorder audit.Recorder,
	m *metrics.Metrics,
) *OvertimeServiceImpl {
	return &OvertimeServiceImpl{
		uow:                       uow,
		OvertimeRequestRepository: overtimeRequestRepo,
		attendanceRepo:            attendanceRepo,
		employeeRepo:              employeeRepo,
		recorder:                  recorder,
		metrics:                   m,
		now:                       time.Now,
	}
}

// SubmitOvertimeRequest implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) SubmitOvertimeRequest(ctx context.Context, req overtime.SubmitOvertimeRequest) (overtime.OvertimeRequestResponse, error) {
	rec := audit.RecordInput{
		Actor:      audit.EmployeeActor(req.EmployeeID),
		Action:     audit.ActionSubmitOvertime,
		EntityType: audit.EntityOvertime,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return overtime.OvertimeRequestResponse{}, err
	}

	from, _ := worktime.ParseClock(req.FromTime)
	to, _ := worktime.ParseClock(req.ToTime)
	span := worktime.MinutesToHours(worktime.ElapsedMinutes(from, to))
	if req.RequestHours.GreaterThan(span) {
		err := fmt.Errorf("%w: requested %s, span %s", overtime.ErrHoursExceedSpan, req.RequestHours, span)
		s.fail(ctx, rec, err)
		return overtime.OvertimeRequestResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		s.fail(ctx, rec, err)
		return overtime.OvertimeRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	requestDate, _ := time.Parse("2006-01-02", req.RequestDate)
	created, err := s.OvertimeRequestRepository.Create(ctx, overtime.OvertimeRequest{
		EmployeeID:   req.EmployeeID,
		RequestDate:  requestDate,
		FromTime:     from.String(),
		ToTime:       to.String(),
		RequestHours: req.RequestHours,
		Reason:       req.Reason,
		Status:       workflow.StatusPending,
	})
	if err != nil {
		s.fail(ctx, rec, err)
		return overtime.OvertimeRequestResponse{}, fmt.Errorf("failed to create overtime request: %w", err)
	}

	rec.EntityID = created.ID
	rec.Description = fmt.Sprintf("Submitted %s hours of overtime for %s", created.RequestHours, req.RequestDate)
	rec.NewValues = map[string]any{
		"status":        created.Status,
		"request_date":  req.RequestDate,
		"from_time":     created.FromTime,
		"to_time":       created.ToTime,
		"request_hours": created.RequestHours,
	}
	auditsvc.Emit(ctx, s.recorder, rec)

	return overtime.ToOvertimeRequestResponse(created), nil
}

// ReviewOvertimeRequest implements overtime.OvertimeService. Approved hours are
// compared with attendance overtime for the same day; a mismatch is reported and
// logged but neither side is changed.
func (s *OvertimeServiceImpl) ReviewOvertimeRequest(ctx context.Context, req overtime.ReviewOvertimeRequest) (overtime.ReviewOvertimeResponse, error) {
	rec := audit.RecordInput{
		Actor:      audit.ManagerActor(req.ManagerID),
		Action:     audit.ActionReviewOvertime,
		EntityType: audit.EntityOvertime,
		EntityID:   req.RequestID,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return overtime.ReviewOvertimeResponse{}, err
	}
	decision, _ := workflow.ParseDecision(req.Decision)
	reviewedAt := req.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = s.now()
	}

	var (
		before         overtime.OvertimeRequest
		after          overtime.OvertimeRequest
		reconciliation *overtime.Reconciliation
	)
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.OvertimeRequestRepository.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}
		before = request

		next, err := workflow.Transition(request.Status, decision)
		if err != nil {
			return err
		}

		request.Status = next
		request.ManagerID = &req.ManagerID
		request.ReviewedAt = &reviewedAt
		if next == workflow.StatusApproved {
			request.ApprovedAt = &reviewedAt
		}
		if err := s.OvertimeRequestRepository.UpdateReview(ctx, request); err != nil {
			return fmt.Errorf("failed to update overtime request: %w", err)
		}
		after = request

		if next != workflow.StatusApproved {
			return nil
		}
		r, err := s.reconcile(ctx, request.EmployeeID, request.RequestDate)
		if err != nil {
			return err
		}
		reconciliation = &r
		return nil
	})
	if err != nil {
		s.metrics.WorkflowReviewed(audit.EntityOvertime, "failed")
		if before.ID != "" {
			rec.OldValues = map[string]any{"status": before.Status}
		}
		s.fail(ctx, rec, err)
		return overtime.ReviewOvertimeResponse{}, err
	}

	s.metrics.WorkflowReviewed(audit.EntityOvertime, string(after.Status))

	newValues := map[string]any{
		"status":      after.Status,
		"manager_id":  req.ManagerID,
		"reviewed_at": reviewedAt,
	}
	if after.ApprovedAt != nil {
		newValues["approved_at"] = *after.ApprovedAt
	}
	if reconciliation != nil {
		newValues["reconciliation"] = reconciliation
		if reconciliation.Mismatch {
			slog.Warn("approved overtime does not match attendance",
				"request_id", after.ID,
				"employee_id", after.EmployeeID,
				"date", reconciliation.Date,
				"approved_hours", reconciliation.ApprovedHours.String(),
				"attendance_found", reconciliation.AttendanceFound,
				"difference", reconciliation.Difference.String(),
			)
		}
	}
	rec.Description = fmt.Sprintf("Overtime request %s", after.Status)
	rec.OldValues = map[string]any{"status": before.Status}
	rec.NewValues = newValues
	auditsvc.Emit(ctx, s.recorder, rec)

	return overtime.ReviewOvertimeResponse{
		Request:        overtime.ToOvertimeRequestResponse(after),
		Reconciliation: reconciliation,
	}, nil
}

// GetOvertimeRequest implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) GetOvertimeRequest(ctx context.Context, id string) (overtime.OvertimeRequestResponse, error) {
	request, err := s.OvertimeRequestRepository.GetByID(ctx, id)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	return overtime.ToOvertimeRequestResponse(request), nil
}

// AuthoritativeOvertime implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) AuthoritativeOvertime(ctx context.Context, employeeID string, date time.Time) (decimal.Decimal, error) {
	hours, err := s.OvertimeRequestRepository.SumApprovedHours(ctx, employeeID, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved overtime: %w", err)
	}
	return hours, nil
}

func (s *OvertimeServiceImpl) reconcile(ctx context.Context, employeeID string, date time.Time) (overtime.Reconciliation, error) {
	approved, err := s.OvertimeRequestRepository.SumApprovedHours(ctx, employeeID, date)
	if err != nil {
		return overtime.Reconciliation{}, fmt.Errorf("failed to sum approved overtime: %w", err)
	}
	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return overtime.Reconciliation{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	var attendanceHours *decimal.Decimal
	if record != nil {
		h := record.OvertimeHours
		attendanceHours = &h
	}
	return overtime.Reconcile(employeeID, date, attendanceHours, approved), nil
}

func (s *OvertimeServiceImpl) fail(ctx context.Context, rec audit.RecordInput, err error) {
	rec.Status = audit.StatusFailed
	rec.ErrorMessage = err.Error()
	if rec.Description == "" {
		rec.Description = "Failed: " + rec.Action
	}
	auditsvc.Emit(ctx, s.recorder, rec)
}

var _ overtime.OvertimeService = (*OvertimeServiceImpl)(nil)
