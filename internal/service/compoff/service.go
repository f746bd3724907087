package compoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
)

type CompOffServiceImpl struct {
	uow       database.UnitOfWork
	ledger    compoff.Ledger
	requests  compoff.RequestRepository
	employees employee.EmployeeRepository
	recorder  audit.Recorder
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewCompOffService(
	uow database.UnitOfWork,
	ledger compoff.Ledger,
	requestRepo compoff.RequestRepository,
	employeeRepo employee.EmployeeRepository,
	recorder audit.Recorder,
	m *metrics.Metrics,
) *CompOffServiceImpl {
	return &CompOffServiceImpl{
		uow:       uow,
		ledger:    ledger,
		requests:  requestRepo,
		employees: employeeRepo,
		recorder:  recorder,
		metrics:   m,
		now:       time.Now,
	}
}

// Earn implements compoff.CompOffService.
func (s *CompOffServiceImpl) Earn(ctx context.Context, req compoff.EarnRequest) (compoff.BalanceResponse, error) {
	actor := actorOrSystem(req.ActorID, audit.ActorManager)
	rec := audit.RecordInput{
		Actor:      actor,
		Action:     audit.ActionEarnCompOff,
		EntityType: audit.EntityCompOff,
		EntityID:   req.EmployeeID,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return compoff.BalanceResponse{}, err
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		s.fail(ctx, rec, err)
		return compoff.BalanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	before := s.snapshot(ctx, req.EmployeeID)
	earnedDate, _ := time.Parse("2006-01-02", req.EarnedDate)

	entry, err := s.ledger.Earn(ctx, req.EmployeeID, req.Days, earnedDate, req.Note)
	if err != nil {
		rec.OldValues = before
		s.fail(ctx, rec, err)
		return compoff.BalanceResponse{}, fmt.Errorf("failed to earn comp-off: %w", err)
	}

	rec.Description = fmt.Sprintf("Earned %s comp-off days for %s", req.Days, earnedDate.Format(compoff.MonthLayout))
	rec.OldValues = before
	rec.NewValues = map[string]any{
		"balance":      entry.Tracking.Snapshot(),
		"earned_month": earnedDate.Format(compoff.MonthLayout),
		"days":         req.Days,
	}
	auditsvc.Emit(ctx, s.recorder, rec)

	return s.GetBalance(ctx, req.EmployeeID)
}

// ExpireBucket implements compoff.CompOffService.
func (s *CompOffServiceImpl) ExpireBucket(ctx context.Context, req compoff.ExpireBucketRequest) (compoff.ExpireBucketResponse, error) {
	rec := audit.RecordInput{
		Actor:      actorOrSystem(req.ActorID, audit.ActorManager),
		Action:     audit.ActionExpireCompOff,
		EntityType: audit.EntityCompOff,
		EntityID:   req.EmployeeID,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return compoff.ExpireBucketResponse{}, err
	}

	asOf := s.now()
	if req.AsOf != "" {
		asOf, _ = time.Parse("2006-01-02", req.AsOf)
	}
	if err := s.checkAsOf(asOf); err != nil {
		s.fail(ctx, rec, err)
		return compoff.ExpireBucketResponse{}, err
	}

	before := s.snapshot(ctx, req.EmployeeID)
	days, entry, err := s.ledger.ExpireBucket(ctx, req.EmployeeID, req.Month, asOf)
	if err != nil {
		rec.OldValues = before
		s.fail(ctx, rec, err)
		return compoff.ExpireBucketResponse{}, fmt.Errorf("failed to expire comp-off bucket: %w", err)
	}

	if days.IsPositive() {
		rec.Description = fmt.Sprintf("Expired %s comp-off days from %s", days, req.Month)
		rec.OldValues = before
		rec.NewValues = map[string]any{
			"balance":      entry.Tracking.Snapshot(),
			"earned_month": req.Month,
			"expired_days": days,
		}
		auditsvc.Emit(ctx, s.recorder, rec)
	}

	return compoff.ExpireBucketResponse{
		EmployeeID:  req.EmployeeID,
		Month:       req.Month,
		ExpiredDays: days,
		Balance:     entry.Tracking.Snapshot(),
	}, nil
}

// ExpireDue implements compoff.CompOffService. Every expired bucket gets its own
// audit entry, followed by one entry for the sweep as a whole.
func (s *CompOffServiceImpl) ExpireDue(ctx context.Context, asOf time.Time) (compoff.SweepSummary, error) {
	if err := s.checkAsOf(asOf); err != nil {
		s.fail(ctx, audit.RecordInput{
			Actor:      audit.SystemActor(),
			Action:     audit.ActionExpireCompOffSweep,
			EntityType: audit.EntityCompOff,
		}, err)
		return compoff.SweepSummary{AsOf: asOf}, err
	}

	summary, err := s.ledger.ExpireDue(ctx, asOf)
	if err != nil {
		s.fail(ctx, audit.RecordInput{
			Actor:      audit.SystemActor(),
			Action:     audit.ActionExpireCompOffSweep,
			EntityType: audit.EntityCompOff,
		}, err)
		return summary, err
	}

	for _, r := range summary.Results {
		switch r.Outcome {
		case compoff.SweepExpired:
			auditsvc.Emit(ctx, s.recorder, audit.RecordInput{
				Actor:       audit.SystemActor(),
				Action:      audit.ActionExpireCompOff,
				EntityType:  audit.EntityCompOff,
				EntityID:    r.EmployeeID,
				Description: fmt.Sprintf("Expired %s comp-off days from %s", r.Days, r.Month),
				OldValues:   r.Before,
				NewValues: map[string]any{
					"balance":      r.After,
					"earned_month": r.Month,
					"expired_days": r.Days,
				},
			})
		case compoff.SweepFailed:
			auditsvc.Emit(ctx, s.recorder, audit.RecordInput{
				Actor:        audit.SystemActor(),
				Action:       audit.ActionExpireCompOff,
				EntityType:   audit.EntityCompOff,
				EntityID:     r.EmployeeID,
				Description:  fmt.Sprintf("Failed to expire comp-off bucket %s", r.Month),
				Status:       audit.StatusFailed,
				ErrorMessage: r.Error,
			})
		case compoff.SweepSkipped:
		}
	}

	status := audit.StatusSuccess
	if summary.Failed > 0 {
		status = audit.StatusPartial
		if summary.Expired == 0 && summary.Skipped == 0 {
			status = audit.StatusFailed
		}
	}
	auditsvc.Emit(ctx, s.recorder, audit.RecordInput{
		Actor:       audit.SystemActor(),
		Action:      audit.ActionExpireCompOffSweep,
		EntityType:  audit.EntityCompOff,
		Description: fmt.Sprintf("Comp-off expiry sweep as of %s", asOf.Format("2006-01-02")),
		NewValues: map[string]any{
			"as_of":   asOf,
			"expired": summary.Expired,
			"skipped": summary.Skipped,
			"failed":  summary.Failed,
		},
		Status: status,
	})

	return summary, nil
}

// GetBalance implements compoff.CompOffService. An employee who never earned
// comp-off has a zero balance.
func (s *CompOffServiceImpl) GetBalance(ctx context.Context, employeeID string) (compoff.BalanceResponse, error) {
	t, err := s.ledger.Balance(ctx, employeeID)
	if err != nil && !errors.Is(err, compoff.ErrTrackingNotFound) {
		return compoff.BalanceResponse{}, fmt.Errorf("failed to get comp-off balance: %w", err)
	}

	buckets, err := s.ledger.Buckets(ctx, employeeID)
	if err != nil {
		return compoff.BalanceResponse{}, err
	}

	resp := compoff.BalanceResponse{
		EmployeeID: employeeID,
		Snapshot:   t.Snapshot(),
		EarnedDate: t.EarnedDate,
		Halted:     s.ledger.IsHalted(employeeID),
		Buckets:    make([]compoff.BucketResponse, 0, len(buckets)),
	}
	for _, b := range buckets {
		expiresAt, _ := compoff.ExpiresAt(b.Month, s.ledger.ExpiryMonths())
		resp.Buckets = append(resp.Buckets, compoff.BucketResponse{
			Month:     b.Month,
			Earned:    b.Earned,
			Used:      b.Used,
			Expired:   b.Expired,
			Remaining: b.Remaining,
			ExpiresAt: expiresAt.Format("2006-01-02"),
		})
	}
	return resp, nil
}

// GetHistory implements compoff.CompOffService.
func (s *CompOffServiceImpl) GetHistory(ctx context.Context, employeeID string) ([]compoff.DetailResponse, error) {
	details, err := s.ledger.History(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]compoff.DetailResponse, 0, len(details))
	for _, d := range details {
		resp = append(resp, compoff.ToDetailResponse(d))
	}
	return resp, nil
}

// ResolveHalt implements compoff.CompOffService.
func (s *CompOffServiceImpl) ResolveHalt(ctx context.Context, employeeID string) (compoff.BalanceResponse, error) {
	if err := s.ledger.ResolveHalt(ctx, employeeID); err != nil {
		return compoff.BalanceResponse{}, fmt.Errorf("failed to resolve ledger halt: %w", err)
	}
	return s.GetBalance(ctx, employeeID)
}

// SubmitRequest implements compoff.CompOffService.
func (s *CompOffServiceImpl) SubmitRequest(ctx context.Context, req compoff.SubmitRequestRequest) (compoff.RequestResponse, error) {
	rec := audit.RecordInput{
		Actor:      audit.EmployeeActor(req.EmployeeID),
		Action:     audit.ActionSubmitCompOff,
		EntityType: audit.EntityCompOffRequest,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return compoff.RequestResponse{}, err
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		s.fail(ctx, rec, err)
		return compoff.RequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	workedDate, _ := time.Parse("2006-01-02", req.WorkedDate)
	created, err := s.requests.Create(ctx, compoff.Request{
		EmployeeID: req.EmployeeID,
		WorkedDate: workedDate,
		Days:       req.Days,
		Reason:     req.Reason,
		Status:     workflow.StatusPending,
	})
	if err != nil {
		s.fail(ctx, rec, err)
		return compoff.RequestResponse{}, fmt.Errorf("failed to create comp-off request: %w", err)
	}

	resp := compoff.ToRequestResponse(created)
	rec.EntityID = created.ID
	rec.Description = fmt.Sprintf("Submitted comp-off request for %s", req.WorkedDate)
	rec.NewValues = resp
	auditsvc.Emit(ctx, s.recorder, rec)

	return resp, nil
}

// ReviewRequest implements compoff.CompOffService. Approval credits the ledger
// in the same transaction as the status change.
func (s *CompOffServiceImpl) ReviewRequest(ctx context.Context, req compoff.ReviewRequestRequest) (compoff.RequestResponse, error) {
	rec := audit.RecordInput{
		Actor:      audit.ManagerActor(req.ManagerID),
		Action:     audit.ActionReviewCompOff,
		EntityType: audit.EntityCompOffRequest,
		EntityID:   req.RequestID,
	}

	if err := req.Validate(); err != nil {
		s.fail(ctx, rec, err)
		return compoff.RequestResponse{}, err
	}
	decision, _ := workflow.ParseDecision(req.Decision)
	reviewedAt := req.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = s.now()
	}

	var (
		before  compoff.Request
		after   compoff.Request
		balance *compoff.Snapshot
	)
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}
		before = request

		next, err := workflow.Transition(request.Status, decision)
		if err != nil {
			return err
		}

		if next == workflow.StatusApproved {
			entry, err := s.ledger.Earn(ctx, request.EmployeeID, request.Days, request.WorkedDate,
				fmt.Sprintf("comp-off request %s", request.ID))
			if err != nil {
				return err
			}
			snap := entry.Tracking.Snapshot()
			balance = &snap
		}

		request.Status = next
		request.ManagerID = &req.ManagerID
		request.ReviewedAt = &reviewedAt
		if err := s.requests.UpdateReview(ctx, request); err != nil {
			return fmt.Errorf("failed to update comp-off request: %w", err)
		}
		after = request
		return nil
	})
	if err != nil {
		s.metrics.WorkflowReviewed(audit.EntityCompOffRequest, "failed")
		if before.ID != "" {
			rec.OldValues = map[string]any{"status": before.Status}
		}
		s.fail(ctx, rec, err)
		return compoff.RequestResponse{}, err
	}

	s.metrics.WorkflowReviewed(audit.EntityCompOffRequest, string(after.Status))
	newValues := map[string]any{
		"status":      after.Status,
		"manager_id":  req.ManagerID,
		"reviewed_at": reviewedAt,
	}
	if balance != nil {
		newValues["balance"] = balance
		newValues["earned_days"] = after.Days
	}
	rec.Description = fmt.Sprintf("Comp-off request %s", after.Status)
	rec.OldValues = map[string]any{"status": before.Status}
	rec.NewValues = newValues
	auditsvc.Emit(ctx, s.recorder, rec)

	return compoff.ToRequestResponse(after), nil
}

// GetRequest implements compoff.CompOffService.
func (s *CompOffServiceImpl) GetRequest(ctx context.Context, id string) (compoff.RequestResponse, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return compoff.RequestResponse{}, err
	}
	return compoff.ToRequestResponse(request), nil
}

// checkAsOf keeps expiry on the calendar: a bucket may only be expired once
// today is past its window, never by naming a later date.
func (s *CompOffServiceImpl) checkAsOf(asOf time.Time) error {
	if asOf.Format("2006-01-02") > s.now().Format("2006-01-02") {
		return validator.ValidationErrors{{
			Field:   "as_of",
			Message: "as_of must not be in the future",
		}}
	}
	return nil
}

func (s *CompOffServiceImpl) snapshot(ctx context.Context, employeeID string) compoff.Snapshot {
	t, err := s.ledger.Balance(ctx, employeeID)
	if err != nil && !errors.Is(err, compoff.ErrTrackingNotFound) {
		slog.Warn("failed to read comp-off balance for audit", "employee_id", employeeID, "error", err)
	}
	return t.Snapshot()
}

func (s *CompOffServiceImpl) fail(ctx context.Context, rec audit.RecordInput, err error) {
	rec.Status = audit.StatusFailed
	rec.ErrorMessage = err.Error()
	if rec.Description == "" {
		rec.Description = "Failed: " + rec.Action
	}
	auditsvc.Emit(ctx, s.recorder, rec)
}

func actorOrSystem(id *string, kind audit.ActorType) audit.Actor {
	if id == nil || *id == "" {
		return audit.SystemActor()
	}
	return audit.Actor{UserID: id, Type: kind}
}

var _ compoff.CompOffService = (*CompOffServiceImpl)(nil)
