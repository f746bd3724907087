package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/worktime"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	"github.com/shopspring/decimal"
)

// Policy holds the company-wide values used when computing worked hours.
type Policy struct {
	DefaultBreakMinutes int
	StandardWorkHours   decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		DefaultBreakMinutes: worktime.DefaultBreakMinutes,
		StandardWorkHours:   decimal.NewFromInt(8),
	}
}

type AttendanceServiceImpl struct {
	uow database.UnitOfWork
	attendance.AttendanceRepository
	employeeRepo employee.EmployeeRepository
	recorder     audit.Recorder
	metrics      *metrics.Metrics
	policy       Policy
}

func NewAttendanceService(
	uow database.UnitOfWork,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	recorder audit.Recorder,
	m *metrics.Metrics,
	policy Policy,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		uow:                  uow,
		AttendanceRepository: attendanceRepo,
		employeeRepo:         employeeRepo,
		recorder:             recorder,
		metrics:              m,
		policy:               policy,
	}
}

// computed is the derived part of an attendance record.
type computed struct {
	breakMinutes  int
	workedHours   decimal.Decimal
	overtimeHours decimal.Decimal
}

func (a *AttendanceServiceImpl) compute(inTime, outTime string, breakMinutes *int) (computed, error) {
	brk := a.policy.DefaultBreakMinutes
	if breakMinutes != nil {
		brk = *breakMinutes
	}
	res, err := worktime.Compute(inTime, outTime, &brk)
	if err != nil {
		return computed{}, err
	}
	overtimeHours := res.WorkedHours.Sub(a.policy.StandardWorkHours)
	if overtimeHours.IsNegative() {
		overtimeHours = decimal.Zero
	}
	return computed{
		breakMinutes:  res.BreakMinutes,
		workedHours:   res.WorkedHours,
		overtimeHours: overtimeHours,
	}, nil
}

// RecordCheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordCheckOut(ctx context.Context, req attendance.RecordCheckOutRequest) (attendance.AttendanceResponse, error) {
	rec := audit.RecordInput{
		Actor:      audit.EmployeeActor(req.EmployeeID),
		Action:     audit.ActionRecordAttendance,
		EntityType: audit.EntityAttendance,
	}

	if err := req.Validate(); err != nil {
		a.fail(ctx, rec, err)
		return attendance.AttendanceResponse{}, err
	}

	c, err := a.compute(req.InTime, req.OutTime, req.BreakMinutes)
	if err != nil {
		a.fail(ctx, rec, err)
		return attendance.AttendanceResponse{}, err
	}

	if _, err := a.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		a.fail(ctx, rec, err)
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	in, _ := worktime.ParseClock(req.InTime)
	out, _ := worktime.ParseClock(req.OutTime)
	inTime, outTime := in.String(), out.String()

	created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
		EmployeeID:    req.EmployeeID,
		Date:          date,
		InTime:        &inTime,
		OutTime:       &outTime,
		BreakMinutes:  c.breakMinutes,
		WorkedHours:   c.workedHours,
		OvertimeHours: c.overtimeHours,
		Status:        attendance.Status(req.Status),
	})
	if err != nil {
		a.fail(ctx, rec, err)
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	rec.EntityID = created.ID
	rec.Description = fmt.Sprintf("Checked out %s, worked %s hours", req.Date, created.WorkedHours)
	rec.NewValues = map[string]any{
		"date":           req.Date,
		"in_time":        inTime,
		"out_time":       outTime,
		"break_minutes":  created.BreakMinutes,
		"worked_hours":   created.WorkedHours,
		"overtime_hours": created.OvertimeHours,
		"status":         created.Status,
	}
	auditsvc.Emit(ctx, a.recorder, rec)

	return attendance.ToAttendanceResponse(created), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.ToAttendanceResponse(record), nil
}

// CorrectBatch implements attendance.AttendanceService. Records are processed one
// at a time, each in its own transaction; a failing record never stops the rest.
func (a *AttendanceServiceImpl) CorrectBatch(ctx context.Context, req attendance.CorrectBatchRequest) (attendance.CorrectionSummary, error) {
	actor := audit.SystemActor()
	if req.ActorID != nil {
		actor = audit.ManagerActor(*req.ActorID)
	}

	if err := req.Validate(); err != nil {
		a.fail(ctx, audit.RecordInput{
			Actor:      actor,
			Action:     audit.ActionCorrectAttendanceRun,
			EntityType: audit.EntityAttendance,
		}, err)
		return attendance.CorrectionSummary{}, err
	}

	summary := attendance.CorrectionSummary{Results: make([]attendance.CorrectionResult, 0, len(req.Records))}
	for _, input := range req.Records {
		result := a.correct(ctx, actor, input)
		a.metrics.CorrectionOutcome(string(result.Outcome))
		if result.Outcome == attendance.OutcomeError {
			slog.Warn("attendance correction failed",
				"record_id", result.RecordID,
				"error", result.Error,
			)
		}
		summary.Add(result)
	}

	status := audit.StatusSuccess
	switch {
	case summary.Errored == summary.Total:
		status = audit.StatusFailed
	case summary.Errored > 0:
		status = audit.StatusPartial
	}
	batch := audit.RecordInput{
		Actor:       actor,
		Action:      audit.ActionCorrectAttendanceRun,
		EntityType:  audit.EntityAttendance,
		Description: fmt.Sprintf("Corrected %d of %d attendance records", summary.Changed, summary.Total),
		NewValues: map[string]any{
			"total":     summary.Total,
			"changed":   summary.Changed,
			"unchanged": summary.Unchanged,
			"errored":   summary.Errored,
		},
		Status: status,
	}
	if summary.Errored > 0 {
		batch.ErrorMessage = fmt.Sprintf("%d records failed", summary.Errored)
	}
	auditsvc.Emit(ctx, a.recorder, batch)

	slog.Info("attendance correction batch finished",
		"total", summary.Total,
		"changed", summary.Changed,
		"unchanged", summary.Unchanged,
		"errored", summary.Errored,
	)

	return summary, nil
}

func (a *AttendanceServiceImpl) correct(ctx context.Context, actor audit.Actor, input attendance.CorrectionInput) attendance.CorrectionResult {
	result := attendance.CorrectionResult{RecordID: input.RecordID}

	var before, after attendance.Attendance
	err := a.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := a.AttendanceRepository.GetByID(ctx, input.RecordID)
		if err != nil {
			return err
		}
		before = record

		breakMinutes := input.BreakMinutes
		if breakMinutes == nil {
			brk := record.BreakMinutes
			breakMinutes = &brk
		}
		c, err := a.compute(input.InTime, input.OutTime, breakMinutes)
		if err != nil {
			return err
		}

		in, _ := worktime.ParseClock(input.InTime)
		out, _ := worktime.ParseClock(input.OutTime)
		inTime, outTime := in.String(), out.String()

		after = record
		after.InTime = &inTime
		after.OutTime = &outTime
		after.BreakMinutes = c.breakMinutes
		after.WorkedHours = c.workedHours
		after.OvertimeHours = c.overtimeHours
		if sameComputed(before, after) {
			return nil
		}
		if err := a.AttendanceRepository.UpdateComputed(ctx, after); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		result.Outcome = attendance.OutcomeError
		result.Error = err.Error()
		return result
	}

	oldHours, newHours := before.WorkedHours, after.WorkedHours
	result.OldWorkedHours = &oldHours
	result.NewWorkedHours = &newHours
	if sameComputed(before, after) {
		result.Outcome = attendance.OutcomeUnchanged
		return result
	}
	result.Outcome = attendance.OutcomeChanged

	auditsvc.Emit(ctx, a.recorder, audit.RecordInput{
		Actor:       actor,
		Action:      audit.ActionCorrectAttendance,
		EntityType:  audit.EntityAttendance,
		EntityID:    before.ID,
		Description: fmt.Sprintf("Worked hours corrected from %s to %s", oldHours, newHours),
		OldValues:   computedValues(before),
		NewValues:   computedValues(after),
	})
	return result
}

// RecalculateAll implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecalculateAll(ctx context.Context) (attendance.CorrectionSummary, error) {
	records, err := a.AttendanceRepository.ListWithClockTimes(ctx)
	if err != nil {
		return attendance.CorrectionSummary{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	if len(records) == 0 {
		return attendance.CorrectionSummary{Results: []attendance.CorrectionResult{}}, nil
	}

	inputs := make([]attendance.CorrectionInput, 0, len(records))
	for _, r := range records {
		brk := r.BreakMinutes
		inputs = append(inputs, attendance.CorrectionInput{
			RecordID:     r.ID,
			InTime:       *r.InTime,
			OutTime:      *r.OutTime,
			BreakMinutes: &brk,
		})
	}
	return a.CorrectBatch(ctx, attendance.CorrectBatchRequest{Records: inputs})
}

func sameComputed(a, b attendance.Attendance) bool {
	return equalClock(a.InTime, b.InTime) &&
		equalClock(a.OutTime, b.OutTime) &&
		a.BreakMinutes == b.BreakMinutes &&
		a.WorkedHours.Equal(b.WorkedHours) &&
		a.OvertimeHours.Equal(b.OvertimeHours)
}

func equalClock(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func computedValues(a attendance.Attendance) map[string]any {
	return map[string]any{
		"in_time":        a.InTime,
		"out_time":       a.OutTime,
		"break_minutes":  a.BreakMinutes,
		"worked_hours":   a.WorkedHours,
		"overtime_hours": a.OvertimeHours,
	}
}

func (a *AttendanceServiceImpl) fail(ctx context.Context, rec audit.RecordInput, err error) {
	rec.Status = audit.StatusFailed
	rec.ErrorMessage = err.Error()
	if rec.Description == "" {
		rec.Description = "Failed: " + rec.Action
	}
	auditsvc.Emit(ctx, a.recorder, rec)
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)
