package overtime

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc         *OvertimeServiceImpl
	audit       *auditsvc.AuditServiceImpl
	attendances attendance.AttendanceRepository
	employee    string
	manager     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()
	employees := memory.NewEmployeeRepository(store)

	f := &fixture{
		attendances: memory.NewAttendanceRepository(store),
		audit:       auditsvc.NewAuditService(memory.NewAuditLogRepository(store), m),
	}
	f.svc = NewOvertimeService(store, memory.NewOvertimeRequestRepository(store), f.attendances, employees, f.audit, m)

	emp, err := employees.Create(context.Background(), employee.Employee{FullName: "Dimas"})
	require.NoError(t, err)
	mgr, err := employees.Create(context.Background(), employee.Employee{FullName: "Ayu"})
	require.NoError(t, err)
	f.employee, f.manager = emp.ID, mgr.ID
	return f
}

func (f *fixture) submit(t *testing.T, date, from, to, hours string) overtime.OvertimeRequestResponse {
	t.Helper()
	resp, err := f.svc.SubmitOvertimeRequest(context.Background(), overtime.SubmitOvertimeRequest{
		EmployeeID:   f.employee,
		RequestDate:  date,
		FromTime:     from,
		ToTime:       to,
		RequestHours: decimal.RequireFromString(hours),
		Reason:       "release",
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) review(id string, decision workflow.Decision) (overtime.ReviewOvertimeResponse, error) {
	return f.svc.ReviewOvertimeRequest(context.Background(), overtime.ReviewOvertimeRequest{
		RequestID:  id,
		ManagerID:  f.manager,
		Decision:   string(decision),
		ReviewedAt: time.Date(2025, 11, 21, 10, 0, 0, 0, time.UTC),
	})
}

func (f *fixture) checkout(t *testing.T, date string, overtimeHours string) {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	in, out := "09:00", "20:00"
	_, err = f.attendances.Create(context.Background(), attendance.Attendance{
		EmployeeID:    f.employee,
		Date:          d,
		InTime:        &in,
		OutTime:       &out,
		BreakMinutes:  60,
		WorkedHours:   decimal.NewFromInt(10),
		OvertimeHours: decimal.RequireFromString(overtimeHours),
		Status:        attendance.StatusOnTime,
	})
	require.NoError(t, err)
}

func (f *fixture) reviewAudits(t *testing.T) []audit.EntryResponse {
	t.Helper()
	action := audit.ActionReviewOvertime
	res, err := f.audit.Query(context.Background(), audit.Filter{Action: &action})
	require.NoError(t, err)
	return res.Entries
}

func TestSubmit_Pending(t *testing.T) {
	f := newFixture(t)

	resp := f.submit(t, "2025-11-20", "18:00", "21:00", "3")
	assert.Equal(t, workflow.StatusPending, resp.Status)
	assert.Nil(t, resp.ApprovedAt)
	assert.Nil(t, resp.ManagerID)
	assert.Equal(t, "2025-11-20", resp.RequestDate)
}

func TestSubmit_OvernightSpan(t *testing.T) {
	f := newFixture(t)

	resp := f.submit(t, "2025-11-20", "22:00", "01:30", "3.5")
	assert.Equal(t, "22:00", resp.FromTime)
	assert.Equal(t, "01:30", resp.ToTime)
}

func TestSubmit_HoursExceedSpan(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitOvertimeRequest(context.Background(), overtime.SubmitOvertimeRequest{
		EmployeeID:   f.employee,
		RequestDate:  "2025-11-20",
		FromTime:     "18:00",
		ToTime:       "20:00",
		RequestHours: decimal.RequireFromString("2.5"),
		Reason:       "release",
	})
	assert.ErrorIs(t, err, overtime.ErrHoursExceedSpan)

	action := audit.ActionSubmitOvertime
	res, err := f.audit.Query(context.Background(), audit.Filter{Action: &action})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, audit.StatusFailed, res.Entries[0].Status)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitOvertimeRequest(context.Background(), overtime.SubmitOvertimeRequest{
		EmployeeID:   f.employee,
		RequestDate:  "20-11-2025",
		FromTime:     "6pm",
		ToTime:       "21:00",
		RequestHours: decimal.Zero,
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "request_date")
	assert.Contains(t, fields, "from_time")
	assert.Contains(t, fields, "request_hours")
	assert.Contains(t, fields, "reason")
}

func TestReview_ApproveMatchesAttendance(t *testing.T) {
	f := newFixture(t)
	f.checkout(t, "2025-11-20", "2")

	submitted := f.submit(t, "2025-11-20", "18:00", "20:00", "2")
	resp, err := f.review(submitted.ID, workflow.DecisionApprove)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusApproved, resp.Request.Status)
	require.NotNil(t, resp.Request.ApprovedAt)
	assert.Equal(t, *resp.Request.ReviewedAt, *resp.Request.ApprovedAt)

	require.NotNil(t, resp.Reconciliation)
	assert.True(t, resp.Reconciliation.AttendanceFound)
	assert.False(t, resp.Reconciliation.Mismatch)
	assert.True(t, resp.Reconciliation.Difference.IsZero())
}

func TestReview_ApproveReportsMismatchWithoutChangingAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.checkout(t, "2025-11-20", "1.5")

	submitted := f.submit(t, "2025-11-20", "18:00", "21:00", "3")
	resp, err := f.review(submitted.ID, workflow.DecisionApprove)
	require.NoError(t, err)

	require.NotNil(t, resp.Reconciliation)
	assert.True(t, resp.Reconciliation.Mismatch)
	assert.Equal(t, "1.5", resp.Reconciliation.Difference.String())

	d, _ := time.Parse("2006-01-02", "2025-11-20")
	record, err := f.attendances.GetByEmployeeAndDate(ctx, f.employee, d)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "1.5", record.OvertimeHours.String())

	entries := f.reviewAudits(t)
	require.Len(t, entries, 1)
	newValues := entries[0].NewValues.(map[string]any)
	assert.Equal(t, true, newValues["reconciliation"].(map[string]any)["mismatch"])
}

func TestReview_ApproveWithoutAttendanceIsMismatch(t *testing.T) {
	f := newFixture(t)

	submitted := f.submit(t, "2025-11-22", "10:00", "12:00", "2")
	resp, err := f.review(submitted.ID, workflow.DecisionApprove)
	require.NoError(t, err)

	require.NotNil(t, resp.Reconciliation)
	assert.False(t, resp.Reconciliation.AttendanceFound)
	assert.True(t, resp.Reconciliation.Mismatch)
}

func TestReview_RejectSkipsReconciliation(t *testing.T) {
	f := newFixture(t)

	submitted := f.submit(t, "2025-11-20", "18:00", "20:00", "2")
	resp, err := f.review(submitted.ID, workflow.DecisionReject)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusRejected, resp.Request.Status)
	assert.Nil(t, resp.Request.ApprovedAt)
	assert.NotNil(t, resp.Request.ReviewedAt)
	assert.Nil(t, resp.Reconciliation)
}

func TestReview_AlreadyReviewed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted := f.submit(t, "2025-11-20", "18:00", "20:00", "2")
	first, err := f.review(submitted.ID, workflow.DecisionReject)
	require.NoError(t, err)

	_, err = f.review(submitted.ID, workflow.DecisionApprove)
	assert.ErrorIs(t, err, workflow.ErrAlreadyReviewed)

	got, err := f.svc.GetOvertimeRequest(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Request, got)

	entries := f.reviewAudits(t)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.StatusFailed, entries[0].Status)
	assert.Equal(t, audit.StatusSuccess, entries[1].Status)
	for _, e := range entries {
		assert.Equal(t, audit.EntityOvertime, e.EntityType)
		assert.Equal(t, submitted.ID, *e.EntityID)
	}
}

func TestAuthoritativeOvertime_SumsApprovedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.submit(t, "2025-11-20", "18:00", "20:00", "2")
	b := f.submit(t, "2025-11-20", "21:00", "22:30", "1.5")
	c := f.submit(t, "2025-11-20", "06:00", "07:00", "1")
	f.submit(t, "2025-11-21", "18:00", "20:00", "2")

	_, err := f.review(a.ID, workflow.DecisionApprove)
	require.NoError(t, err)
	_, err = f.review(b.ID, workflow.DecisionApprove)
	require.NoError(t, err)
	_, err = f.review(c.ID, workflow.DecisionReject)
	require.NoError(t, err)

	d, _ := time.Parse("2006-01-02", "2025-11-20")
	hours, err := f.svc.AuthoritativeOvertime(ctx, f.employee, d)
	require.NoError(t, err)
	assert.Equal(t, "3.5", hours.String())
}
