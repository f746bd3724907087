package employee

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    *EmployeeServiceImpl
	audit  *auditsvc.AuditServiceImpl
	leaves leave.LeaveRequestRepository
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		audit:  auditsvc.NewAuditService(memory.NewAuditLogRepository(store), metrics.New()),
		leaves: memory.NewLeaveRequestRepository(store),
	}
	f.svc = NewEmployeeService(store, memory.NewEmployeeRepository(store), Referrers{
		Attendance:       memory.NewAttendanceRepository(store),
		CompOffTracking:  memory.NewCompOffTrackingRepository(store),
		CompOffRequests:  memory.NewCompOffRequestRepository(store),
		LeaveRequests:    f.leaves,
		OvertimeRequests: memory.NewOvertimeRequestRepository(store),
	}, f.audit)
	return f
}

func (f *fixture) create(t *testing.T, name string, managerID *string) employee.EmployeeResponse {
	t.Helper()
	resp, err := f.svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{FullName: name, ManagerID: managerID})
	require.NoError(t, err)
	return resp
}

func TestCreateEmployee(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mgr := f.create(t, "Sari", nil)
	emp := f.create(t, "Rina", &mgr.ID)
	assert.Equal(t, mgr.ID, *emp.ManagerID)

	got, err := f.svc.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rina", got.FullName)

	action := audit.ActionCreateEmployee
	res, err := f.audit.Query(ctx, audit.Filter{Action: &action})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
}

func TestCreateEmployee_UnknownManager(t *testing.T) {
	f := newFixture()

	missing := "0194f3a2-7c1e-7d2a-9b3c-1a2b3c4d5e6f"
	_, err := f.svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{FullName: "Rina", ManagerID: &missing})
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)
}

func TestCreateEmployee_DuplicateID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id := "0194f3a2-7c1e-7d2a-9b3c-1a2b3c4d5e6f"
	_, err := f.svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{ID: id, FullName: "Rina"})
	require.NoError(t, err)
	_, err = f.svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{ID: id, FullName: "Rina"})
	assert.ErrorIs(t, err, employee.ErrEmployeeExists)
}

func TestDeleteEmployee_Unreferenced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	emp := f.create(t, "Rina", nil)
	require.NoError(t, f.svc.DeleteEmployee(ctx, employee.DeleteEmployeeRequest{ID: emp.ID}))

	_, err := f.svc.GetEmployee(ctx, emp.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeleteEmployee_DeniedWhenReferenced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	emp := f.create(t, "Rina", nil)
	day := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.leaves.Create(ctx, leave.LeaveRequest{
		EmployeeID:   emp.ID,
		StartDate:    day,
		EndDate:      day,
		LeaveType:    leave.LeaveTypePaid,
		DurationType: leave.LeaveDurationFullDay,
		TotalDays:    decimal.NewFromInt(1),
		Reason:       "family",
	})
	require.NoError(t, err)

	err = f.svc.DeleteEmployee(ctx, employee.DeleteEmployeeRequest{ID: emp.ID})
	assert.ErrorIs(t, err, employee.ErrEmployeeHasReferences)

	_, err = f.svc.GetEmployee(ctx, emp.ID)
	assert.NoError(t, err)

	action := audit.ActionDeleteEmployee
	res, err := f.audit.Query(ctx, audit.Filter{Action: &action})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, audit.StatusFailed, res.Entries[0].Status)
	refs := res.Entries[0].OldValues.(map[string]any)
	assert.Equal(t, int64(1), refs["leave_requests"])
}

func TestDeleteEmployee_DeniedWithDirectReports(t *testing.T) {
	f := newFixture()

	mgr := f.create(t, "Sari", nil)
	f.create(t, "Rina", &mgr.ID)

	err := f.svc.DeleteEmployee(context.Background(), employee.DeleteEmployeeRequest{ID: mgr.ID})
	assert.ErrorIs(t, err, employee.ErrEmployeeHasReferences)
}

func TestDeleteEmployee_NotFound(t *testing.T) {
	f := newFixture()

	err := f.svc.DeleteEmployee(context.Background(), employee.DeleteEmployeeRequest{ID: "missing"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
