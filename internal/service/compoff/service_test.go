package compoff

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) auditEntries(t *testing.T, action string) []audit.EntryResponse {
	t.Helper()
	res, err := f.audit.Query(context.Background(), audit.Filter{Action: &action, Limit: audit.MaxQueryLimit})
	require.NoError(t, err)
	return res.Entries
}

func TestService_EarnWritesAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Indah")
	admin := "admin-1"

	balance, err := f.svc.Earn(ctx, compoff.EarnRequest{
		ActorID:    &admin,
		EmployeeID: emp,
		Days:       d("1"),
		EarnedDate: "2025-11-08",
		Note:       "saturday stock take",
	})
	require.NoError(t, err)
	assert.True(t, balance.AvailableDays.Equal(d("1")))
	require.Len(t, balance.Buckets, 1)
	assert.Equal(t, "2026-02-01", balance.Buckets[0].ExpiresAt)

	entries := f.auditEntries(t, audit.ActionEarnCompOff)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusSuccess, entries[0].Status)
	assert.Equal(t, emp, *entries[0].EntityID)
	assert.Equal(t, audit.ActorManager, entries[0].ActorType)
}

func TestService_EarnValidationFailureIsAudited(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Earn(context.Background(), compoff.EarnRequest{EmployeeID: "x", Days: d("0"), EarnedDate: "2025-11-08"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	entries := f.auditEntries(t, audit.ActionEarnCompOff)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusFailed, entries[0].Status)
	assert.NotNil(t, entries[0].ErrorMessage)
}

func TestService_GetBalanceWithoutTracking(t *testing.T) {
	f := newFixture(t)
	emp := f.newEmployee(t, "Joko")

	balance, err := f.svc.GetBalance(context.Background(), emp)
	require.NoError(t, err)
	assert.True(t, balance.AvailableDays.IsZero())
	assert.Empty(t, balance.Buckets)
	assert.False(t, balance.Halted)
}

func TestService_RequestApprovalCreditsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Kartika")
	mgr := f.newEmployee(t, "Lukman")

	submitted, err := f.svc.SubmitRequest(ctx, compoff.SubmitRequestRequest{
		EmployeeID: emp,
		WorkedDate: "2025-11-15",
		Days:       d("0.5"),
		Reason:     "half day on-call",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending, submitted.Status)

	reviewed, err := f.svc.ReviewRequest(ctx, compoff.ReviewRequestRequest{
		RequestID: submitted.ID,
		ManagerID: mgr,
		Decision:  string(workflow.DecisionApprove),
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, reviewed.Status)
	assert.Equal(t, mgr, *reviewed.ManagerID)
	assert.NotNil(t, reviewed.ReviewedAt)

	balance, err := f.svc.GetBalance(ctx, emp)
	require.NoError(t, err)
	assert.True(t, balance.EarnedDays.Equal(d("0.5")))

	// terminal requests cannot be reviewed again
	_, err = f.svc.ReviewRequest(ctx, compoff.ReviewRequestRequest{
		RequestID: submitted.ID,
		ManagerID: mgr,
		Decision:  string(workflow.DecisionReject),
	})
	assert.ErrorIs(t, err, workflow.ErrAlreadyReviewed)

	balance, err = f.svc.GetBalance(ctx, emp)
	require.NoError(t, err)
	assert.True(t, balance.EarnedDays.Equal(d("0.5")))

	entries := f.auditEntries(t, audit.ActionReviewCompOff)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.StatusFailed, entries[0].Status)
	assert.Equal(t, audit.StatusSuccess, entries[1].Status)
	for _, e := range entries {
		assert.Equal(t, audit.EntityCompOffRequest, e.EntityType)
		assert.Equal(t, submitted.ID, *e.EntityID)
	}
}

func TestService_RequestRejectionHasNoLedgerEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Mira")

	submitted, err := f.svc.SubmitRequest(ctx, compoff.SubmitRequestRequest{
		EmployeeID: emp,
		WorkedDate: "2025-11-16",
		Days:       d("1"),
		Reason:     "sunday deployment",
	})
	require.NoError(t, err)

	reviewed, err := f.svc.ReviewRequest(ctx, compoff.ReviewRequestRequest{
		RequestID: submitted.ID,
		ManagerID: "mgr",
		Decision:  string(workflow.DecisionReject),
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, reviewed.Status)

	_, err = f.ledger.Balance(ctx, emp)
	assert.ErrorIs(t, err, compoff.ErrTrackingNotFound)
}

func TestService_SubmitRequestRejectsOddDays(t *testing.T) {
	f := newFixture(t)
	emp := f.newEmployee(t, "Nadia")

	_, err := f.svc.SubmitRequest(context.Background(), compoff.SubmitRequestRequest{
		EmployeeID: emp,
		WorkedDate: "2025-11-16",
		Days:       d("2"),
		Reason:     "too much",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "days")
}

func TestService_ExpireDueAuditsEachBucketAndTheSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Oki")

	_, err := f.ledger.Earn(ctx, emp, d("1"), date("2025-05-03"), "")
	require.NoError(t, err)
	_, err = f.ledger.Earn(ctx, emp, d("1"), date("2025-06-07"), "")
	require.NoError(t, err)

	summary, err := f.svc.ExpireDue(ctx, date("2025-09-15"))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Expired)

	assert.Len(t, f.auditEntries(t, audit.ActionExpireCompOff), 2)
	sweeps := f.auditEntries(t, audit.ActionExpireCompOffSweep)
	require.Len(t, sweeps, 1)
	assert.Equal(t, audit.StatusSuccess, sweeps[0].Status)
	assert.Equal(t, audit.ActorSystem, sweeps[0].ActorType)

	// second run expires nothing and adds only a sweep entry
	summary, err = f.svc.ExpireDue(ctx, date("2025-09-15"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Expired)
	assert.Len(t, f.auditEntries(t, audit.ActionExpireCompOff), 2)
	assert.Len(t, f.auditEntries(t, audit.ActionExpireCompOffSweep), 2)
}

func TestService_ExpireBucketRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Putri")

	_, err := f.ledger.Earn(ctx, emp, d("1"), date("2025-01-11"), "")
	require.NoError(t, err)

	resp, err := f.svc.ExpireBucket(ctx, compoff.ExpireBucketRequest{EmployeeID: emp, Month: "2025-01", AsOf: "2025-04-01"})
	require.NoError(t, err)
	assert.True(t, resp.ExpiredDays.Equal(d("1")))
	assert.True(t, resp.Balance.AvailableDays.IsZero())

	_, err = f.svc.ExpireBucket(ctx, compoff.ExpireBucketRequest{EmployeeID: emp, Month: "2025-02", AsOf: "2025-04-01"})
	assert.ErrorIs(t, err, compoff.ErrBucketNotExpired)
}

func TestService_ExpireRejectsFutureAsOf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.now = func() time.Time { return date("2025-06-10") }
	emp := f.newEmployee(t, "Rudi")

	_, err := f.ledger.Earn(ctx, emp, d("2"), date("2025-06-03"), "")
	require.NoError(t, err)

	// 2025-09-15 is past the bucket's window, but not yet reached
	_, err = f.svc.ExpireBucket(ctx, compoff.ExpireBucketRequest{EmployeeID: emp, Month: "2025-06", AsOf: "2025-09-15"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "as_of", verrs[0].Field)

	_, err = f.svc.ExpireBucket(ctx, compoff.ExpireBucketRequest{EmployeeID: emp, Month: "2025-06", AsOf: "2099-01-01"})
	require.ErrorAs(t, err, &verrs)

	_, err = f.svc.ExpireBucket(ctx, compoff.ExpireBucketRequest{EmployeeID: emp, Month: "2025-06", AsOf: "2025-06-10"})
	assert.ErrorIs(t, err, compoff.ErrBucketNotExpired)

	summary, err := f.svc.ExpireDue(ctx, date("2025-09-15"))
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, 0, summary.Expired)

	balance, err := f.svc.GetBalance(ctx, emp)
	require.NoError(t, err)
	assert.True(t, balance.AvailableDays.Equal(d("2")))
	assert.True(t, balance.ExpiredDays.IsZero())

	expiries := f.auditEntries(t, audit.ActionExpireCompOff)
	require.Len(t, expiries, 3)
	for _, e := range expiries {
		assert.Equal(t, audit.StatusFailed, e.Status)
	}
	sweeps := f.auditEntries(t, audit.ActionExpireCompOffSweep)
	require.Len(t, sweeps, 1)
	assert.Equal(t, audit.StatusFailed, sweeps[0].Status)
}
