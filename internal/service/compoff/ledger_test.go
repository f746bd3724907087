package compoff

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	auditsvc "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	ledger    *LedgerImpl
	svc       *CompOffServiceImpl
	audit     *auditsvc.AuditServiceImpl
	employees employee.EmployeeRepository
	tracking  compoff.TrackingRepository
	details   compoff.DetailRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()

	f := &fixture{
		store:     store,
		employees: memory.NewEmployeeRepository(store),
		tracking:  memory.NewCompOffTrackingRepository(store),
		details:   memory.NewCompOffDetailRepository(store),
		audit:     auditsvc.NewAuditService(memory.NewAuditLogRepository(store), m),
	}
	f.ledger = NewLedger(store, f.tracking, f.details, m, 3)
	f.svc = NewCompOffService(store, f.ledger, memory.NewCompOffRequestRepository(store), f.employees, f.audit, m)
	return f
}

func (f *fixture) newEmployee(t *testing.T, name string) string {
	t.Helper()
	e, err := f.employees.Create(context.Background(), employee.Employee{FullName: name})
	require.NoError(t, err)
	return e.ID
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func assertConserved(t *testing.T, tr compoff.Tracking) {
	t.Helper()
	assert.True(t, tr.EarnedDays.Equal(tr.UsedDays.Add(tr.ExpiredDays).Add(tr.AvailableDays)),
		"earned %s != used %s + expired %s + available %s", tr.EarnedDays, tr.UsedDays, tr.ExpiredDays, tr.AvailableDays)
	assert.False(t, tr.AvailableDays.IsNegative())
}

func TestLedger_EarnUseAndInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Ayu")

	_, err := f.ledger.Earn(ctx, emp, d("5"), date("2025-10-04"), "weekend shift")
	require.NoError(t, err)

	entry, err := f.ledger.Use(ctx, emp, d("1"), date("2025-10-20"), "leave")
	require.NoError(t, err)
	assert.True(t, entry.Tracking.AvailableDays.Equal(d("4")))

	entry, err = f.ledger.Use(ctx, emp, d("4"), date("2025-10-21"), "leave")
	require.NoError(t, err)
	assert.True(t, entry.Tracking.AvailableDays.IsZero())

	_, err = f.ledger.Use(ctx, emp, d("1"), date("2025-10-22"), "leave")
	assert.ErrorIs(t, err, compoff.ErrInsufficientBalance)

	tr, err := f.ledger.Balance(ctx, emp)
	require.NoError(t, err)
	assert.True(t, tr.AvailableDays.IsZero())
	assert.True(t, tr.UsedDays.Equal(d("5")))
	assertConserved(t, tr)

	history, err := f.ledger.History(ctx, emp)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestLedger_UseWithoutTrackingIsInsufficient(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Use(context.Background(), "nobody", d("0.5"), date("2025-10-22"), "leave")
	assert.ErrorIs(t, err, compoff.ErrInsufficientBalance)
}

func TestLedger_RejectsNonPositiveDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Earn(ctx, "e1", decimal.Zero, date("2025-10-01"), "")
	assert.ErrorIs(t, err, compoff.ErrInvalidDays)
	_, err = f.ledger.Use(ctx, "e1", d("-1"), date("2025-10-01"), "")
	assert.ErrorIs(t, err, compoff.ErrInvalidDays)
}

func TestLedger_UseAllocatesOldestBucketFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Budi")

	_, err := f.ledger.Earn(ctx, emp, d("1"), date("2025-08-09"), "")
	require.NoError(t, err)
	_, err = f.ledger.Earn(ctx, emp, d("2"), date("2025-09-13"), "")
	require.NoError(t, err)

	entry, err := f.ledger.Use(ctx, emp, d("1.5"), date("2025-09-20"), "leave")
	require.NoError(t, err)
	require.Len(t, entry.Details, 2)
	assert.Equal(t, "2025-08", entry.Details[0].EarnedMonth)
	assert.True(t, entry.Details[0].Days.Equal(d("1")))
	assert.Equal(t, "2025-09", entry.Details[1].EarnedMonth)
	assert.True(t, entry.Details[1].Days.Equal(d("0.5")))

	buckets, err := f.ledger.Buckets(ctx, emp)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.True(t, buckets[0].Remaining.IsZero())
	assert.True(t, buckets[1].Remaining.Equal(d("1.5")))
}

func TestLedger_ExpireBucketIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Citra")

	_, err := f.ledger.Earn(ctx, emp, d("2"), date("2025-07-05"), "")
	require.NoError(t, err)
	_, err = f.ledger.Use(ctx, emp, d("0.5"), date("2025-07-20"), "")
	require.NoError(t, err)

	// July bucket expires on 1 October with a 3 month window
	_, _, err = f.ledger.ExpireBucket(ctx, emp, "2025-07", date("2025-09-30"))
	assert.ErrorIs(t, err, compoff.ErrBucketNotExpired)

	days, entry, err := f.ledger.ExpireBucket(ctx, emp, "2025-07", date("2025-10-01"))
	require.NoError(t, err)
	assert.True(t, days.Equal(d("1.5")))
	assert.True(t, entry.Tracking.ExpiredDays.Equal(d("1.5")))
	assert.True(t, entry.Tracking.AvailableDays.IsZero())
	assertConserved(t, entry.Tracking)

	days, _, err = f.ledger.ExpireBucket(ctx, emp, "2025-07", date("2025-10-02"))
	require.NoError(t, err)
	assert.True(t, days.IsZero())

	tr, err := f.ledger.Balance(ctx, emp)
	require.NoError(t, err)
	assert.True(t, tr.ExpiredDays.Equal(d("1.5")))
}

func TestLedger_ExpireBucketErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.ledger.ExpireBucket(ctx, "e1", "2025/07", date("2025-12-01"))
	assert.ErrorIs(t, err, compoff.ErrInvalidMonth)

	_, _, err = f.ledger.ExpireBucket(ctx, "e1", "2025-07", date("2025-12-01"))
	assert.ErrorIs(t, err, compoff.ErrTrackingNotFound)
}

func TestLedger_ExpireDueSweepsOnlyDueBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.newEmployee(t, "Dian")
	b := f.newEmployee(t, "Eka")

	_, err := f.ledger.Earn(ctx, a, d("1"), date("2025-06-10"), "")
	require.NoError(t, err)
	_, err = f.ledger.Earn(ctx, a, d("1"), date("2025-09-10"), "")
	require.NoError(t, err)
	_, err = f.ledger.Earn(ctx, b, d("0.5"), date("2025-07-01"), "")
	require.NoError(t, err)

	summary, err := f.ledger.ExpireDue(ctx, date("2025-10-15"))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Expired)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	// a second run finds nothing new to expire
	summary, err = f.ledger.ExpireDue(ctx, date("2025-10-15"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Expired)
	assert.Equal(t, 1, summary.Skipped)

	for _, id := range []string{a, b} {
		tr, err := f.ledger.Balance(ctx, id)
		require.NoError(t, err)
		assertConserved(t, tr)
	}
	trA, _ := f.ledger.Balance(ctx, a)
	assert.True(t, trA.AvailableDays.Equal(d("1")))
}

func TestLedger_ReconciliationFailureHaltsEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Fajar")

	_, err := f.ledger.Earn(ctx, emp, d("2"), date("2025-10-01"), "")
	require.NoError(t, err)

	// corrupt the balance behind the ledger's back
	tr, err := f.tracking.GetByEmployee(ctx, emp)
	require.NoError(t, err)
	tr.EarnedDays = d("10")
	tr.Recompute()
	require.NoError(t, f.tracking.Update(ctx, tr))

	_, err = f.ledger.Use(ctx, emp, d("1"), date("2025-10-05"), "")
	assert.ErrorIs(t, err, compoff.ErrLedgerReconciliation)
	assert.True(t, f.ledger.IsHalted(emp))

	// the failed use was rolled back
	history, err := f.ledger.History(ctx, emp)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = f.ledger.Earn(ctx, emp, d("1"), date("2025-10-06"), "")
	assert.ErrorIs(t, err, compoff.ErrLedgerHalted)

	// still inconsistent, so the halt stays
	assert.ErrorIs(t, f.ledger.ResolveHalt(ctx, emp), compoff.ErrLedgerReconciliation)

	tr.EarnedDays = d("2")
	tr.Recompute()
	require.NoError(t, f.tracking.Update(ctx, tr))
	require.NoError(t, f.ledger.ResolveHalt(ctx, emp))
	assert.False(t, f.ledger.IsHalted(emp))

	_, err = f.ledger.Use(ctx, emp, d("1"), date("2025-10-07"), "")
	assert.NoError(t, err)
}

func TestLedger_JoinsCallerTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Gita")

	_, err := f.ledger.Earn(ctx, emp, d("1"), date("2025-10-01"), "")
	require.NoError(t, err)

	err = f.store.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := f.ledger.Use(ctx, emp, d("1"), date("2025-10-02"), ""); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	tr, err := f.ledger.Balance(ctx, emp)
	require.NoError(t, err)
	assert.True(t, tr.AvailableDays.Equal(d("1")))
	assert.True(t, tr.UsedDays.IsZero())
}

func TestLedger_ConservationUnderMixedOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Hadi")

	ops := []struct {
		kind string
		days string
		on   string
	}{
		{"earn", "1", "2025-01-04"},
		{"earn", "0.5", "2025-01-18"},
		{"use", "0.5", "2025-02-01"},
		{"earn", "1", "2025-03-08"},
		{"use", "1.5", "2025-03-20"},
		{"earn", "1", "2025-04-12"},
		{"expire", "2025-03", "2025-06-01"},
		{"use", "0.5", "2025-06-02"},
		{"use", "5", "2025-06-03"},
	}
	for _, op := range ops {
		var err error
		switch op.kind {
		case "earn":
			_, err = f.ledger.Earn(ctx, emp, d(op.days), date(op.on), "")
		case "use":
			_, err = f.ledger.Use(ctx, emp, d(op.days), date(op.on), "")
		case "expire":
			_, _, err = f.ledger.ExpireBucket(ctx, emp, op.days, date(op.on))
		}
		if err != nil {
			assert.ErrorIs(t, err, compoff.ErrInsufficientBalance)
		}

		tr, err := f.ledger.Balance(ctx, emp)
		require.NoError(t, err)
		assertConserved(t, tr)
		require.NoError(t, f.ledger.Reconcile(ctx, emp))
	}
}

func TestLedger_ConcurrentUseNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.newEmployee(t, "Surya")

	_, err := f.ledger.Earn(ctx, emp, d("5"), date("2025-11-08"), "")
	require.NoError(t, err)

	const callers = 20
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successes    int
		insufficient int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Use(ctx, emp, d("1"), date("2025-11-20"), "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, compoff.ErrInsufficientBalance):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, successes)
	assert.Equal(t, callers-5, insufficient)

	tr, err := f.ledger.Balance(ctx, emp)
	require.NoError(t, err)
	assert.True(t, tr.AvailableDays.IsZero())
	assert.True(t, tr.UsedDays.Equal(d("5")))
	assertConserved(t, tr)
	require.NoError(t, f.ledger.Reconcile(ctx, emp))
}
