package compoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

const DefaultExpiryMonths = 3

type LedgerImpl struct {
	uow          database.UnitOfWork
	tracking     compoff.TrackingRepository
	details      compoff.DetailRepository
	metrics      *metrics.Metrics
	expiryMonths int

	haltMu sync.Mutex
	halted map[string]string
}

func NewLedger(
	uow database.UnitOfWork,
	trackingRepo compoff.TrackingRepository,
	detailRepo compoff.DetailRepository,
	m *metrics.Metrics,
	expiryMonths int,
) *LedgerImpl {
	if expiryMonths <= 0 {
		expiryMonths = DefaultExpiryMonths
	}
	return &LedgerImpl{
		uow:          uow,
		tracking:     trackingRepo,
		details:      detailRepo,
		metrics:      m,
		expiryMonths: expiryMonths,
		halted:       make(map[string]string),
	}
}

// ExpiryMonths implements compoff.Ledger.
func (l *LedgerImpl) ExpiryMonths() int {
	return l.expiryMonths
}

// Earn implements compoff.Ledger.
func (l *LedgerImpl) Earn(ctx context.Context, employeeID string, days decimal.Decimal, earnedDate time.Time, note string) (compoff.LedgerEntry, error) {
	if !days.IsPositive() {
		return compoff.LedgerEntry{}, compoff.ErrInvalidDays
	}
	if err := l.checkHalt(employeeID); err != nil {
		l.observe("earn", err)
		return compoff.LedgerEntry{}, err
	}

	var entry compoff.LedgerEntry
	err := l.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := l.tracking.EnsureForUpdate(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to lock comp-off tracking: %w", err)
		}

		detail, err := l.details.Append(ctx, compoff.Detail{
			EmployeeID:  employeeID,
			TrackingID:  t.ID,
			Type:        compoff.DetailEarned,
			Days:        days,
			Date:        earnedDate,
			EarnedMonth: earnedDate.Format(compoff.MonthLayout),
			Note:        optional(note),
		})
		if err != nil {
			return fmt.Errorf("failed to append earned detail: %w", err)
		}

		t.EarnedDays = t.EarnedDays.Add(days)
		t.EarnedDate = &earnedDate
		t.Recompute()
		if err := l.tracking.Update(ctx, t); err != nil {
			return fmt.Errorf("failed to update comp-off tracking: %w", err)
		}

		if err := l.verify(ctx, t); err != nil {
			return err
		}

		entry = compoff.LedgerEntry{Tracking: t, Details: []compoff.Detail{detail}}
		return nil
	})
	l.observe("earn", err)
	if err != nil {
		return compoff.LedgerEntry{}, err
	}
	return entry, nil
}

// Use implements compoff.Ledger. The debit is spread over buckets oldest month
// first, one used detail per bucket touched.
func (l *LedgerImpl) Use(ctx context.Context, employeeID string, days decimal.Decimal, date time.Time, reason string) (compoff.LedgerEntry, error) {
	if !days.IsPositive() {
		return compoff.LedgerEntry{}, compoff.ErrInvalidDays
	}
	if err := l.checkHalt(employeeID); err != nil {
		l.observe("use", err)
		return compoff.LedgerEntry{}, err
	}

	var entry compoff.LedgerEntry
	err := l.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := l.tracking.GetByEmployeeForUpdate(ctx, employeeID)
		if errors.Is(err, compoff.ErrTrackingNotFound) {
			return fmt.Errorf("%w: requested %s, available 0", compoff.ErrInsufficientBalance, days)
		}
		if err != nil {
			return fmt.Errorf("failed to lock comp-off tracking: %w", err)
		}

		if days.GreaterThan(t.AvailableDays) {
			return fmt.Errorf("%w: requested %s, available %s", compoff.ErrInsufficientBalance, days, t.AvailableDays)
		}

		details, err := l.details.ListByEmployee(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to list comp-off details: %w", err)
		}

		remaining := days
		var appended []compoff.Detail
		for _, b := range compoff.BuildBuckets(details) {
			if !remaining.IsPositive() {
				break
			}
			if !b.Remaining.IsPositive() {
				continue
			}
			take := decimal.Min(b.Remaining, remaining)
			detail, err := l.details.Append(ctx, compoff.Detail{
				EmployeeID:  employeeID,
				TrackingID:  t.ID,
				Type:        compoff.DetailUsed,
				Days:        take,
				Date:        date,
				EarnedMonth: b.Month,
				Note:        optional(reason),
			})
			if err != nil {
				return fmt.Errorf("failed to append used detail: %w", err)
			}
			appended = append(appended, detail)
			remaining = remaining.Sub(take)
		}
		if remaining.IsPositive() {
			// balance says there is enough but the buckets disagree
			l.halt(employeeID, "buckets do not cover available balance")
			return fmt.Errorf("%w: buckets short by %s days", compoff.ErrLedgerReconciliation, remaining)
		}

		t.UsedDays = t.UsedDays.Add(days)
		t.Recompute()
		if err := l.tracking.Update(ctx, t); err != nil {
			return fmt.Errorf("failed to update comp-off tracking: %w", err)
		}

		if err := l.verify(ctx, t); err != nil {
			return err
		}

		entry = compoff.LedgerEntry{Tracking: t, Details: appended}
		return nil
	})
	l.observe("use", err)
	if err != nil {
		return compoff.LedgerEntry{}, err
	}
	return entry, nil
}

// ExpireBucket implements compoff.Ledger.
func (l *LedgerImpl) ExpireBucket(ctx context.Context, employeeID, month string, asOf time.Time) (decimal.Decimal, compoff.LedgerEntry, error) {
	expiresAt, err := compoff.ExpiresAt(month, l.expiryMonths)
	if err != nil {
		return decimal.Zero, compoff.LedgerEntry{}, err
	}
	if asOf.Before(expiresAt) {
		return decimal.Zero, compoff.LedgerEntry{}, fmt.Errorf("%w: %s expires on %s", compoff.ErrBucketNotExpired, month, expiresAt.Format("2006-01-02"))
	}
	if err := l.checkHalt(employeeID); err != nil {
		l.observe("expire", err)
		return decimal.Zero, compoff.LedgerEntry{}, err
	}

	expired := decimal.Zero
	var entry compoff.LedgerEntry
	err = l.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := l.tracking.GetByEmployeeForUpdate(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to lock comp-off tracking: %w", err)
		}
		entry.Tracking = t

		details, err := l.details.ListByEmployee(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to list comp-off details: %w", err)
		}

		var bucket *compoff.Bucket
		for _, b := range compoff.BuildBuckets(details) {
			if b.Month == month {
				b := b
				bucket = &b
				break
			}
		}
		if bucket == nil || !bucket.Remaining.IsPositive() {
			return nil
		}

		detail, err := l.details.Append(ctx, compoff.Detail{
			EmployeeID:  employeeID,
			TrackingID:  t.ID,
			Type:        compoff.DetailExpired,
			Days:        bucket.Remaining,
			Date:        asOf,
			EarnedMonth: month,
			Note:        optional(fmt.Sprintf("expired after %d months", l.expiryMonths)),
		})
		if err != nil {
			return fmt.Errorf("failed to append expired detail: %w", err)
		}

		t.ExpiredDays = t.ExpiredDays.Add(bucket.Remaining)
		t.Recompute()
		if err := l.tracking.Update(ctx, t); err != nil {
			return fmt.Errorf("failed to update comp-off tracking: %w", err)
		}

		if err := l.verify(ctx, t); err != nil {
			return err
		}

		expired = bucket.Remaining
		entry = compoff.LedgerEntry{Tracking: t, Details: []compoff.Detail{detail}}
		return nil
	})
	l.observe("expire", err)
	if err != nil {
		return decimal.Zero, compoff.LedgerEntry{}, err
	}
	return expired, entry, nil
}

// ExpireDue implements compoff.Ledger. Each bucket is expired in its own
// transaction, so an interrupted sweep can simply be run again.
func (l *LedgerImpl) ExpireDue(ctx context.Context, asOf time.Time) (compoff.SweepSummary, error) {
	summary := compoff.SweepSummary{AsOf: asOf}

	employeeIDs, err := l.tracking.ListEmployeeIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list comp-off employees: %w", err)
	}

	for _, employeeID := range employeeIDs {
		if l.IsHalted(employeeID) {
			summary.Add(compoff.BucketExpiry{
				EmployeeID: employeeID,
				Outcome:    compoff.SweepFailed,
				Error:      compoff.ErrLedgerHalted.Error(),
			})
			continue
		}

		buckets, err := l.Buckets(ctx, employeeID)
		if err != nil {
			summary.Add(compoff.BucketExpiry{
				EmployeeID: employeeID,
				Outcome:    compoff.SweepFailed,
				Error:      err.Error(),
			})
			continue
		}

		for _, b := range buckets {
			if !b.Remaining.IsPositive() {
				continue
			}
			result := compoff.BucketExpiry{EmployeeID: employeeID, Month: b.Month}

			days, entry, err := l.ExpireBucket(ctx, employeeID, b.Month, asOf)
			switch {
			case errors.Is(err, compoff.ErrBucketNotExpired):
				result.Outcome = compoff.SweepSkipped
			case err != nil:
				result.Outcome = compoff.SweepFailed
				result.Error = err.Error()
				slog.Warn("comp-off bucket expiry failed",
					"employee_id", employeeID,
					"month", b.Month,
					"error", err,
				)
			case days.IsZero():
				result.Outcome = compoff.SweepSkipped
			default:
				after := entry.Tracking
				before := after
				before.ExpiredDays = before.ExpiredDays.Sub(days)
				before.Recompute()
				beforeSnap, afterSnap := before.Snapshot(), after.Snapshot()

				result.Outcome = compoff.SweepExpired
				result.Days = days
				result.Before = &beforeSnap
				result.After = &afterSnap
			}
			summary.Add(result)
		}
	}

	slog.Info("comp-off expiry sweep finished",
		"as_of", asOf.Format("2006-01-02"),
		"expired", summary.Expired,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// Balance implements compoff.Ledger.
func (l *LedgerImpl) Balance(ctx context.Context, employeeID string) (compoff.Tracking, error) {
	t, err := l.tracking.GetByEmployee(ctx, employeeID)
	if err != nil {
		return compoff.Tracking{}, err
	}
	return t, nil
}

// Buckets implements compoff.Ledger.
func (l *LedgerImpl) Buckets(ctx context.Context, employeeID string) ([]compoff.Bucket, error) {
	details, err := l.details.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comp-off details: %w", err)
	}
	return compoff.BuildBuckets(details), nil
}

// History implements compoff.Ledger.
func (l *LedgerImpl) History(ctx context.Context, employeeID string) ([]compoff.Detail, error) {
	details, err := l.details.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comp-off details: %w", err)
	}
	return details, nil
}

// Reconcile implements compoff.Ledger. A mismatch halts the employee.
func (l *LedgerImpl) Reconcile(ctx context.Context, employeeID string) error {
	t, err := l.tracking.GetByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	return l.verify(ctx, t)
}

// IsHalted implements compoff.Ledger.
func (l *LedgerImpl) IsHalted(employeeID string) bool {
	l.haltMu.Lock()
	defer l.haltMu.Unlock()
	_, ok := l.halted[employeeID]
	return ok
}

// ResolveHalt implements compoff.Ledger. The halt is only lifted when the
// ledger reconciles again.
func (l *LedgerImpl) ResolveHalt(ctx context.Context, employeeID string) error {
	t, err := l.tracking.GetByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if err := l.check(ctx, t); err != nil {
		return err
	}

	l.haltMu.Lock()
	delete(l.halted, employeeID)
	l.haltMu.Unlock()

	slog.Info("comp-off ledger halt resolved", "employee_id", employeeID)
	return nil
}

func (l *LedgerImpl) checkHalt(employeeID string) error {
	l.haltMu.Lock()
	defer l.haltMu.Unlock()
	if reason, ok := l.halted[employeeID]; ok {
		return fmt.Errorf("%w: %s", compoff.ErrLedgerHalted, reason)
	}
	return nil
}

func (l *LedgerImpl) halt(employeeID, reason string) {
	l.haltMu.Lock()
	l.halted[employeeID] = reason
	l.haltMu.Unlock()

	slog.Error("comp-off ledger halted",
		"employee_id", employeeID,
		"reason", reason,
		"error", compoff.ErrLedgerReconciliation,
	)
}

// check compares the tracking totals with the detail sums.
func (l *LedgerImpl) check(ctx context.Context, t compoff.Tracking) error {
	if !t.Consistent() {
		return fmt.Errorf("%w: available %s does not equal earned %s - used %s - expired %s",
			compoff.ErrLedgerReconciliation, t.AvailableDays, t.EarnedDays, t.UsedDays, t.ExpiredDays)
	}

	sums, err := l.details.SumByType(ctx, t.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to sum comp-off details: %w", err)
	}

	fields := []struct {
		kind  compoff.DetailType
		total decimal.Decimal
	}{
		{compoff.DetailEarned, t.EarnedDays},
		{compoff.DetailUsed, t.UsedDays},
		{compoff.DetailExpired, t.ExpiredDays},
	}
	for _, f := range fields {
		if !sums[f.kind].Equal(f.total) {
			return fmt.Errorf("%w: %s details sum to %s, tracking has %s",
				compoff.ErrLedgerReconciliation, f.kind, sums[f.kind], f.total)
		}
	}
	return nil
}

// verify runs check and halts the employee on a reconciliation failure.
func (l *LedgerImpl) verify(ctx context.Context, t compoff.Tracking) error {
	err := l.check(ctx, t)
	if errors.Is(err, compoff.ErrLedgerReconciliation) {
		l.halt(t.EmployeeID, err.Error())
	}
	return err
}

func (l *LedgerImpl) observe(operation string, err error) {
	l.metrics.LedgerOperation(operation, outcomeOf(err))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, compoff.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, compoff.ErrLedgerReconciliation):
		return "reconciliation_failure"
	case errors.Is(err, compoff.ErrLedgerHalted):
		return "halted"
	default:
		return "error"
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ compoff.Ledger = (*LedgerImpl)(nil)
