package compoff

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger keeps the comp-off balance and its detail log in step. Every mutating
// call runs inside a unit of work and joins the caller's transaction when the
// ctx already carries one. Ledger writes no audit entries; its callers do.
type Ledger interface {
	Earn(ctx context.Context, employeeID string, days decimal.Decimal, earnedDate time.Time, note string) (LedgerEntry, error)
	Use(ctx context.Context, employeeID string, days decimal.Decimal, date time.Time, reason string) (LedgerEntry, error)
	// ExpireBucket returns the days moved to expired. Zero means the bucket had
	// nothing left, which makes repeated calls no-ops.
	ExpireBucket(ctx context.Context, employeeID, month string, asOf time.Time) (decimal.Decimal, LedgerEntry, error)
	ExpireDue(ctx context.Context, asOf time.Time) (SweepSummary, error)

	Balance(ctx context.Context, employeeID string) (Tracking, error)
	Buckets(ctx context.Context, employeeID string) ([]Bucket, error)
	History(ctx context.Context, employeeID string) ([]Detail, error)

	Reconcile(ctx context.Context, employeeID string) error
	IsHalted(employeeID string) bool
	ResolveHalt(ctx context.Context, employeeID string) error
	ExpiryMonths() int
}

// CompOffService is the audited surface over the ledger and comp-off requests.
type CompOffService interface {
	Earn(ctx context.Context, req EarnRequest) (BalanceResponse, error)
	ExpireBucket(ctx context.Context, req ExpireBucketRequest) (ExpireBucketResponse, error)
	ExpireDue(ctx context.Context, asOf time.Time) (SweepSummary, error)
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
	GetHistory(ctx context.Context, employeeID string) ([]DetailResponse, error)
	ResolveHalt(ctx context.Context, employeeID string) (BalanceResponse, error)

	SubmitRequest(ctx context.Context, req SubmitRequestRequest) (RequestResponse, error)
	ReviewRequest(ctx context.Context, req ReviewRequestRequest) (RequestResponse, error)
	GetRequest(ctx context.Context, id string) (RequestResponse, error)
}
