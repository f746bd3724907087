package compoff

import "errors"

var (
	ErrInsufficientBalance    = errors.New("insufficient comp-off balance")
	ErrLedgerReconciliation   = errors.New("comp-off ledger does not reconcile with its details")
	ErrLedgerHalted           = errors.New("comp-off ledger writes are halted for this employee")
	ErrBucketNotExpired       = errors.New("comp-off bucket has not reached its expiry date")
	ErrInvalidMonth           = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidDays            = errors.New("days must be greater than zero")
	ErrTrackingNotFound       = errors.New("comp-off tracking not found")
	ErrCompOffRequestNotFound = errors.New("comp-off request not found")
)
