package audit

import "errors"

var (
	// ErrSerializationFallback is never returned to callers; it tags log lines for
	// values that were stored as text instead of their structured form.
	ErrSerializationFallback = errors.New("audit value stored using textual fallback")
)
