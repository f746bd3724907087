package audit

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
)

// Emit writes an audit entry on a best-effort basis. Business operations call it
// after their transaction has finished; the recorder logs its own failures, so
// the error is dropped here.
func Emit(ctx context.Context, recorder audit.Recorder, in audit.RecordInput) {
	if recorder == nil {
		return
	}
	_, _ = recorder.Record(ctx, in)
}
