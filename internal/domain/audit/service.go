package audit

import "context"

// Recorder writes audit entries. Business operations must not fail because an
// audit write failed.
type Recorder interface {
	Record(ctx context.Context, in RecordInput) (Entry, error)
}

type Service interface {
	Recorder
	Query(ctx context.Context, filter Filter) (QueryResult, error)
}
