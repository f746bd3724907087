package audit

import "context"

type AuditLogRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	// List returns entries newest first plus the total size of the filtered set.
	List(ctx context.Context, filter Filter) ([]Entry, int64, error)
}
