package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
)

type auditLogRepository struct {
	store *Store
}

func NewAuditLogRepository(store *Store) audit.AuditLogRepository {
	return &auditLogRepository{store: store}
}

// Create implements audit.AuditLogRepository.
func (r *auditLogRepository) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	err := r.store.write(ctx, func(t *tables) error {
		entry.ID = newID()
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = r.store.now()
		}
		t.auditLogs = append(t.auditLogs, entry)
		return nil
	})
	if err != nil {
		return audit.Entry{}, err
	}
	return entry, nil
}

// List implements audit.AuditLogRepository. Entries are kept in insertion order,
// so walking backwards yields newest first.
func (r *auditLogRepository) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, int64, error) {
	var matched []audit.Entry
	err := r.store.read(func(t *tables) error {
		for i := len(t.auditLogs) - 1; i >= 0; i-- {
			e := t.auditLogs[i]
			if filter.Action != nil && e.Action != *filter.Action {
				continue
			}
			if filter.EntityType != nil && e.EntityType != *filter.EntityType {
				continue
			}
			if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
				continue
			}
			matched = append(matched, e)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []audit.Entry{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}
