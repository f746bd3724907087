package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type auditLogRepositoryImpl struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.AuditLogRepository {
	return &auditLogRepositoryImpl{db: db}
}

// Create implements audit.AuditLogRepository. Values must already be JSON-safe.
func (r *auditLogRepositoryImpl) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return audit.Entry{}, err
	}
	entry.ID = id

	oldValues, err := marshalValues(entry.OldValues)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to encode old_values: %w", err)
	}
	newValues, err := marshalValues(entry.NewValues)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to encode new_values: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, actor_type, action, entity_type, entity_id, description,
			old_values, new_values, ip_address, user_agent, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = q.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ActorType,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Description,
		oldValues,
		newValues,
		entry.IPAddress,
		entry.UserAgent,
		entry.Status,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to insert audit log: %w", err)
	}
	return entry, nil
}

// List implements audit.AuditLogRepository.
func (r *auditLogRepositoryImpl) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []any
	)
	if filter.Action != nil {
		args = append(args, *filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.EntityType != nil {
		args = append(args, *filter.EntityType)
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id::text = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, actor_type, action, entity_type, entity_id, description,
			old_values, new_values, ip_address, user_agent, status, error_message, created_at
		FROM audit_logs
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0, filter.Limit)
	for rows.Next() {
		var (
			e         audit.Entry
			oldValues []byte
			newValues []byte
		)
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.ActorType,
			&e.Action,
			&e.EntityType,
			&e.EntityID,
			&e.Description,
			&oldValues,
			&newValues,
			&e.IPAddress,
			&e.UserAgent,
			&e.Status,
			&e.ErrorMessage,
			&e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if e.OldValues, err = unmarshalValues(oldValues); err != nil {
			return nil, 0, fmt.Errorf("failed to decode old_values: %w", err)
		}
		if e.NewValues, err = unmarshalValues(newValues); err != nil {
			return nil, 0, fmt.Errorf("failed to decode new_values: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	return entries, total, nil
}

func marshalValues(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalValues(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
