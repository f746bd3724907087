package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/auditjson"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
)

type AuditServiceImpl struct {
	audit.AuditLogRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAuditService(auditLogRepository audit.AuditLogRepository, m *metrics.Metrics) *AuditServiceImpl {
	return &AuditServiceImpl{
		AuditLogRepository: auditLogRepository,
		metrics:            m,
		now:                time.Now,
	}
}

// Record implements audit.Service. Values are normalized into JSON-safe form
// first; anything that cannot be represented exactly is stored as text and
// logged. A failed write is logged and counted before the error is returned.
func (s *AuditServiceImpl) Record(ctx context.Context, in audit.RecordInput) (audit.Entry, error) {
	oldValues := s.normalize(in, "old_values", in.OldValues)
	newValues := s.normalize(in, "new_values", in.NewValues)

	status := in.Status
	if status == "" {
		status = audit.StatusSuccess
	}

	actorType := in.Actor.Type
	if actorType == "" {
		actorType = audit.ActorSystem
	}

	entry := audit.Entry{
		UserID:       in.Actor.UserID,
		ActorType:    actorType,
		Action:       in.Action,
		EntityType:   in.EntityType,
		EntityID:     optional(in.EntityID),
		Description:  optional(in.Description),
		OldValues:    oldValues,
		NewValues:    newValues,
		Status:       status,
		ErrorMessage: optional(in.ErrorMessage),
		CreatedAt:    s.now(),
	}

	rc := in.Context
	if rc == nil {
		if fromCtx, ok := audit.RequestContextFrom(ctx); ok {
			rc = &fromCtx
		}
	}
	if rc != nil {
		entry.IPAddress = optional(rc.IPAddress)
		entry.UserAgent = optional(rc.UserAgent)
	}

	created, err := s.AuditLogRepository.Create(ctx, entry)
	if err != nil {
		s.metrics.AuditWriteFailed()
		slog.Error("failed to write audit entry",
			"error", err,
			"action", in.Action,
			"entity_type", in.EntityType,
			"entity_id", in.EntityID,
			"status", status,
		)
		return audit.Entry{}, fmt.Errorf("failed to write audit entry: %w", err)
	}

	s.metrics.AuditWritten(string(status))
	return created, nil
}

// Query implements audit.Service.
func (s *AuditServiceImpl) Query(ctx context.Context, filter audit.Filter) (audit.QueryResult, error) {
	if err := filter.Validate(); err != nil {
		return audit.QueryResult{}, err
	}

	entries, total, err := s.AuditLogRepository.List(ctx, filter)
	if err != nil {
		return audit.QueryResult{}, fmt.Errorf("failed to list audit entries: %w", err)
	}

	responses := make([]audit.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, audit.ToEntryResponse(e))
	}

	return audit.QueryResult{
		Entries:    responses,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (s *AuditServiceImpl) normalize(in audit.RecordInput, field string, v any) any {
	out, fallbacks := auditjson.Normalize(v)
	for _, fb := range fallbacks {
		slog.Warn("audit value stored using textual fallback",
			"error", audit.ErrSerializationFallback,
			"action", in.Action,
			"entity_type", in.EntityType,
			"field", field,
			"path", fb.Path,
			"reason", fb.Reason,
		)
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ audit.Service = (*AuditServiceImpl)(nil)
