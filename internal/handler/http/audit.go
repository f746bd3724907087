package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type AuditHandlerImpl struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) AuditHandler {
	return &AuditHandlerImpl{auditService: auditService}
}

// List implements AuditHandler.
func (h *AuditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter audit.Filter
	var errs validator.ValidationErrors

	if action := q.Get("action"); action != "" {
		filter.Action = &action
	}
	if entityType := q.Get("entity_type"); entityType != "" {
		filter.EntityType = &entityType
	}
	if userID := q.Get("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if limit := q.Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a number"})
		}
		filter.Limit = l
	}
	if offset := q.Get("offset"); offset != "" {
		o, err := strconv.Atoi(offset)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "offset", Message: "offset must be a number"})
		}
		filter.Offset = o
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.auditService.Query(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Entries, &response.Meta{
		Page:       result.Offset/result.Limit + 1,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit)),
	})
}
