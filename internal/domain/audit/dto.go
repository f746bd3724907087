package audit

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 500
)

// RecordInput carries everything needed to write one audit entry. Status
// defaults to success when empty.
type RecordInput struct {
	Actor        Actor
	Action       string
	EntityType   string
	EntityID     string
	Description  string
	OldValues    any
	NewValues    any
	Context      *RequestContext
	Status       Status
	ErrorMessage string
}

// Filter narrows an audit query. Empty fields match everything.
type Filter struct {
	Action     *string `json:"action,omitempty"`
	EntityType *string `json:"entity_type,omitempty"`
	UserID     *string `json:"user_id,omitempty"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not be negative",
		})
	}
	if f.Limit > MaxQueryLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed " + validator.Itoa(MaxQueryLimit),
		})
	}
	if f.Offset < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "offset",
			Message: "offset must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if f.Limit == 0 {
		f.Limit = DefaultQueryLimit
	}

	return nil
}

type QueryResult struct {
	Entries    []EntryResponse `json:"entries"`
	TotalCount int64           `json:"total_count"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

type EntryResponse struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"user_id"`
	ActorType    ActorType `json:"actor_type"`
	Action       string    `json:"action"`
	EntityType   string    `json:"entity_type"`
	EntityID     *string   `json:"entity_id"`
	Description  *string   `json:"description,omitempty"`
	OldValues    any       `json:"old_values,omitempty"`
	NewValues    any       `json:"new_values,omitempty"`
	IPAddress    *string   `json:"ip_address,omitempty"`
	UserAgent    *string   `json:"user_agent,omitempty"`
	Status       Status    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		ActorType:    e.ActorType,
		Action:       e.Action,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		Description:  e.Description,
		OldValues:    e.OldValues,
		NewValues:    e.NewValues,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		Status:       e.Status,
		ErrorMessage: e.ErrorMessage,
		CreatedAt:    e.CreatedAt,
	}
}
