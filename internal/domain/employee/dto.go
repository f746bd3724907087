package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	ActorID   *string `json:"-"`
	ID        string  `json:"id,omitempty"`
	ManagerID *string `json:"manager_id,omitempty"`
	FullName  string  `json:"full_name"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	if r.ID != "" && !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}
	if r.ManagerID != nil && !validator.IsValidUUID(*r.ManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DeleteEmployeeRequest struct {
	ActorID *string
	ID      string
}

type EmployeeResponse struct {
	ID        string    `json:"id"`
	ManagerID *string   `json:"manager_id"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func ToEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		ManagerID: e.ManagerID,
		FullName:  e.FullName,
		CreatedAt: e.CreatedAt,
	}
}
