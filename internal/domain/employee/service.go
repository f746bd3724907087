package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee hard deletes an employee nothing references. There is no
	// cascade: any reference denies the delete with ErrEmployeeHasReferences.
	DeleteEmployee(ctx context.Context, req DeleteEmployeeRequest) error
}
