package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Delete(ctx context.Context, id string) error
	CountDirectReports(ctx context.Context, managerID string) (int64, error)
}
