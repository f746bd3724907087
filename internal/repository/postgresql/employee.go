package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if newEmployee.ID == "" {
		id, err := newID()
		if err != nil {
			return employee.Employee{}, err
		}
		newEmployee.ID = id
	}

	query := `
		INSERT INTO employees (id, manager_id, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query, newEmployee.ID, newEmployee.ManagerID, newEmployee.FullName).
		Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		switch {
		case isPgError(err, uniqueViolation):
			return employee.Employee{}, employee.ErrEmployeeExists
		case isPgError(err, foreignKeyViolation):
			return employee.Employee{}, employee.ErrManagerNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return newEmployee, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, manager_id, full_name, created_at, updated_at
		FROM employees
		WHERE id = $1
	`
	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(&e.ID, &e.ManagerID, &e.FullName, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// Delete implements employee.EmployeeRepository. Rows still pointing at the
// employee make the foreign keys refuse the delete.
func (r *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return employee.ErrEmployeeHasReferences
		}
		if isNoRows(err) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// CountDirectReports implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) CountDirectReports(ctx context.Context, managerID string) (int64, error) {
	return countWhere(ctx, GetQuerier(ctx, r.db), `SELECT COUNT(*) FROM employees WHERE manager_id = $1`, managerID)
}

func countWhere(ctx context.Context, q database.Querier, query string, args ...any) (int64, error) {
	var count int64
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}
