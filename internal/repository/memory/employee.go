package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	err := r.store.write(ctx, func(t *tables) error {
		if newEmployee.ID == "" {
			newEmployee.ID = newID()
		}
		if _, exists := t.employees[newEmployee.ID]; exists {
			return employee.ErrEmployeeExists
		}
		now := r.store.now()
		newEmployee.CreatedAt = now
		newEmployee.UpdatedAt = now
		t.employees[newEmployee.ID] = newEmployee
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return newEmployee, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var found employee.Employee
	err := r.store.read(func(t *tables) error {
		e, ok := t.employees[id]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		found = e
		return nil
	})
	return found, err
}

// Delete implements employee.EmployeeRepository.
func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(t *tables) error {
		if _, ok := t.employees[id]; !ok {
			return employee.ErrEmployeeNotFound
		}
		delete(t.employees, id)
		return nil
	})
}

// CountDirectReports implements employee.EmployeeRepository.
func (r *employeeRepository) CountDirectReports(ctx context.Context, managerID string) (int64, error) {
	var count int64
	err := r.store.read(func(t *tables) error {
		for _, e := range t.employees {
			if e.ManagerID != nil && *e.ManagerID == managerID {
				count++
			}
		}
		return nil
	})
	return count, err
}
