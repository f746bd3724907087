package employee

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeExists        = errors.New("employee already exists")
	ErrManagerNotFound       = errors.New("manager not found")
	ErrEmployeeHasReferences = errors.New("employee is still referenced by other records")
)
