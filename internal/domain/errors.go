package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. Repositories and services return
// these; the HTTP layer maps them to status codes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrDuplicateEmail       = errors.New("email already registered")
	ErrDuplicateNumber      = errors.New("contract number already in use")
	ErrDuplicateServiceName = errors.New("service name already in use")

	ErrUnknownOwner     = errors.New("owner does not exist")
	ErrUnknownService   = errors.New("one or more services do not exist")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrEmptyServiceSet  = errors.New("contract must reference at least one service")
	ErrInvalidNumber    = errors.New("contract number must be 3 to 20 letters, digits and dashes")
	ErrInvalidStatus    = errors.New("invalid contract status")
	ErrInvalidType      = errors.New("invalid service type")
)

// ServiceInUseError blocks deletion of a catalog service that contracts still
// reference. Contracts carries how many.
type ServiceInUseError struct {
	Contracts int
}

func (e *ServiceInUseError) Error() string {
	return fmt.Sprintf("service is referenced by %d contract(s)", e.Contracts)
}
