package domain

import "time"

// ContractStatus is the closed set of contract states
type ContractStatus string

const (
	StatusActive    ContractStatus = "Activo"
	StatusInactive  ContractStatus = "Inactivo"
	StatusSuspended ContractStatus = "Suspendido"
	StatusCancelled ContractStatus = "Cancelado"
)

// Valid reports whether s is one of the known contract states
func (s ContractStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

// Contract binds a user to a non-empty set of catalog services for a
// validity window. Invariants enforced before every write:
// unique normalized number, end date after start date, every referenced
// service exists, at least one service.
type Contract struct {
	ID         string // UUID
	Number     string // numeroContrato, normalized uppercase, unique
	StartDate  time.Time
	EndDate    time.Time
	Status     ContractStatus
	UserID     string   // Owning user
	ServiceIDs []string // Referenced catalog services
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContractDetail is a contract joined with its resolved owner and services
type ContractDetail struct {
	Contract *Contract
	Owner    *User
	Services []*Service
}

// ContractStats aggregates an owner's contracts by status and by the
// category of each referenced service.
type ContractStats struct {
	Total         int
	ByStatus      map[ContractStatus]int
	ByServiceType map[ServiceType]int
}

// ContractRepository defines data access for contracts. All reads and writes
// of a single contract are ownership-scoped: the owner id is part of the
// lookup predicate, so another user's contract is indistinguishable from a
// missing one.
type ContractRepository interface {
	Create(contract *Contract) error
	GetByID(id, userID string) (*Contract, error)
	Update(contract *Contract) error
	Delete(id, userID string) error
	ListByUser(userID string, status ContractStatus, offset, limit int) ([]*Contract, int, error)
	// NumberExists reports whether a contract other than excludeID already
	// uses the given number.
	NumberExists(number, excludeID string) (bool, error)
	CountByService(serviceID string) (int, error)
	StatsByStatus(userID string) (map[ContractStatus]int, error)
	StatsByServiceType(userID string) (map[ServiceType]int, error)
	CountByUser(userID string) (int, error)
}
