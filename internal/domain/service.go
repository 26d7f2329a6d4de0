package domain

import "time"

// ServiceType is the closed set of catalog offering categories
type ServiceType string

const (
	TypeInternet   ServiceType = "Internet"
	TypeTelevision ServiceType = "Televisión"
)

// Valid reports whether t is one of the known service types
func (t ServiceType) Valid() bool {
	return t == TypeInternet || t == TypeTelevision
}

// Service represents a priced catalog offering (an Internet or TV plan)
type Service struct {
	ID          string // UUID
	Nombre      string // Unique name across the catalog
	Descripcion string
	Precio      float64 // Monthly price, never negative
	Tipo        ServiceType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ServiceRepository defines data access for the service catalog
type ServiceRepository interface {
	Create(service *Service) error
	GetByID(id string) (*Service, error)
	GetByName(nombre string) (*Service, error)
	// GetByIDs resolves a set of service ids. Missing ids are simply absent
	// from the result; callers compare cardinality to detect them.
	GetByIDs(ids []string) ([]*Service, error)
	List(tipo ServiceType, offset, limit int) ([]*Service, int, error)
	Update(service *Service) error
	Delete(id string) error
}
