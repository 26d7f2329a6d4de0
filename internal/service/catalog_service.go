package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/telecomplus/contracts-backend/internal/domain"
	"github.com/telecomplus/contracts-backend/internal/observability/metrics"
)

// CatalogService manages the shared service catalog. The catalog is not
// ownership-scoped: any authenticated user may read or edit it.
type CatalogService struct {
	services  domain.ServiceRepository
	contracts domain.ContractRepository
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(services domain.ServiceRepository, contracts domain.ContractRepository, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		services:  services,
		contracts: contracts,
		logger:    logger,
	}
}

// CreateServiceInput carries the fields for a new catalog offering
type CreateServiceInput struct {
	Nombre      string
	Descripcion string
	Precio      float64
	Tipo        string
}

// UpdateServiceInput carries a partial catalog update. Nil fields keep the
// stored value.
type UpdateServiceInput struct {
	Nombre      *string
	Descripcion *string
	Precio      *float64
	Tipo        *string
}

// Create adds a new offering to the catalog
func (s *CatalogService) Create(in CreateServiceInput) (*domain.Service, error) {
	tipo := domain.ServiceType(in.Tipo)
	if !tipo.Valid() {
		return nil, domain.ErrInvalidType
	}

	nombre := strings.TrimSpace(in.Nombre)

	// Pre-check for a friendlier message; the unique index is the authority.
	if _, err := s.services.GetByName(nombre); err == nil {
		metrics.ObserveConflict("service_name")
		return nil, domain.ErrDuplicateServiceName
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	service := &domain.Service{
		Nombre:      nombre,
		Descripcion: strings.TrimSpace(in.Descripcion),
		Precio:      in.Precio,
		Tipo:        tipo,
	}

	if err := s.services.Create(service); err != nil {
		if errors.Is(err, domain.ErrDuplicateServiceName) {
			metrics.ObserveConflict("service_name")
		}
		return nil, err
	}

	s.logger.Info("catalog service created",
		slog.String("service_id", service.ID),
		slog.String("nombre", service.Nombre),
		slog.String("tipo", string(service.Tipo)),
	)
	return service, nil
}

// List returns a page of catalog offerings, optionally filtered by tipo
func (s *CatalogService) List(tipo string, page, pageSize int) ([]*domain.Service, *Pagination, error) {
	var filter domain.ServiceType
	if tipo != "" {
		filter = domain.ServiceType(tipo)
		if !filter.Valid() {
			return nil, nil, domain.ErrInvalidType
		}
	}

	offset := (page - 1) * pageSize
	services, total, err := s.services.List(filter, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return services, newPagination(page, pageSize, total), nil
}

// GetByID returns a single catalog offering
func (s *CatalogService) GetByID(id string) (*domain.Service, error) {
	return s.services.GetByID(id)
}

// Update applies a partial update to a catalog offering
func (s *CatalogService) Update(id string, in UpdateServiceInput) (*domain.Service, error) {
	service, err := s.services.GetByID(id)
	if err != nil {
		return nil, err
	}

	if in.Nombre != nil {
		nombre := strings.TrimSpace(*in.Nombre)
		if nombre != service.Nombre {
			if other, err := s.services.GetByName(nombre); err == nil && other.ID != id {
				metrics.ObserveConflict("service_name")
				return nil, domain.ErrDuplicateServiceName
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
		service.Nombre = nombre
	}
	if in.Descripcion != nil {
		service.Descripcion = strings.TrimSpace(*in.Descripcion)
	}
	if in.Precio != nil {
		service.Precio = *in.Precio
	}
	if in.Tipo != nil {
		tipo := domain.ServiceType(*in.Tipo)
		if !tipo.Valid() {
			return nil, domain.ErrInvalidType
		}
		service.Tipo = tipo
	}

	if err := s.services.Update(service); err != nil {
		if errors.Is(err, domain.ErrDuplicateServiceName) {
			metrics.ObserveConflict("service_name")
		}
		return nil, err
	}
	return service, nil
}

// Delete removes an offering from the catalog. An offering referenced by any
// contract cannot be removed; the error carries the referencing count.
func (s *CatalogService) Delete(id string) error {
	if _, err := s.services.GetByID(id); err != nil {
		return err
	}

	count, err := s.contracts.CountByService(id)
	if err != nil {
		return err
	}
	if count > 0 {
		metrics.ObserveConflict("service_in_use")
		return &domain.ServiceInUseError{Contracts: count}
	}

	if err := s.services.Delete(id); err != nil {
		return err
	}

	s.logger.Info("catalog service deleted", slog.String("service_id", id))
	return nil
}
