package handler

import (
	"log/slog"
	"net/http"

	"github.com/telecomplus/contracts-backend/internal/security/audit"
	"github.com/telecomplus/contracts-backend/internal/security/middleware"
	"github.com/telecomplus/contracts-backend/internal/service"
)

// ServiceHandler exposes the catalog CRUD endpoints
type ServiceHandler struct {
	catalog *service.CatalogService
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewServiceHandler creates a new catalog handler
func NewServiceHandler(catalog *service.CatalogService, auditLog *audit.Logger, logger *slog.Logger) *ServiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceHandler{catalog: catalog, audit: auditLog, logger: logger}
}

// Precio is a pointer so that an explicit 0 (a free plan) survives the
// required check; prices may be zero but never negative.
type createServiceRequest struct {
	Nombre      string   `json:"nombre" validate:"required,min=2,max=100"`
	Descripcion string   `json:"descripcion" validate:"required,min=10,max=500"`
	Precio      *float64 `json:"precio" validate:"required,gte=0"`
	Tipo        string   `json:"tipo" validate:"required"`
}

type updateServiceRequest struct {
	Nombre      *string  `json:"nombre" validate:"omitempty,min=2,max=100"`
	Descripcion *string  `json:"descripcion" validate:"omitempty,min=10,max=500"`
	Precio      *float64 `json:"precio" validate:"omitempty,gte=0"`
	Tipo        *string  `json:"tipo"`
}

// Create handles POST /api/services
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	svc, err := h.catalog.Create(service.CreateServiceInput{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      *req.Precio,
		Tipo:        req.Tipo,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		h.audit.LogServiceAction(r.Context(), identity.ID, "create", svc.ID, "created", svc.Nombre)
	}
	respondData(w, http.StatusCreated, "service created", toServiceResponse(svc))
}

// List handles GET /api/services
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	tipo := r.URL.Query().Get("tipo")

	services, pagination, err := h.catalog.List(tipo, page, pageSize)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, "services", listResponse{
		Items:      toServiceResponses(services),
		Pagination: pagination,
	})
}

// GetByID handles GET /api/services/{id}
func (h *ServiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	svc, err := h.catalog.GetByID(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "service", toServiceResponse(svc))
}

// Update handles PUT /api/services/{id}
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	svc, err := h.catalog.Update(r.PathValue("id"), service.UpdateServiceInput{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Tipo:        req.Tipo,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		h.audit.LogServiceAction(r.Context(), identity.ID, "update", svc.ID, "updated", "")
	}
	respondData(w, http.StatusOK, "service updated", toServiceResponse(svc))
}

// Delete handles DELETE /api/services/{id}
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.catalog.Delete(id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		h.audit.LogServiceAction(r.Context(), identity.ID, "delete", id, "deleted", "")
	}
	respondMessage(w, http.StatusOK, "service deleted")
}
