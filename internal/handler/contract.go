package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/telecomplus/contracts-backend/internal/security/audit"
	"github.com/telecomplus/contracts-backend/internal/security/middleware"
	"github.com/telecomplus/contracts-backend/internal/service"
)

// ContractHandler exposes the contract lifecycle endpoints. Every route
// requires an authenticated identity; results are scoped to it.
type ContractHandler struct {
	contracts *service.ContractService
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contracts *service.ContractService, auditLog *audit.Logger, logger *slog.Logger) *ContractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractHandler{contracts: contracts, audit: auditLog, logger: logger}
}

type createContractRequest struct {
	NumeroContrato string   `json:"numeroContrato" validate:"required"`
	FechaInicio    string   `json:"fechaInicio" validate:"required"`
	FechaFin       string   `json:"fechaFin" validate:"required"`
	Estado         string   `json:"estado"`
	ServiciosIDs   []string `json:"servicios_ids"`
}

type updateContractRequest struct {
	NumeroContrato *string   `json:"numeroContrato"`
	FechaInicio    *string   `json:"fechaInicio"`
	FechaFin       *string   `json:"fechaFin"`
	Estado         *string   `json:"estado"`
	ServiciosIDs   *[]string `json:"servicios_ids"`
}

// Create handles POST /api/contracts
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	var req createContractRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	start, err := parseDate(req.FechaInicio)
	if err != nil {
		respondFieldErrors(w, []FieldError{{Field: "fechaInicio", Message: "must be an ISO 8601 date"}})
		return
	}
	end, err := parseDate(req.FechaFin)
	if err != nil {
		respondFieldErrors(w, []FieldError{{Field: "fechaFin", Message: "must be an ISO 8601 date"}})
		return
	}

	detail, err := h.contracts.Create(r.Context(), identity.ID, service.CreateContractInput{
		Number:     req.NumeroContrato,
		StartDate:  start,
		EndDate:    end,
		Status:     req.Estado,
		ServiceIDs: req.ServiciosIDs,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogContractAction(r.Context(), identity.ID, "create", detail.Contract.ID, "created")
	respondData(w, http.StatusCreated, "contract created", toContractDetailResponse(detail))
}

// List handles GET /api/contracts
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	page, pageSize := pageParams(r)
	estado := r.URL.Query().Get("estado")

	contracts, pagination, err := h.contracts.List(r.Context(), identity.ID, estado, page, pageSize)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, "contracts", listResponse{
		Items:      toContractResponses(contracts),
		Pagination: pagination,
	})
}

// GetByID handles GET /api/contracts/{id}
func (h *ContractHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	detail, err := h.contracts.GetByID(r.Context(), identity.ID, r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "contract", toContractDetailResponse(detail))
}

// Update handles PUT /api/contracts/{id}
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	var req updateContractRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.UpdateContractInput{
		Number:     req.NumeroContrato,
		Status:     req.Estado,
		ServiceIDs: req.ServiciosIDs,
	}
	if req.FechaInicio != nil {
		start, err := parseDate(*req.FechaInicio)
		if err != nil {
			respondFieldErrors(w, []FieldError{{Field: "fechaInicio", Message: "must be an ISO 8601 date"}})
			return
		}
		input.StartDate = &start
	}
	if req.FechaFin != nil {
		end, err := parseDate(*req.FechaFin)
		if err != nil {
			respondFieldErrors(w, []FieldError{{Field: "fechaFin", Message: "must be an ISO 8601 date"}})
			return
		}
		input.EndDate = &end
	}

	detail, err := h.contracts.Update(r.Context(), identity.ID, r.PathValue("id"), input)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogContractAction(r.Context(), identity.ID, "update", detail.Contract.ID, "updated")
	respondData(w, http.StatusOK, "contract updated", toContractDetailResponse(detail))
}

// Delete handles DELETE /api/contracts/{id}
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	id := r.PathValue("id")
	if err := h.contracts.Delete(r.Context(), identity.ID, id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogContractAction(r.Context(), identity.ID, "delete", id, "deleted")
	respondMessage(w, http.StatusOK, "contract deleted")
}

// Stats handles GET /api/contracts/stats
func (h *ContractHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	stats, err := h.contracts.Stats(r.Context(), identity.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "contract statistics", toStatsResponse(stats))
}

// pageParams reads page/limit query parameters, clamping them to sane bounds
func pageParams(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 10

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
