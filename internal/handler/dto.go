package handler

import (
	"fmt"
	"time"

	"github.com/telecomplus/contracts-backend/internal/domain"
	"github.com/telecomplus/contracts-backend/internal/service"
)

// Wire representations. Field names match the public API contract; internal
// entities never cross the HTTP boundary directly.

type userResponse struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type serviceResponse struct {
	ID          string    `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion"`
	Precio      float64   `json:"precio"`
	Tipo        string    `json:"tipo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toServiceResponse(s *domain.Service) serviceResponse {
	return serviceResponse{
		ID:          s.ID,
		Nombre:      s.Nombre,
		Descripcion: s.Descripcion,
		Precio:      s.Precio,
		Tipo:        string(s.Tipo),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toServiceResponses(services []*domain.Service) []serviceResponse {
	out := make([]serviceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResponse(s))
	}
	return out
}

type contractResponse struct {
	ID             string    `json:"id"`
	NumeroContrato string    `json:"numeroContrato"`
	FechaInicio    time.Time `json:"fechaInicio"`
	FechaFin       time.Time `json:"fechaFin"`
	Estado         string    `json:"estado"`
	UserID         string    `json:"userId"`
	ServiciosIDs   []string  `json:"servicios_ids"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toContractResponse(c *domain.Contract) contractResponse {
	ids := c.ServiceIDs
	if ids == nil {
		ids = []string{}
	}
	return contractResponse{
		ID:             c.ID,
		NumeroContrato: c.Number,
		FechaInicio:    c.StartDate,
		FechaFin:       c.EndDate,
		Estado:         string(c.Status),
		UserID:         c.UserID,
		ServiciosIDs:   ids,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toContractResponses(contracts []*domain.Contract) []contractResponse {
	out := make([]contractResponse, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractResponse(c))
	}
	return out
}

type contractDetailResponse struct {
	contractResponse
	Usuario   userResponse      `json:"usuario"`
	Servicios []serviceResponse `json:"servicios"`
}

func toContractDetailResponse(d *domain.ContractDetail) contractDetailResponse {
	return contractDetailResponse{
		contractResponse: toContractResponse(d.Contract),
		Usuario:          toUserResponse(d.Owner),
		Servicios:        toServiceResponses(d.Services),
	}
}

type statsResponse struct {
	Total     int            `json:"total"`
	PorEstado map[string]int `json:"porEstado"`
	PorTipo   map[string]int `json:"porTipoServicio"`
}

func toStatsResponse(s *domain.ContractStats) statsResponse {
	byStatus := make(map[string]int, len(s.ByStatus))
	for k, v := range s.ByStatus {
		byStatus[string(k)] = v
	}
	byType := make(map[string]int, len(s.ByServiceType))
	for k, v := range s.ByServiceType {
		byType[string(k)] = v
	}
	return statsResponse{Total: s.Total, PorEstado: byStatus, PorTipo: byType}
}

type listResponse struct {
	Items      interface{}         `json:"items"`
	Pagination *service.Pagination `json:"pagination"`
}

// parseDate accepts RFC 3339 timestamps and bare dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", value)
}
