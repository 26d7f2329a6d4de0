package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/telecomplus/contracts-backend/internal/domain"
)

// Envelope is the uniform response shape. Success responses carry data,
// failures carry a message and optionally itemized field errors.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// errUnauthenticated is returned when a protected handler runs without an
// identity in context.
var errUnauthenticated = errors.New("authentication required")

func writeJSON(w http.ResponseWriter, status int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		slog.Default().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: true, Message: message})
}

func respondFieldErrors(w http.ResponseWriter, fieldErrors []FieldError) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: "validation failed",
		Errors:  fieldErrors,
	})
}

// respondError maps domain errors to HTTP status codes. Unrecognized errors
// are logged server-side and reported as a generic 500 without detail.
func respondError(w http.ResponseWriter, log *slog.Logger, err error) {
	var inUse *domain.ServiceInUseError
	if errors.As(err, &inUse) {
		writeJSON(w, http.StatusConflict, Envelope{
			Success: false,
			Message: "service is referenced by existing contracts",
			Data:    map[string]int{"contractsCount": inUse.Contracts},
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, errUnauthenticated):
		status, message = http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateNumber),
		errors.Is(err, domain.ErrDuplicateServiceName):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUnknownOwner),
		errors.Is(err, domain.ErrUnknownService),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrEmptyServiceSet),
		errors.Is(err, domain.ErrInvalidNumber),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidType):
		status, message = http.StatusBadRequest, err.Error()
	default:
		if log != nil {
			log.Error("request failed", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, status, Envelope{Success: false, Message: message})
}
