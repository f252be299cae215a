// Package handlers maps HTTP routes to service operations and renders the
// uniform response envelope
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viklib/backend/internal/models"
	"github.com/viklib/backend/internal/services"
	"github.com/viklib/backend/internal/storage"
	"go.uber.org/zap"
)

// Envelope is the uniform JSON response shape
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondSuccess sends a success envelope
func (h *BaseHandler) RespondSuccess(w http.ResponseWriter, status int, message string, data any) {
	h.RespondJSON(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError sends an error envelope
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, Envelope{
		Success: false,
		Error:   message,
	})
}

// RespondDomainError maps a domain error to its HTTP status code.
// The underlying message is exposed to the caller for diagnostics; this is an
// admin-facing tool and the behavior matches the rest of the API.
func (h *BaseHandler) RespondDomainError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrMissingAsset),
		errors.Is(err, storage.ErrInvalidMimeType),
		errors.Is(err, storage.ErrInvalidRef),
		errors.Is(err, storage.ErrUnknownKind):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden),
		errors.Is(err, models.ErrProtectedUser),
		errors.Is(err, models.ErrOwnAccount):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		h.Logger.Error("unexpected error", zap.Error(err))
	}

	h.RespondError(w, status, err.Error())
}
