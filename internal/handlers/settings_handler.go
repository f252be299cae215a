package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viklib/backend/internal/middleware"
	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
)

// SettingsService is the interface that wraps the library settings operations
// used by the handler
type SettingsService interface {
	// Method GetSettings retrieves the settings, falling back to defaults.
	GetSettings(ctx context.Context) (*models.Settings, error)
	// Method UpdateSettings validates and persists the full settings document.
	UpdateSettings(ctx context.Context, settings *models.Settings, updatedBy string) (*models.Settings, error)
	// Method ResetSettings restores the default settings.
	ResetSettings(ctx context.Context, updatedBy string) (*models.Settings, error)
}

// SettingsHandler handles library settings HTTP requests
type SettingsHandler struct {
	BaseHandler
	settingsService SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		settingsService: settingsService,
	}
}

// RegisterRoutes registers the settings routes. Reading is public so the web
// client can render the library name; writing is admin-only.
func (h *SettingsHandler) RegisterRoutes(r chi.Router, authMw, adminMw func(http.Handler) http.Handler) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(adminMw)
			r.Put("/", h.Update)
			r.Post("/reset", h.Reset)
		})
	})
}

// Get handles GET /api/settings
// @Summary Get library settings
// @Tags settings
// @Produce json
// @Success 200 {object} Envelope
// @Failure 500 {object} Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetSettings(r.Context())
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", settings)
}

// Update handles PUT /api/settings
// @Summary Update library settings
// @Description Validate and persist the full settings document
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.settingsService.UpdateSettings(r.Context(), &settings, principal.Username)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Settings updated successfully", updated)
}

// Reset handles POST /api/settings/reset
// @Summary Reset library settings to defaults
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /settings/reset [post]
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	settings, err := h.settingsService.ResetSettings(r.Context(), principal.Username)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Settings reset to default", settings)
}
