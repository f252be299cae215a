package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viklib/backend/internal/middleware"
	"github.com/viklib/backend/internal/models"
	"github.com/viklib/backend/internal/services"
	"go.uber.org/zap"
)

// UserService is the interface that wraps the account management operations
// used by the handler
type UserService interface {
	// Method ListUsers retrieves all accounts newest-first.
	ListUsers(ctx context.Context) ([]models.User, error)
	// Method GetUser retrieves a single account.
	GetUser(ctx context.Context, id string) (*models.User, error)
	// Method CreateUser creates an account with an explicit role.
	CreateUser(ctx context.Context, fields *services.UserFields) (*models.User, error)
	// Method UpdateUser merges the supplied fields into an account.
	UpdateUser(ctx context.Context, id string, fields *services.UserFields) (*models.User, error)
	// Method DeleteUser removes an account unless it is protected or the
	// actor's own.
	DeleteUser(ctx context.Context, id, actorID string) error
	// Method ChangeStatus activates or deactivates an account.
	ChangeStatus(ctx context.Context, id string, status models.Status) (*models.User, error)
}

// UserHandler handles account management HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers the account management routes, all admin-only
func (h *UserHandler) RegisterRoutes(r chi.Router, authMw, adminMw func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authMw)
		r.Use(adminMw)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/status", h.ChangeStatus)
	})
}

// List handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	if users == nil {
		users = []models.User{}
	}
	h.RespondSuccess(w, http.StatusOK, "", users)
}

// Get handles GET /api/users/{id}
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", user)
}

// Create handles POST /api/users
// @Summary Create a user
// @Description Create an account with an explicit role and active status
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 409 {object} Envelope
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields services.UserFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.CreateUser(r.Context(), &fields)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "User created successfully", user)
}

// Update handles PUT /api/users/{id}
// @Summary Update a user
// @Description Merge the supplied fields into the account; a non-empty password is rehashed
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields services.UserFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), chi.URLParam(r, "id"), &fields)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "User updated successfully", user)
}

// Delete handles DELETE /api/users/{id}
// @Summary Delete a user
// @Description Delete an account; the default admin and the caller's own account are refused
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.userService.DeleteUser(r.Context(), chi.URLParam(r, "id"), principal.ID); err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

// changeStatusRequest is the body of PATCH /api/users/{id}/status
type changeStatusRequest struct {
	Status models.Status `json:"status"`
}

// ChangeStatus handles PATCH /api/users/{id}/status
// @Summary Change a user's status
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id}/status [patch]
func (h *UserHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "User status updated successfully", user)
}
