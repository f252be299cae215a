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

// AuthService is the interface that wraps the authentication operations used
// by the handler
type AuthService interface {
	// Method Login verifies credentials and issues a signed token.
	Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error)
	// Method Register creates a regular user account.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Method GetUser retrieves the account backing a verified token.
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Get("/verify", h.Verify)
		})
	})
}

// loginResponse matches the flat shape the web client expects
type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Verify credentials and return a signed token with the account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   token,
		User:    user,
	})
}

// Register handles POST /api/auth/register
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "New account"
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 409 {object} Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "Account created successfully", user)
}

// Verify handles GET /api/auth/verify. It confirms the bearer token is still
// valid and returns the current account state.
// @Summary Verify a token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.GetUser(r.Context(), principal.ID)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", user)
}
