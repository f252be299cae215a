package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viklib/backend/internal/auth"
	"github.com/viklib/backend/internal/middleware"
	"github.com/viklib/backend/internal/models"
	"github.com/viklib/backend/internal/services"
	"go.uber.org/zap"
)

// mockUserService is a mock implementation of UserService
type mockUserService struct {
	user  *models.User
	users []models.User
	err   error

	lastDeleteID string
	lastActorID  string
	lastStatus   models.Status
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.users, m.err
}

func (m *mockUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return m.user, m.err
}

func (m *mockUserService) CreateUser(ctx context.Context, fields *services.UserFields) (*models.User, error) {
	return m.user, m.err
}

func (m *mockUserService) UpdateUser(ctx context.Context, id string, fields *services.UserFields) (*models.User, error) {
	return m.user, m.err
}

func (m *mockUserService) DeleteUser(ctx context.Context, id, actorID string) error {
	m.lastDeleteID, m.lastActorID = id, actorID
	return m.err
}

func (m *mockUserService) ChangeStatus(ctx context.Context, id string, status models.Status) (*models.User, error) {
	m.lastStatus = status
	return m.user, m.err
}

func adminRequest(t *testing.T, tg *auth.TokenGenerator, method, target string, body string) *http.Request {
	t.Helper()
	token, err := tg.Generate(&models.User{ID: "a1", Username: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func newUserRouter(svc UserService, tg *auth.TokenGenerator) chi.Router {
	h := NewUserHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Auth(tg), middleware.RequireAdmin)
	return r
}

func TestUserHandler_AdminGate(t *testing.T) {
	tg := auth.NewTokenGenerator("secret", time.Hour)
	r := newUserRouter(&mockUserService{}, tg)

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		token, err := tg.Generate(&models.User{ID: "u1", Username: "reader", Role: models.RoleUser})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUserHandler_List(t *testing.T) {
	tg := auth.NewTokenGenerator("secret", time.Hour)
	svc := &mockUserService{users: []models.User{{ID: "u1", Username: "reader"}}}
	r := newUserRouter(svc, tg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, adminRequest(t, tg, http.MethodGet, "/users", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"reader"`)
}

func TestUserHandler_Delete(t *testing.T) {
	tg := auth.NewTokenGenerator("secret", time.Hour)

	t.Run("passes the actor id from the token", func(t *testing.T) {
		svc := &mockUserService{}
		r := newUserRouter(svc, tg)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminRequest(t, tg, http.MethodDelete, "/users/u1", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", svc.lastDeleteID)
		assert.Equal(t, "a1", svc.lastActorID)
	})

	t.Run("protected admin maps to forbidden", func(t *testing.T) {
		svc := &mockUserService{err: models.ErrProtectedUser}
		r := newUserRouter(svc, tg)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminRequest(t, tg, http.MethodDelete, "/users/a0", ""))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "default admin")
	})

	t.Run("own account maps to forbidden", func(t *testing.T) {
		svc := &mockUserService{err: models.ErrOwnAccount}
		r := newUserRouter(svc, tg)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminRequest(t, tg, http.MethodDelete, "/users/a1", ""))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUserHandler_ChangeStatus(t *testing.T) {
	tg := auth.NewTokenGenerator("secret", time.Hour)
	svc := &mockUserService{user: &models.User{ID: "u1", Status: models.StatusInactive}}
	r := newUserRouter(svc, tg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, adminRequest(t, tg, http.MethodPatch, "/users/u1/status", `{"status":"inactive"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusInactive, svc.lastStatus)
}
