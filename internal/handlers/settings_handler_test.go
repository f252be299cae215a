package handlers

import (
	"context"
	"encoding/json"
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
	"go.uber.org/zap"
)

// mockSettingsService is a mock implementation of SettingsService
type mockSettingsService struct {
	settings      *models.Settings
	err           error
	lastUpdatedBy string
}

func (m *mockSettingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) UpdateSettings(ctx context.Context, settings *models.Settings, updatedBy string) (*models.Settings, error) {
	m.lastUpdatedBy = updatedBy
	if m.err != nil {
		return nil, m.err
	}
	return settings, nil
}

func (m *mockSettingsService) ResetSettings(ctx context.Context, updatedBy string) (*models.Settings, error) {
	m.lastUpdatedBy = updatedBy
	if m.err != nil {
		return nil, m.err
	}
	return models.DefaultSettings(), nil
}

func newSettingsRouter(svc SettingsService, tg *auth.TokenGenerator) chi.Router {
	h := NewSettingsHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Auth(tg), middleware.RequireAdmin)
	return r
}

func TestSettingsHandler_Get(t *testing.T) {
	tg := auth.NewTokenGenerator("secret", time.Hour)
	svc := &mockSettingsService{settings: models.DefaultSettings()}
	r := newSettingsRouter(svc, tg)

	// Reading settings needs no token
	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"libraryName":"VIKLIB"`)
}

func TestSettingsHandler_Update(t *testing.T) {
	tg := auth.NewTokenGenerator("secret", time.Hour)

	payload, err := json.Marshal(models.DefaultSettings())
	require.NoError(t, err)

	t.Run("records the admin username", func(t *testing.T) {
		svc := &mockSettingsService{}
		r := newSettingsRouter(svc, tg)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminRequest(t, tg, http.MethodPut, "/settings", string(payload)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", svc.lastUpdatedBy)
	})

	t.Run("anonymous write is unauthorized", func(t *testing.T) {
		r := newSettingsRouter(&mockSettingsService{}, tg)

		req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(string(payload)))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("validation errors map to bad request", func(t *testing.T) {
		svc := &mockSettingsService{err: models.ErrValidation}
		r := newSettingsRouter(svc, tg)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminRequest(t, tg, http.MethodPut, "/settings", string(payload)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSettingsHandler_Reset(t *testing.T) {
	tg := auth.NewTokenGenerator("secret", time.Hour)

	t.Run("admin reset restores defaults", func(t *testing.T) {
		svc := &mockSettingsService{}
		r := newSettingsRouter(svc, tg)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminRequest(t, tg, http.MethodPost, "/settings/reset", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", svc.lastUpdatedBy)
		assert.Contains(t, rec.Body.String(), `"libraryName":"VIKLIB"`)
	})

	t.Run("anonymous reset is unauthorized", func(t *testing.T) {
		r := newSettingsRouter(&mockSettingsService{}, tg)

		req := httptest.NewRequest(http.MethodPost, "/settings/reset", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
