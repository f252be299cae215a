package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viklib/backend/internal/auth"
	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testTokenGenerator() *auth.TokenGenerator {
	return auth.NewTokenGenerator("test-secret", time.Hour)
}

func seedUser(t *testing.T, password string, status models.Status) *mockUsersRepository {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &mockUsersRepository{users: map[string]*models.User{
		"u1": {
			ID:           "u1",
			Username:     "reader",
			Email:        "reader@example.com",
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			Status:       status,
		},
	}}
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success returns token and user", func(t *testing.T) {
		repo := seedUser(t, "password123", models.StatusActive)
		svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

		token, user, err := svc.Login(context.Background(), &models.LoginRequest{
			Username: "reader",
			Password: "password123",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "reader", user.Username)

		// The issued token round-trips through validation
		principal, err := testTokenGenerator().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", principal.ID)
		assert.Equal(t, models.RoleUser, principal.Role)
	})

	t.Run("username is trimmed", func(t *testing.T) {
		repo := seedUser(t, "password123", models.StatusActive)
		svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{
			Username: "  reader  ",
			Password: "password123",
		})

		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := seedUser(t, "password123", models.StatusActive)
		svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{
			Username: "reader",
			Password: "wrong",
		})

		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})

	t.Run("unknown username maps to invalid credentials", func(t *testing.T) {
		repo := seedUser(t, "password123", models.StatusActive)
		svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{
			Username: "ghost",
			Password: "password123",
		})

		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})

	t.Run("inactive account refused even with correct password", func(t *testing.T) {
		repo := seedUser(t, "password123", models.StatusInactive)
		svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{
			Username: "reader",
			Password: "password123",
		})

		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("empty credentials", func(t *testing.T) {
		svc := NewAuthService(&mockUsersRepository{}, testTokenGenerator(), zap.NewNop())

		_, _, err := svc.Login(context.Background(), &models.LoginRequest{})

		assert.True(t, errors.Is(err, models.ErrValidation))
	})
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           models.RegisterRequest
		expectedError bool
	}{
		{
			name: "success",
			req:  models.RegisterRequest{Username: "newbie", Email: "Newbie@Example.com", Password: "password123"},
		},
		{
			name:          "short password",
			req:           models.RegisterRequest{Username: "newbie", Email: "newbie@example.com", Password: "short"},
			expectedError: true,
		},
		{
			name:          "invalid email",
			req:           models.RegisterRequest{Username: "newbie", Email: "nope", Password: "password123"},
			expectedError: true,
		},
		{
			name:          "missing username",
			req:           models.RegisterRequest{Email: "newbie@example.com", Password: "password123"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUsersRepository{users: map[string]*models.User{}}
			svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

			user, err := svc.Register(context.Background(), &tt.req)

			if tt.expectedError {
				assert.True(t, errors.Is(err, models.ErrValidation))
				assert.Empty(t, repo.users)
				return
			}

			require.NoError(t, err)
			// Registration never grants admin and always starts active
			assert.Equal(t, models.RoleUser, user.Role)
			assert.Equal(t, models.StatusActive, user.Status)
			assert.Equal(t, "newbie@example.com", user.Email)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.req.Password)))
		})
	}
}

func TestAuthService_Register_Conflict(t *testing.T) {
	repo := &mockUsersRepository{createErr: models.ErrConflict}
	svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Username: "taken",
		Email:    "taken@example.com",
		Password: "password123",
	})

	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestAuthService_GetUser(t *testing.T) {
	t.Run("active account returned", func(t *testing.T) {
		repo := seedUser(t, "password123", models.StatusActive)
		svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

		user, err := svc.GetUser(context.Background(), "u1")

		require.NoError(t, err)
		assert.Equal(t, "reader", user.Username)
	})

	t.Run("deactivated account refused", func(t *testing.T) {
		repo := seedUser(t, "password123", models.StatusInactive)
		svc := NewAuthService(repo, testTokenGenerator(), zap.NewNop())

		_, err := svc.GetUser(context.Background(), "u1")

		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewAuthService(&mockUsersRepository{}, testTokenGenerator(), zap.NewNop())

		_, err := svc.GetUser(context.Background(), "nope")

		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}
