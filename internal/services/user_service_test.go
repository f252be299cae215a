package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

// mockUsersRepository is a mock implementation of UsersRepository
type mockUsersRepository struct {
	users     map[string]*models.User
	createErr error
	updateErr error
	deleteErr error

	deletedIDs []string
}

func (m *mockUsersRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	if m.users == nil {
		m.users = map[string]*models.User{}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUsersRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (m *mockUsersRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, models.ErrNotFound)
}

func (m *mockUsersRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, nil
}

func (m *mockUsersRepository) Update(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, models.ErrNotFound)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUsersRepository) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	delete(m.users, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func TestUserService_CreateUser(t *testing.T) {
	tests := []struct {
		name          string
		fields        UserFields
		expectedError bool
		expectedRole  models.Role
	}{
		{
			name: "defaults to user role",
			fields: UserFields{
				Username: strPtr("reader"),
				Email:    strPtr("Reader@Example.COM"),
				Password: strPtr("password123"),
			},
			expectedRole: models.RoleUser,
		},
		{
			name: "explicit admin role",
			fields: UserFields{
				Username: strPtr("boss"),
				Email:    strPtr("boss@example.com"),
				Password: strPtr("password123"),
				Role:     strPtr("admin"),
			},
			expectedRole: models.RoleAdmin,
		},
		{
			name: "missing password",
			fields: UserFields{
				Username: strPtr("reader"),
				Email:    strPtr("reader@example.com"),
			},
			expectedError: true,
		},
		{
			name: "invalid email",
			fields: UserFields{
				Username: strPtr("reader"),
				Email:    strPtr("not-an-email"),
				Password: strPtr("password123"),
			},
			expectedError: true,
		},
		{
			name: "invalid role",
			fields: UserFields{
				Username: strPtr("reader"),
				Email:    strPtr("reader@example.com"),
				Password: strPtr("password123"),
				Role:     strPtr("superuser"),
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUsersRepository{users: map[string]*models.User{}}
			svc := NewUserService(repo, zap.NewNop())

			user, err := svc.CreateUser(context.Background(), &tt.fields)

			if tt.expectedError {
				assert.True(t, errors.Is(err, models.ErrValidation))
				assert.Empty(t, repo.users)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedRole, user.Role)
			assert.Equal(t, models.StatusActive, user.Status)
			// Email is normalized to lower case
			assert.Equal(t, strings.ToLower(user.Email), user.Email)
			// Stored hash verifies against the original password
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*tt.fields.Password)))
		})
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	seed := func() *mockUsersRepository {
		return &mockUsersRepository{users: map[string]*models.User{
			"u1": {ID: "u1", Username: "reader", Email: "reader@example.com", PasswordHash: "oldhash", Role: models.RoleUser, Status: models.StatusActive},
		}}
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		repo := seed()
		svc := NewUserService(repo, zap.NewNop())

		user, err := svc.UpdateUser(context.Background(), "u1", &UserFields{Email: strPtr("new@example.com")})

		require.NoError(t, err)
		assert.Equal(t, "reader", user.Username)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "oldhash", user.PasswordHash)
	})

	t.Run("supplied password is rehashed", func(t *testing.T) {
		repo := seed()
		svc := NewUserService(repo, zap.NewNop())

		user, err := svc.UpdateUser(context.Background(), "u1", &UserFields{Password: strPtr("newpassword")})

		require.NoError(t, err)
		assert.NotEqual(t, "oldhash", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword")))
	})

	t.Run("empty password left untouched", func(t *testing.T) {
		repo := seed()
		svc := NewUserService(repo, zap.NewNop())

		user, err := svc.UpdateUser(context.Background(), "u1", &UserFields{Password: strPtr("")})

		require.NoError(t, err)
		assert.Equal(t, "oldhash", user.PasswordHash)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		svc := NewUserService(seed(), zap.NewNop())

		_, err := svc.UpdateUser(context.Background(), "u1", &UserFields{Status: strPtr("banned")})

		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("missing user", func(t *testing.T) {
		svc := NewUserService(seed(), zap.NewNop())

		_, err := svc.UpdateUser(context.Background(), "missing", &UserFields{})

		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	seed := func() *mockUsersRepository {
		return &mockUsersRepository{users: map[string]*models.User{
			"a1": {ID: "a1", Username: "admin", Role: models.RoleAdmin},
			"a2": {ID: "a2", Username: "second-admin", Role: models.RoleAdmin},
			"u1": {ID: "u1", Username: "reader", Role: models.RoleUser},
		}}
	}

	t.Run("deletes a regular user", func(t *testing.T) {
		repo := seed()
		svc := NewUserService(repo, zap.NewNop())

		err := svc.DeleteUser(context.Background(), "u1", "a1")

		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, repo.deletedIDs)
	})

	t.Run("default admin is protected", func(t *testing.T) {
		repo := seed()
		svc := NewUserService(repo, zap.NewNop())

		err := svc.DeleteUser(context.Background(), "a1", "a2")

		assert.True(t, errors.Is(err, models.ErrProtectedUser))
		assert.Empty(t, repo.deletedIDs)
	})

	t.Run("own account is protected", func(t *testing.T) {
		repo := seed()
		svc := NewUserService(repo, zap.NewNop())

		err := svc.DeleteUser(context.Background(), "a2", "a2")

		assert.True(t, errors.Is(err, models.ErrOwnAccount))
		assert.Empty(t, repo.deletedIDs)
	})

	t.Run("missing user", func(t *testing.T) {
		svc := NewUserService(seed(), zap.NewNop())

		err := svc.DeleteUser(context.Background(), "missing", "a1")

		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestUserService_ChangeStatus(t *testing.T) {
	repo := &mockUsersRepository{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "reader", Status: models.StatusActive},
	}}
	svc := NewUserService(repo, zap.NewNop())

	user, err := svc.ChangeStatus(context.Background(), "u1", models.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, user.Status)

	_, err = svc.ChangeStatus(context.Background(), "u1", models.Status("frozen"))
	assert.True(t, errors.Is(err, models.ErrValidation))
}
