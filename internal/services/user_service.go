package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// defaultAdminUsername is the bootstrap account that can never be deleted
const defaultAdminUsername = "admin"

// UserFields carries the client-supplied fields for admin user management.
// Pointer fields distinguish "not supplied" from zero values.
type UserFields struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
	Status   *string
}

// UserService handles admin-side user management
type UserService struct {
	users  UsersRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users UsersRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// ListUsers retrieves all users ordered newest-first
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// GetUser retrieves a single user by id
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// CreateUser creates an account with an admin-chosen role
func (s *UserService) CreateUser(ctx context.Context, fields *UserFields) (*models.User, error) {
	if fields.Username == nil || strings.TrimSpace(*fields.Username) == "" ||
		fields.Email == nil || strings.TrimSpace(*fields.Email) == "" ||
		fields.Password == nil || *fields.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(*fields.Email))
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}

	role := models.RoleUser
	if fields.Role != nil && *fields.Role != "" {
		role = models.Role(*fields.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: invalid role: %s", models.ErrValidation, role)
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(*fields.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(*fields.Username),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		Status:       models.StatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser merges the supplied fields into the stored account.
// A supplied password is re-hashed; role and status are validated.
func (s *UserService) UpdateUser(ctx context.Context, id string, fields *UserFields) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields.Username != nil {
		username := strings.TrimSpace(*fields.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", models.ErrValidation)
		}
		user.Username = username
	}
	if fields.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*fields.Email))
		if !emailRegex.MatchString(email) {
			return nil, fmt.Errorf("%w: invalid email address", models.ErrValidation)
		}
		user.Email = email
	}
	if fields.Password != nil && *fields.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*fields.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(passwordHash)
	}
	if fields.Role != nil {
		role := models.Role(*fields.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: invalid role: %s", models.ErrValidation, role)
		}
		user.Role = role
	}
	if fields.Status != nil {
		status := models.Status(*fields.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: valid status (active/inactive) is required", models.ErrValidation)
		}
		user.Status = status
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes an account. The default admin account and the caller's
// own account are protected with dedicated errors.
func (s *UserService) DeleteUser(ctx context.Context, id, actorID string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Username == defaultAdminUsername {
		return models.ErrProtectedUser
	}
	if user.ID == actorID {
		return models.ErrOwnAccount
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		zap.String("id", id),
		zap.String("username", user.Username),
		zap.String("by", actorID),
	)
	return nil
}

// ChangeStatus activates or deactivates an account
func (s *UserService) ChangeStatus(ctx context.Context, id string, status models.Status) (*models.User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: valid status (active/inactive) is required", models.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
