package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/viklib/backend/internal/auth"
	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong username or password.
// The message deliberately does not reveal which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInactiveAccount is returned when an inactive account attempts to log in
var ErrInactiveAccount = fmt.Errorf("%w: account is inactive, please contact an administrator", models.ErrForbidden)

// UsersRepository is the interface that wraps methods for user persistence
type UsersRepository interface {
	// Method Create inserts a new user; a duplicate username or email yields
	// models.ErrConflict.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by id, returning models.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Method GetByUsername retrieves a user by username, returning
	// models.ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method List retrieves all users ordered newest-first.
	List(ctx context.Context) ([]models.User, error)
	// Method Update persists the user's mutable fields.
	Update(ctx context.Context, user *models.User) error
	// Method Delete removes a user by id.
	Delete(ctx context.Context, id string) error
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AuthService handles login and self-registration
type AuthService struct {
	users  UsersRepository
	tokens *auth.TokenGenerator
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UsersRepository, tokens *auth.TokenGenerator, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login verifies the credentials and returns a signed token together with the user.
// Inactive accounts cannot log in even with a correct password.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", models.ErrValidation)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.Status != models.StatusActive {
		return "", nil, ErrInactiveAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return token, user, nil
}

// Register creates a new account with the user role and active status
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrValidation)
	}
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", models.ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves the account backing a verified token. Deactivated
// accounts are rejected so a stale token stops working once the record
// changes.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: account is deactivated", models.ErrForbidden)
	}
	return user, nil
}
