package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/domain/repositories"
)

// UserService handles account registration and password authentication
type UserService struct {
	users repositories.UserRepository
	log   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{
		users: users,
		log:   slog.Default().With(slog.String("service", "user")),
	}
}

// Register creates a new local user with a bcrypt-hashed password.
// Returns repositories.ErrDuplicateUser when the email is taken.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if name == "" {
		name = email
	}

	// Fast path for taken emails; the unique index still backs the race
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repositories.ErrDuplicateUser
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(passwordHash)

	user := &entities.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: &hash,
		Role:         entities.RoleUser,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", slog.String("user_id", user.ID))

	// Never hand the hash back to callers
	user.PasswordHash = nil
	return user, nil
}

// Authenticate verifies an email/password pair and returns the user.
// Returns ErrInvalidCredentials for unknown users, inactive accounts, and
// wrong passwords alike.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		s.log.Warn("login attempt for inactive user", slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = nil
	return user, nil
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = nil
	return user, nil
}
