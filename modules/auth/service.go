package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"time"

	domain "github.com/example/todo-tracker/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidUsername is returned when the username is empty or malformed.
	ErrInvalidUsername = errors.New("username must be 3-30 characters: letters, digits, . _ -")
	// ErrInvalidEmail is returned when a supplied email does not parse.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when the password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,30}$`)

// Service handles account business logic.
type Service struct {
	repo     *UserRepository
	hasher   *PasswordHasher
	sessions *SessionManager
}

// NewService creates a new auth Service.
func NewService(repo *UserRepository, hasher *PasswordHasher, sessions *SessionManager) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
	}
}

// Register creates a new account together with its profile. The profile is
// created here, explicitly, as part of the registration workflow.
func (s *Service) Register(_ context.Context, username, email, password string) (*domain.User, error) {
	if !usernameRe.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidEmail
		}
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &domain.Profile{
		ID:                  uuid.New().String(),
		DefaultTaskPriority: "medium",
		EmailNotifications:  true,
		Timezone:            "UTC",
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.CreateWithProfile(user, profile); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a signed session token.
func (s *Service) Login(_ context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return user, token, nil
}

// ValidateSession validates a session token and returns the identity it
// carries.
func (s *Service) ValidateSession(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.sessions.Validate(token)
	if err != nil {
		return nil, err
	}
	return &domain.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(_ context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(userID)
}

// ListUsers returns all users except excludeID (when non-empty).
func (s *Service) ListUsers(_ context.Context, excludeID string) ([]*domain.User, error) {
	return s.repo.List(excludeID)
}

// GetProfile retrieves the profile for the given user.
func (s *Service) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	return s.repo.FindProfile(userID)
}
