package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/todo-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port is the interface other modules use to reach auth functionality
// through the service container.
type Port interface {
	Register(ctx context.Context, username, email, password string) (*domain.Info, error)
	Login(ctx context.Context, username, password string) (*domain.Info, string, error)
	ValidateSession(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.Info, error)
	ListUsers(ctx context.Context, excludeID string) ([]UserSummary, error)
	GetProfile(ctx context.Context, userID string) (*GetProfileResponse, error)
}

// Adapter implements Port over the mono service container.
type Adapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ Port = (*Adapter)(nil)

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{container: container}
}

func (a *Adapter) call(ctx context.Context, service string, req, resp any) error {
	return helper.CallRequestReplyService(
		ctx, a.container, service, json.Marshal, json.Unmarshal, req, resp,
	)
}

// Register creates a new account.
func (a *Adapter) Register(ctx context.Context, username, email, password string) (*domain.Info, error) {
	req := RegisterRequest{Username: username, Email: email, Password: password}
	var resp RegisterResponse
	if err := a.call(ctx, "register", &req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &domain.Info{
		ID:        resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// Login authenticates a user and returns their info and a session token.
func (a *Adapter) Login(ctx context.Context, username, password string) (*domain.Info, string, error) {
	req := LoginRequest{Username: username, Password: password}
	var resp LoginResponse
	if err := a.call(ctx, "login", &req, &resp); err != nil {
		return nil, "", fmt.Errorf("login request failed: %w", err)
	}
	return &domain.Info{ID: resp.UserID, Username: resp.Username}, resp.SessionToken, nil
}

// ValidateSession validates a session token and returns the identity claims.
func (a *Adapter) ValidateSession(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateSessionRequest{Token: token}
	var resp ValidateSessionResponse
	if err := a.call(ctx, "validate-session", &req, &resp); err != nil {
		return nil, fmt.Errorf("validate-session request failed: %w", err)
	}
	if !resp.Valid {
		return nil, errors.New(resp.Error)
	}
	return &domain.Claims{UserID: resp.UserID, Username: resp.Username}, nil
}

// GetUser retrieves a user by ID.
func (a *Adapter) GetUser(ctx context.Context, userID string) (*domain.Info, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := a.call(ctx, "get-user", &req, &resp); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}
	return &domain.Info{
		ID:        resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// ListUsers lists users, excluding excludeID when non-empty.
func (a *Adapter) ListUsers(ctx context.Context, excludeID string) ([]UserSummary, error) {
	req := ListUsersRequest{ExcludeID: excludeID}
	var resp ListUsersResponse
	if err := a.call(ctx, "list-users", &req, &resp); err != nil {
		return nil, fmt.Errorf("list-users request failed: %w", err)
	}
	return resp.Users, nil
}

// GetProfile retrieves a user's profile.
func (a *Adapter) GetProfile(ctx context.Context, userID string) (*GetProfileResponse, error) {
	req := GetProfileRequest{UserID: userID}
	var resp GetProfileResponse
	if err := a.call(ctx, "get-profile", &req, &resp); err != nil {
		return nil, fmt.Errorf("get-profile request failed: %w", err)
	}
	return &resp, nil
}
