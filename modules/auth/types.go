package auth

import (
	"time"
)

// RegisterRequest is the payload for the register service.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// RegisterResponse is the reply to a successful registration.
type RegisterResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest is the payload for the login service.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token issued on successful login.
type LoginResponse struct {
	SessionToken string `json:"session_token"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
}

// ValidateSessionRequest is the payload for the validate-session service.
type ValidateSessionRequest struct {
	Token string `json:"token"`
}

// ValidateSessionResponse reports the outcome of session validation.
// Validation failures are data, not errors.
type ValidateSessionResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GetUserRequest is the payload for the get-user service.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse is the reply to a get-user request.
type GetUserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsersRequest is the payload for the list-users service. ExcludeID
// removes one user from the result, typically the acting user when building
// the assignable-candidate set.
type ListUsersRequest struct {
	ExcludeID string `json:"exclude_id,omitempty"`
}

// ListUsersResponse is the reply to a list-users request.
type ListUsersResponse struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
}

// UserSummary is the compact user representation used in lists.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GetProfileRequest is the payload for the get-profile service.
type GetProfileRequest struct {
	UserID string `json:"user_id"`
}

// GetProfileResponse is the reply to a get-profile request.
type GetProfileResponse struct {
	UserID              string `json:"user_id"`
	Bio                 string `json:"bio,omitempty"`
	PhoneNumber         string `json:"phone_number,omitempty"`
	DefaultTaskPriority string `json:"default_task_priority"`
	EmailNotifications  bool   `json:"email_notifications"`
	Timezone            string `json:"timezone"`
}
