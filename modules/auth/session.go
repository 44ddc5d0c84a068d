package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSession is returned when a session token is malformed or
	// carries the wrong type.
	ErrInvalidSession = errors.New("invalid session token")
	// ErrExpiredSession is returned when a session token has expired.
	ErrExpiredSession = errors.New("session has expired")
)

// SessionConfig holds session token signing configuration.
type SessionConfig struct {
	SecretKey string
	Duration  time.Duration
	Issuer    string
}

// DefaultSessionConfig returns the default configuration. The secret key
// must be overridden from the environment in production.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SecretKey: "dev-session-secret-change-me",
		Duration:  14 * 24 * time.Hour,
		Issuer:    "todo-tracker",
	}
}

// SessionClaims are the custom claims carried by a session token.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// SessionManager signs and validates the HS256 tokens the web layer stores
// in the session cookie.
type SessionManager struct {
	config SessionConfig
}

// NewSessionManager creates a SessionManager with the given configuration.
func NewSessionManager(config SessionConfig) *SessionManager {
	return &SessionManager{config: config}
}

// Issue creates a signed session token for the given user.
func (m *SessionManager) Issue(userID, username string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:    userID,
		Username:  username,
		TokenType: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// Validate parses the token and returns its claims when it is a valid,
// unexpired session token.
func (m *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return []byte(m.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSession
		}
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.TokenType != "session" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Duration returns the configured session lifetime.
func (m *SessionManager) Duration() time.Duration {
	return m.config.Duration
}
