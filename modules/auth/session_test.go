package auth

import (
	"testing"
	"time"
)

func newTestSessionManager(duration time.Duration) *SessionManager {
	cfg := DefaultSessionConfig()
	cfg.SecretKey = "test-secret-key"
	cfg.Duration = duration
	return NewSessionManager(cfg)
}

func TestSessionManager_IssueAndValidate(t *testing.T) {
	m := newTestSessionManager(time.Hour)

	token, err := m.Issue("user-123", "alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.TokenType != "session" {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, "session")
	}
}

func TestSessionManager_Validate_Errors(t *testing.T) {
	m := newTestSessionManager(time.Hour)

	t.Run("malformed token", func(t *testing.T) {
		if _, err := m.Validate("not-a-token"); err != ErrInvalidSession {
			t.Errorf("err = %v, want ErrInvalidSession", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessionManager(SessionConfig{
			SecretKey: "different-secret",
			Duration:  time.Hour,
			Issuer:    "todo-tracker",
		})
		token, err := other.Issue("user-123", "alice")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := m.Validate(token); err != ErrInvalidSession {
			t.Errorf("err = %v, want ErrInvalidSession", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestSessionManager(-time.Minute)
		token, err := expired.Issue("user-123", "alice")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := expired.Validate(token); err != ErrExpiredSession {
			t.Errorf("err = %v, want ErrExpiredSession", err)
		}
	})
}
