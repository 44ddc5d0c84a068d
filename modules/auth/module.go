package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	domainuser "github.com/example/todo-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module provides account and session services.
type Module struct {
	db      *gorm.DB
	service *Service
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the auth module. The database path is shared with the
// tasks module so user foreign keys and cascades work.
func NewModule() *Module {
	dbPath := os.Getenv("TODO_DB_PATH")
	if dbPath == "" {
		dbPath = "todo.db"
	}
	return &Module{dbPath: dbPath}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "auth"
}

// Start opens the database, runs migrations and wires the service.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Map unique-constraint violations to gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domainuser.User{}, &domainuser.Profile{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	sessions := NewSessionManager(loadSessionConfig())
	m.service = NewService(repo, hasher, sessions)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health reports module health based on database reachability.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get database connection: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.dbPath},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	register := func(name string, err error) error {
		if err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
		return nil
	}

	if err := register("register", helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	)); err != nil {
		return err
	}
	if err := register("login", helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	)); err != nil {
		return err
	}
	if err := register("validate-session", helper.RegisterTypedRequestReplyService(
		container, "validate-session", json.Unmarshal, json.Marshal, m.handleValidateSession,
	)); err != nil {
		return err
	}
	if err := register("get-user", helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	)); err != nil {
		return err
	}
	if err := register("list-users", helper.RegisterTypedRequestReplyService(
		container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers,
	)); err != nil {
		return err
	}
	if err := register("get-profile", helper.RegisterTypedRequestReplyService(
		container, "get-profile", json.Unmarshal, json.Marshal, m.handleGetProfile,
	)); err != nil {
		return err
	}

	log.Printf("[auth] Registered services: register, login, validate-session, get-user, list-users, get-profile")
	return nil
}

func (m *Module) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (m *Module) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	user, token, err := m.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		SessionToken: token,
		UserID:       user.ID,
		Username:     user.Username,
	}, nil
}

func (m *Module) handleValidateSession(ctx context.Context, req ValidateSessionRequest, _ *mono.Msg) (ValidateSessionResponse, error) {
	claims, err := m.service.ValidateSession(ctx, req.Token)
	if err != nil {
		errMsg := "invalid session"
		if errors.Is(err, ErrExpiredSession) {
			errMsg = "session expired"
		}
		// Validation failures are a response, not an error.
		return ValidateSessionResponse{Valid: false, Error: errMsg}, nil
	}
	return ValidateSessionResponse{
		Valid:    true,
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}

func (m *Module) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}
	return GetUserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (m *Module) handleListUsers(ctx context.Context, req ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	users, err := m.service.ListUsers(ctx, req.ExcludeID)
	if err != nil {
		return ListUsersResponse{}, err
	}
	resp := ListUsersResponse{
		Users: make([]UserSummary, 0, len(users)),
		Total: len(users),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, UserSummary{ID: u.ID, Username: u.Username})
	}
	return resp, nil
}

func (m *Module) handleGetProfile(ctx context.Context, req GetProfileRequest, _ *mono.Msg) (GetProfileResponse, error) {
	profile, err := m.service.GetProfile(ctx, req.UserID)
	if err != nil {
		return GetProfileResponse{}, err
	}
	return GetProfileResponse{
		UserID:              profile.UserID,
		Bio:                 profile.Bio,
		PhoneNumber:         profile.PhoneNumber,
		DefaultTaskPriority: profile.DefaultTaskPriority,
		EmailNotifications:  profile.EmailNotifications,
		Timezone:            profile.Timezone,
	}, nil
}

// loadSessionConfig loads session signing configuration from environment
// variables, falling back to defaults.
func loadSessionConfig() SessionConfig {
	config := DefaultSessionConfig()
	if secret := os.Getenv("SESSION_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}
	if issuer := os.Getenv("SESSION_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}
	if d := os.Getenv("SESSION_DURATION"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil {
			config.Duration = parsed
		}
	}
	return config
}
