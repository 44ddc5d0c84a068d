package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	domaintask "github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module provides the task lifecycle and list services.
type Module struct {
	db            *gorm.DB
	service       *Service
	dbPath        string
	authContainer mono.ServiceContainer
	authPort      auth.Port
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the tasks module. It shares its database with the auth
// module so user foreign keys and cascades hold.
func NewModule() *Module {
	dbPath := os.Getenv("TODO_DB_PATH")
	if dbPath == "" {
		dbPath = "todo.db"
	}
	return &Module{dbPath: dbPath}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "tasks"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.authContainer = container
		m.authPort = auth.NewAdapter(container)
	}
}

// Start opens the database, runs migrations and wires the service.
func (m *Module) Start(_ context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domaintask.Task{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewRepository(db)
	form := NewForm(&portDirectory{port: m.authPort})
	m.service = NewService(repo, form)

	log.Printf("[tasks] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[tasks] Module stopped")
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
	services := []struct {
		name string
		err  error
	}{
		{"create", helper.RegisterTypedRequestReplyService(
			container, "create", json.Unmarshal, json.Marshal, m.handleCreate)},
		{"get", helper.RegisterTypedRequestReplyService(
			container, "get", json.Unmarshal, json.Marshal, m.handleGet)},
		{"list", helper.RegisterTypedRequestReplyService(
			container, "list", json.Unmarshal, json.Marshal, m.handleList)},
		{"update", helper.RegisterTypedRequestReplyService(
			container, "update", json.Unmarshal, json.Marshal, m.handleUpdate)},
		{"delete", helper.RegisterTypedRequestReplyService(
			container, "delete", json.Unmarshal, json.Marshal, m.handleDelete)},
		{"toggle", helper.RegisterTypedRequestReplyService(
			container, "toggle", json.Unmarshal, json.Marshal, m.handleToggle)},
	}
	for _, s := range services {
		if s.err != nil {
			return fmt.Errorf("failed to register %s service: %w", s.name, s.err)
		}
	}

	log.Printf("[tasks] Registered services: create, get, list, update, delete, toggle")
	return nil
}

func (m *Module) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (CreateTaskResponse, error) {
	t, fieldErrs, err := m.service.Create(ctx, req.ActorID, req.Input)
	if err != nil {
		return CreateTaskResponse{}, err
	}
	if fieldErrs.HasErrors() {
		return CreateTaskResponse{Errors: fieldErrs}, nil
	}
	view := toTaskView(t, time.Now())
	return CreateTaskResponse{Task: &view}, nil
}

func (m *Module) handleGet(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (GetTaskResponse, error) {
	t, err := m.service.Get(ctx, req.ActorID, req.TaskID)
	if err != nil {
		return GetTaskResponse{}, err
	}
	return GetTaskResponse{Task: toTaskView(t, time.Now())}, nil
}

func (m *Module) handleList(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	page, overdue, err := m.service.List(ctx, req.ActorID, req.Filters, req.Page)
	if err != nil {
		return ListTasksResponse{}, err
	}

	now := time.Now()
	resp := ListTasksResponse{
		Tasks:        make([]TaskView, 0, len(page.Tasks)),
		Page:         page.PageNumber,
		PageSize:     page.PageSize,
		TotalTasks:   page.TotalTasks,
		TotalPages:   page.TotalPages,
		HasNext:      page.HasNext,
		HasPrev:      page.HasPrev,
		OverdueCount: overdue,
	}
	for _, t := range page.Tasks {
		resp.Tasks = append(resp.Tasks, toTaskView(t, now))
	}
	return resp, nil
}

func (m *Module) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (UpdateTaskResponse, error) {
	t, fieldErrs, err := m.service.Update(ctx, req.ActorID, req.TaskID, req.Input)
	if err != nil {
		return UpdateTaskResponse{}, err
	}
	if fieldErrs.HasErrors() {
		return UpdateTaskResponse{Errors: fieldErrs}, nil
	}
	view := toTaskView(t, time.Now())
	return UpdateTaskResponse{Task: &view}, nil
}

func (m *Module) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.ActorID, req.TaskID); err != nil {
		return DeleteTaskResponse{Deleted: false, TaskID: req.TaskID}, err
	}
	return DeleteTaskResponse{Deleted: true, TaskID: req.TaskID}, nil
}

func (m *Module) handleToggle(ctx context.Context, req ToggleTaskRequest, _ *mono.Msg) (ToggleTaskResponse, error) {
	t, err := m.service.Toggle(ctx, req.ActorID, req.TaskID)
	if err != nil {
		return ToggleTaskResponse{}, err
	}
	return ToggleTaskResponse{Task: toTaskView(t, time.Now())}, nil
}

// portDirectory adapts auth.Port to the form's UserDirectory.
type portDirectory struct {
	port auth.Port
}

// UserExists reports whether the user id resolves through the auth module.
func (d *portDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	_, err := d.port.GetUser(ctx, userID)
	if err != nil {
		if strings.Contains(err.Error(), "user not found") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
