package web

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/todo-tracker/modules/auth"
	"github.com/example/todo-tracker/modules/tasks"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// sessionLifetime bounds the session cookie; the token inside carries its
// own expiry as well.
const sessionLifetime = 14 * 24 * time.Hour

// Module is the HTTP surface of the application.
type Module struct {
	app      *fiber.App
	addr     string
	authPort auth.Port
	taskPort tasks.Port
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the web module.
func NewModule() *Module {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	return &Module{addr: addr}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "web"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"auth", "tasks"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAdapter(container)
	case "tasks":
		m.taskPort = tasks.NewAdapter(container)
	}
}

// Start brings up the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.authPort == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.taskPort == nil {
		return fmt.Errorf("tasks dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[web] HTTP server error: %v", err)
		}
	}()

	log.Printf("[web] HTTP server started on %s", m.addr)
	return nil
}

// Stop shuts down the HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[web] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health reports whether the server is up.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{"addr": m.addr},
	}
}

// setupRoutes configures the route table.
func (m *Module) setupRoutes() {
	handlers := NewHandlers(m.authPort, m.taskPort)

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "module": "web"})
	})

	// Account routes.
	m.app.Get("/register", handlers.ShowRegister)
	m.app.Post("/register", handlers.Register)
	m.app.Get("/login", handlers.ShowLogin)
	m.app.Post("/login", handlers.Login)
	m.app.Post("/logout", handlers.Logout)

	// Task routes, all behind the session check.
	taskRoutes := m.app.Group("/tasks", RequireAuth(m.authPort))
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/new", handlers.NewTask)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/:id", handlers.ShowTask)
	taskRoutes.Get("/:id/edit", handlers.EditTask)
	taskRoutes.Post("/:id", handlers.UpdateTask)
	taskRoutes.Get("/:id/delete", handlers.ConfirmDeleteTask)
	taskRoutes.Post("/:id/delete", handlers.DeleteTask)
	taskRoutes.Post("/:id/toggle", handlers.ToggleTask)
}
