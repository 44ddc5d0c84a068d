package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/todo-tracker/modules/auth"
	"github.com/example/todo-tracker/modules/tasks"
	"github.com/example/todo-tracker/modules/web"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Order: independent modules first, then dependent modules.
	app.Register(auth.NewModule())
	app.Register(tasks.NewModule()) // depends on auth
	app.Register(web.NewModule())   // depends on auth and tasks

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Routes (http://localhost:3000):")
	log.Println("")
	log.Println("  Accounts:")
	log.Println("  GET/POST  /register           - Create an account")
	log.Println("  GET/POST  /login              - Log in")
	log.Println("  POST      /logout             - Log out")
	log.Println("")
	log.Println("  Tasks (session required; unauthenticated requests redirect to /login):")
	log.Println("  GET       /tasks              - List tasks (status, priority, show_completed, assigned_to_me, page)")
	log.Println("  GET       /tasks/new          - Creation form")
	log.Println("  POST      /tasks              - Create a task")
	log.Println("  GET       /tasks/:id          - Task detail")
	log.Println("  GET       /tasks/:id/edit     - Edit form")
	log.Println("  POST      /tasks/:id          - Update a task")
	log.Println("  GET/POST  /tasks/:id/delete   - Confirm, then delete")
	log.Println("  POST      /tasks/:id/toggle   - Toggle completion")
	log.Println("")
	log.Println("  GET       /health             - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
