package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/example/todo-tracker/domain/task"
	domain "github.com/example/todo-tracker/domain/user"
	"github.com/example/todo-tracker/modules/auth"
	"github.com/example/todo-tracker/modules/tasks"
	"github.com/gofiber/fiber/v2"
)

// mockAuthPort is a configurable auth.Port for handler tests.
type mockAuthPort struct {
	registerFunc func(username, email, password string) (*domain.Info, error)
	loginFunc    func(username, password string) (*domain.Info, string, error)
	validateFunc func(token string) (*domain.Claims, error)
	users        []auth.UserSummary
}

func (m *mockAuthPort) Register(_ context.Context, username, email, password string) (*domain.Info, error) {
	return m.registerFunc(username, email, password)
}

func (m *mockAuthPort) Login(_ context.Context, username, password string) (*domain.Info, string, error) {
	return m.loginFunc(username, password)
}

func (m *mockAuthPort) ValidateSession(_ context.Context, token string) (*domain.Claims, error) {
	if m.validateFunc != nil {
		return m.validateFunc(token)
	}
	return nil, errors.New("invalid session token")
}

func (m *mockAuthPort) GetUser(_ context.Context, userID string) (*domain.Info, error) {
	return &domain.Info{ID: userID}, nil
}

func (m *mockAuthPort) ListUsers(_ context.Context, _ string) ([]auth.UserSummary, error) {
	return m.users, nil
}

func (m *mockAuthPort) GetProfile(_ context.Context, userID string) (*auth.GetProfileResponse, error) {
	return &auth.GetProfileResponse{UserID: userID, DefaultTaskPriority: "medium"}, nil
}

// mockTaskPort is a configurable tasks.Port for handler tests.
type mockTaskPort struct {
	createFunc func(actorID string, in tasks.TaskInput) (*tasks.TaskView, tasks.FieldErrors, error)
	getFunc    func(actorID, taskID string) (*tasks.TaskView, error)
	listFunc   func(actorID string, filters task.Filters, page int) (*tasks.ListTasksResponse, error)
	updateFunc func(actorID, taskID string, in tasks.TaskInput) (*tasks.TaskView, tasks.FieldErrors, error)
	deleteFunc func(actorID, taskID string) error
	toggleFunc func(actorID, taskID string) (*tasks.TaskView, error)

	deleteCalls int
}

func (m *mockTaskPort) Create(_ context.Context, actorID string, in tasks.TaskInput) (*tasks.TaskView, tasks.FieldErrors, error) {
	return m.createFunc(actorID, in)
}

func (m *mockTaskPort) Get(_ context.Context, actorID, taskID string) (*tasks.TaskView, error) {
	return m.getFunc(actorID, taskID)
}

func (m *mockTaskPort) List(_ context.Context, actorID string, filters task.Filters, page int) (*tasks.ListTasksResponse, error) {
	return m.listFunc(actorID, filters, page)
}

func (m *mockTaskPort) Update(_ context.Context, actorID, taskID string, in tasks.TaskInput) (*tasks.TaskView, tasks.FieldErrors, error) {
	return m.updateFunc(actorID, taskID, in)
}

func (m *mockTaskPort) Delete(_ context.Context, actorID, taskID string) error {
	m.deleteCalls++
	return m.deleteFunc(actorID, taskID)
}

func (m *mockTaskPort) Toggle(_ context.Context, actorID, taskID string) (*tasks.TaskView, error) {
	return m.toggleFunc(actorID, taskID)
}

// newTestApp builds a Fiber app with the real route table over mock ports.
func newTestApp(authPort auth.Port, taskPort tasks.Port) *fiber.App {
	m := &Module{authPort: authPort, taskPort: taskPort}
	m.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	m.setupRoutes()
	return m.app
}

// sessionAuth returns a mockAuthPort accepting exactly one token.
func sessionAuth(token, userID, username string) *mockAuthPort {
	return &mockAuthPort{
		validateFunc: func(got string) (*domain.Claims, error) {
			if got != token {
				return nil, errors.New("invalid session token")
			}
			return &domain.Claims{UserID: userID, Username: username}, nil
		},
	}
}

func formRequest(method, target string, values url.Values) *http.Request {
	req, _ := http.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeFlash(t *testing.T, c *http.Cookie) string {
	t.Helper()
	decoded, err := url.QueryUnescape(c.Value)
	if err != nil {
		t.Fatalf("failed to decode flash cookie: %v", err)
	}
	return decoded
}

func TestLogin(t *testing.T) {
	authPort := &mockAuthPort{
		loginFunc: func(username, password string) (*domain.Info, string, error) {
			if username == "alice" && password == "password123" {
				return &domain.Info{ID: "u1", Username: "alice"}, "token-abc", nil
			}
			return nil, "", errors.New("invalid username or password")
		},
	}
	app := newTestApp(authPort, &mockTaskPort{})

	t.Run("success sets cookie and redirects", func(t *testing.T) {
		req := formRequest("POST", "/login", url.Values{
			"username": {"alice"},
			"password": {"password123"},
		})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("status = %d, want 302", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/tasks" {
			t.Errorf("Location = %q, want /tasks", loc)
		}
		cookie := findCookie(resp, "session")
		if cookie == nil || cookie.Value != "token-abc" {
			t.Errorf("session cookie = %+v", cookie)
		}
		if cookie != nil && !cookie.HttpOnly {
			t.Error("session cookie is not HttpOnly")
		}
	})

	t.Run("honors safe next target", func(t *testing.T) {
		req := formRequest("POST", "/login", url.Values{
			"username": {"alice"},
			"password": {"password123"},
			"next":     {"/tasks/t1"},
		})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if loc := resp.Header.Get("Location"); loc != "/tasks/t1" {
			t.Errorf("Location = %q, want /tasks/t1", loc)
		}
	})

	t.Run("rejects off-site next target", func(t *testing.T) {
		req := formRequest("POST", "/login", url.Values{
			"username": {"alice"},
			"password": {"password123"},
			"next":     {"//evil.example.com/"},
		})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if loc := resp.Header.Get("Location"); loc != "/tasks" {
			t.Errorf("Location = %q, want /tasks", loc)
		}
	})

	t.Run("bad credentials re-render the form", func(t *testing.T) {
		req := formRequest("POST", "/login", url.Values{
			"username": {"alice"},
			"password": {"wrong"},
		})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var ctx AuthFormContext
		if err := json.NewDecoder(resp.Body).Decode(&ctx); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if ctx.Errors["__all__"] != "Invalid username or password." {
			t.Errorf("errors = %v", ctx.Errors)
		}
		if findCookie(resp, "session") != nil {
			t.Error("session cookie set on failed login")
		}
	})
}

func TestRegister(t *testing.T) {
	authPort := &mockAuthPort{
		registerFunc: func(username, email, password string) (*domain.Info, error) {
			if username == "taken" {
				return nil, errors.New("username is already taken")
			}
			return &domain.Info{ID: "u1", Username: username, Email: email}, nil
		},
		loginFunc: func(username, password string) (*domain.Info, string, error) {
			return &domain.Info{ID: "u1", Username: username}, "token-new", nil
		},
	}
	app := newTestApp(authPort, &mockTaskPort{})

	t.Run("success logs the user in", func(t *testing.T) {
		req := formRequest("POST", "/register", url.Values{
			"username":         {"alice"},
			"password":         {"password123"},
			"password_confirm": {"password123"},
		})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("status = %d, want 302", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/tasks" {
			t.Errorf("Location = %q, want /tasks", loc)
		}
		if cookie := findCookie(resp, "session"); cookie == nil || cookie.Value != "token-new" {
			t.Errorf("session cookie = %+v", cookie)
		}
		flash := findCookie(resp, "flash")
		if flash == nil || !strings.Contains(decodeFlash(t, flash), "Account created for alice!") {
			t.Errorf("flash cookie = %+v", flash)
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		req := formRequest("POST", "/register", url.Values{
			"username":         {"alice"},
			"password":         {"password123"},
			"password_confirm": {"different"},
		})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var ctx AuthFormContext
		if err := json.NewDecoder(resp.Body).Decode(&ctx); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if _, ok := ctx.Errors["password_confirm"]; !ok {
			t.Errorf("errors = %v", ctx.Errors)
		}
	})

	t.Run("duplicate username becomes a field error", func(t *testing.T) {
		req := formRequest("POST", "/register", url.Values{
			"username":         {"taken"},
			"password":         {"password123"},
			"password_confirm": {"password123"},
		})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var ctx AuthFormContext
		if err := json.NewDecoder(resp.Body).Decode(&ctx); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if _, ok := ctx.Errors["username"]; !ok {
			t.Errorf("errors = %v", ctx.Errors)
		}
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(&mockAuthPort{}, &mockTaskPort{})

	req, _ := http.NewRequest("POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token-abc"})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	cookie := findCookie(resp, "session")
	if cookie == nil || cookie.Value != "" {
		t.Errorf("session cookie not cleared: %+v", cookie)
	}
}

func TestListTasks(t *testing.T) {
	var gotFilters task.Filters
	var gotPage int
	taskPort := &mockTaskPort{
		listFunc: func(actorID string, filters task.Filters, page int) (*tasks.ListTasksResponse, error) {
			gotFilters, gotPage = filters, page
			return &tasks.ListTasksResponse{
				Tasks:        []tasks.TaskView{{ID: "t1", Title: "one"}},
				Page:         page,
				PageSize:     task.PageSize,
				TotalTasks:   1,
				TotalPages:   1,
				OverdueCount: 2,
			}, nil
		},
	}
	app := newTestApp(sessionAuth("good", "u1", "alice"), taskPort)

	req, _ := http.NewRequest("GET", "/tasks?status=pending&priority=high&show_completed=false&assigned_to_me=true&page=3", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	want := task.Filters{Status: "pending", Priority: "high", ShowCompleted: false, AssignedToMe: true}
	if gotFilters != want {
		t.Errorf("filters = %+v, want %+v", gotFilters, want)
	}
	if gotPage != 3 {
		t.Errorf("page = %d, want 3", gotPage)
	}

	var ctx TaskListContext
	if err := json.NewDecoder(resp.Body).Decode(&ctx); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(ctx.Tasks) != 1 || ctx.OverdueCount != 2 {
		t.Errorf("context = %+v", ctx)
	}
}

func TestAssigneeCanEditButNotDelete(t *testing.T) {
	// bob is the assignee of a task created by alice.
	view := &tasks.TaskView{
		ID:           "t1",
		Title:        "shared",
		CreatedByID:  "alice",
		AssignedToID: "bob",
	}
	taskPort := &mockTaskPort{
		getFunc: func(actorID, taskID string) (*tasks.TaskView, error) {
			return view, nil
		},
		deleteFunc: func(actorID, taskID string) error {
			return errors.New("permission denied")
		},
	}
	app := newTestApp(sessionAuth("bob-session", "bob", "bob"), taskPort)

	t.Run("edit form is available", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/tasks/t1/edit", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "bob-session"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("delete confirmation is refused", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/tasks/t1/delete", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "bob-session"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("status = %d, want 302", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/tasks" {
			t.Errorf("Location = %q, want /tasks", loc)
		}
		flash := findCookie(resp, "flash")
		if flash == nil || !strings.Contains(decodeFlash(t, flash), "permission") {
			t.Errorf("flash cookie = %+v", flash)
		}
	})

	t.Run("delete is refused with flash and redirect", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/tasks/t1/delete", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "bob-session"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("status = %d, want 302", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/tasks" {
			t.Errorf("Location = %q, want /tasks", loc)
		}
		flash := findCookie(resp, "flash")
		if flash == nil || !strings.Contains(decodeFlash(t, flash), "You do not have permission to delete this task.") {
			t.Errorf("flash cookie = %+v", flash)
		}
	})
}

func TestShowTask_NotFound(t *testing.T) {
	taskPort := &mockTaskPort{
		getFunc: func(actorID, taskID string) (*tasks.TaskView, error) {
			return nil, errors.New("task not found")
		},
	}
	app := newTestApp(sessionAuth("good", "u1", "alice"), taskPort)

	req, _ := http.NewRequest("GET", "/tasks/missing", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateTask(t *testing.T) {
	t.Run("success flashes and redirects", func(t *testing.T) {
		taskPort := &mockTaskPort{
			createFunc: func(actorID string, in tasks.TaskInput) (*tasks.TaskView, tasks.FieldErrors, error) {
				return &tasks.TaskView{ID: "t1", Title: in.Title}, nil, nil
			},
		}
		app := newTestApp(sessionAuth("good", "u1", "alice"), taskPort)

		req := formRequest("POST", "/tasks", url.Values{"title": {"Buy milk"}})
		req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("status = %d, want 302", resp.StatusCode)
		}
		flash := findCookie(resp, "flash")
		if flash == nil || !strings.Contains(decodeFlash(t, flash), `Task "Buy milk" created successfully!`) {
			t.Errorf("flash cookie = %+v", flash)
		}
	})

	t.Run("validation failure re-renders the form", func(t *testing.T) {
		taskPort := &mockTaskPort{
			createFunc: func(actorID string, in tasks.TaskInput) (*tasks.TaskView, tasks.FieldErrors, error) {
				return nil, tasks.FieldErrors{"title": "This field is required."}, nil
			},
		}
		app := newTestApp(sessionAuth("good", "u1", "alice"), taskPort)

		req := formRequest("POST", "/tasks", url.Values{"title": {""}})
		req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var ctx TaskFormContext
		if err := json.NewDecoder(resp.Body).Decode(&ctx); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if _, ok := ctx.Errors["title"]; !ok {
			t.Errorf("errors = %v", ctx.Errors)
		}
	})

	t.Run("malformed deadline is a field error", func(t *testing.T) {
		taskPort := &mockTaskPort{
			createFunc: func(actorID string, in tasks.TaskInput) (*tasks.TaskView, tasks.FieldErrors, error) {
				t.Error("create called despite parse failure")
				return nil, nil, nil
			},
		}
		app := newTestApp(sessionAuth("good", "u1", "alice"), taskPort)

		req := formRequest("POST", "/tasks", url.Values{
			"title":    {"t"},
			"deadline": {"soonish"},
		})
		req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var ctx TaskFormContext
		if err := json.NewDecoder(resp.Body).Decode(&ctx); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if _, ok := ctx.Errors["deadline"]; !ok {
			t.Errorf("errors = %v", ctx.Errors)
		}
	})
}

func TestToggleTask(t *testing.T) {
	completed := true
	taskPort := &mockTaskPort{
		toggleFunc: func(actorID, taskID string) (*tasks.TaskView, error) {
			return &tasks.TaskView{ID: taskID, Title: "t", Completed: completed}, nil
		},
	}
	app := newTestApp(sessionAuth("good", "u1", "alice"), taskPort)

	t.Run("completion flash", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/tasks/t1/toggle", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("status = %d, want 302", resp.StatusCode)
		}
		flash := findCookie(resp, "flash")
		if flash == nil || !strings.Contains(decodeFlash(t, flash), "marked as completed") {
			t.Errorf("flash cookie = %+v", flash)
		}
	})

	t.Run("reopen flash", func(t *testing.T) {
		completed = false
		req, _ := http.NewRequest("POST", "/tasks/t1/toggle", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		flash := findCookie(resp, "flash")
		if flash == nil || !strings.Contains(decodeFlash(t, flash), "marked as pending") {
			t.Errorf("flash cookie = %+v", flash)
		}
	})
}

func TestFlashRoundTrip(t *testing.T) {
	taskPort := &mockTaskPort{
		listFunc: func(actorID string, filters task.Filters, page int) (*tasks.ListTasksResponse, error) {
			return &tasks.ListTasksResponse{Page: 1, TotalPages: 1}, nil
		},
	}
	app := newTestApp(sessionAuth("good", "u1", "alice"), taskPort)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
	req.AddCookie(&http.Cookie{Name: "flash", Value: url.QueryEscape("success|Task deleted successfully!")})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var ctx TaskListContext
	if err := json.Unmarshal(body, &ctx); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if ctx.Flash == nil || ctx.Flash.Level != "success" || ctx.Flash.Message != "Task deleted successfully!" {
		t.Errorf("flash = %+v", ctx.Flash)
	}

	// The cookie is cleared so the message shows once.
	cleared := findCookie(resp, "flash")
	if cleared == nil || cleared.Value != "" {
		t.Errorf("flash cookie not cleared: %+v", cleared)
	}
}
