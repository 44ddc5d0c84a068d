package web

import (
	"log"
	"strings"

	domain "github.com/example/todo-tracker/domain/user"
	"github.com/example/todo-tracker/modules/auth"
	"github.com/example/todo-tracker/modules/tasks"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers for the web surface.
type Handlers struct {
	authPort auth.Port
	taskPort tasks.Port
}

// NewHandlers creates a Handlers instance.
func NewHandlers(authPort auth.Port, taskPort tasks.Port) *Handlers {
	return &Handlers{
		authPort: authPort,
		taskPort: taskPort,
	}
}

// currentClaims returns the identity placed in locals by RequireAuth.
func currentClaims(c *fiber.Ctx) *domain.Claims {
	claims, _ := c.Locals(CurrentUserKey).(*domain.Claims)
	return claims
}

// Errors crossing the service container flatten to strings, so known
// failures are matched by message, as elsewhere in the codebase.
func isPermissionDenied(err error) bool {
	return err != nil && strings.Contains(err.Error(), "permission denied")
}

func isTaskNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "task not found")
}

// ShowRegister renders the registration form context. Authenticated users
// are sent to the task list.
func (h *Handlers) ShowRegister(c *fiber.Ctx) error {
	if h.isAuthenticated(c) {
		return c.Redirect("/tasks", fiber.StatusFound)
	}
	return c.JSON(AuthFormContext{Action: "register", Flash: popFlash(c)})
}

// Register handles a registration submission. On success the new user is
// logged in and redirected to the task list; on failure the form context
// comes back with field errors and nothing is persisted.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var form RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if form.PasswordConfirm != "" && form.Password != form.PasswordConfirm {
		return c.JSON(AuthFormContext{
			Action: "register",
			Errors: map[string]string{"password_confirm": "Passwords do not match."},
		})
	}

	user, err := h.authPort.Register(c.UserContext(), form.Username, form.Email, form.Password)
	if err != nil {
		if errs := registrationFieldErrors(err); errs != nil {
			return c.JSON(AuthFormContext{Action: "register", Errors: errs})
		}
		log.Printf("[web] registration failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}

	// Log the new account in right away, as the original flow does.
	_, token, err := h.authPort.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		setFlash(c, "success", "Account created for "+user.Username+"! Please log in.")
		return c.Redirect("/login", fiber.StatusFound)
	}

	setSessionCookie(c, token, sessionLifetime)
	setFlash(c, "success", "Account created for "+user.Username+"!")
	return c.Redirect("/tasks", fiber.StatusFound)
}

// ShowLogin renders the login form context. Authenticated users are sent to
// the task list.
func (h *Handlers) ShowLogin(c *fiber.Ctx) error {
	if h.isAuthenticated(c) {
		return c.Redirect("/tasks", fiber.StatusFound)
	}
	return c.JSON(AuthFormContext{
		Action: "login",
		Next:   c.Query("next"),
		Flash:  popFlash(c),
	})
}

// Login handles a login submission. Success sets the session cookie and
// redirects, honoring ?next; failure re-renders the form with an error.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var form LoginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	_, token, err := h.authPort.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if strings.Contains(err.Error(), "invalid username or password") {
			return c.JSON(AuthFormContext{
				Action: "login",
				Next:   form.Next,
				Errors: map[string]string{"__all__": "Invalid username or password."},
			})
		}
		log.Printf("[web] login failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}

	setSessionCookie(c, token, sessionLifetime)

	target := safeNextTarget(form.Next)
	return c.Redirect(target, fiber.StatusFound)
}

// Logout clears the session and redirects to the login page.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	clearSessionCookie(c)
	setFlash(c, "success", "You have been successfully logged out.")
	return c.Redirect("/login", fiber.StatusFound)
}

// isAuthenticated reports whether the request carries a valid session.
func (h *Handlers) isAuthenticated(c *fiber.Ctx) bool {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return false
	}
	_, err := h.authPort.ValidateSession(c.UserContext(), token)
	return err == nil
}

// registrationFieldErrors maps known registration failures to form field
// errors. Unknown errors return nil and are treated as internal.
func registrationFieldErrors(err error) map[string]string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "username is already taken"):
		return map[string]string{"username": "This username is already taken."}
	case strings.Contains(errStr, "username must be"):
		return map[string]string{"username": "Username must be 3-30 characters: letters, digits, . _ -"}
	case strings.Contains(errStr, "invalid email format"):
		return map[string]string{"email": "Enter a valid email address."}
	case strings.Contains(errStr, "password must be at least"):
		return map[string]string{"password": "Password must be at least 8 characters."}
	case strings.Contains(errStr, "password must be at most"):
		return map[string]string{"password": "Password must be at most 72 characters."}
	}
	return nil
}

// safeNextTarget keeps post-login redirects on-site.
func safeNextTarget(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/tasks"
	}
	return next
}
