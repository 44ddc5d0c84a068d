package web

import (
	"net/url"
	"time"

	"github.com/example/todo-tracker/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookie = "session"

	// CurrentUserKey is the Locals key holding the authenticated identity.
	CurrentUserKey = "currentUser"
)

// RequireAuth redirects unauthenticated requests to the login page,
// preserving the requested path in ?next. Valid sessions put the identity
// claims into the request locals.
func RequireAuth(authPort auth.Port) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookie)
		if token == "" {
			return redirectToLogin(c)
		}

		claims, err := authPort.ValidateSession(c.UserContext(), token)
		if err != nil {
			clearSessionCookie(c)
			return redirectToLogin(c)
		}

		c.Locals(CurrentUserKey, claims)
		return c.Next()
	}
}

func redirectToLogin(c *fiber.Ctx) error {
	next := url.QueryEscape(c.OriginalURL())
	return c.Redirect("/login?next="+next, fiber.StatusFound)
}

func setSessionCookie(c *fiber.Ctx, token string, lifetime time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(lifetime),
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
}
