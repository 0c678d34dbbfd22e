package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// SessionSource yields the current session, nil when signed out.
type SessionSource interface {
	Current() *domain.Session
}

// RequireSession rejects requests made while signed out and injects the
// session and role into the context for handlers and RBAC.
func RequireSession(src SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := src.Current()
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}

			c.Set("session", sess)
			c.Set("role", string(sess.Identity.Role))
			if sess.Identity.HasEntity() {
				c.Set("entity_id", *sess.Identity.EntityID)
			}

			return next(c)
		}
	}
}
