package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

type stubSource struct {
	sess *domain.Session
}

func (s stubSource) Current() *domain.Session { return s.sess }

func TestRequireSession_SignedIn(t *testing.T) {
	e := echo.New()
	entity := int64(7)
	src := stubSource{sess: &domain.Session{
		Token:    "tok",
		Identity: domain.Identity{ID: 1, Role: domain.RoleAssociation, EntityID: &entity},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := RequireSession(src)(func(c echo.Context) error {
		called = true
		if c.Get("role") != "association" {
			t.Fatalf("role not set: %v", c.Get("role"))
		}
		if c.Get("entity_id") != int64(7) {
			t.Fatalf("entity_id not set: %v", c.Get("entity_id"))
		}
		if _, ok := c.Get("session").(*domain.Session); !ok {
			t.Fatalf("session not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestRequireSession_SignedOut(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession(stubSource{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireSession_ThenRBAC(t *testing.T) {
	e := echo.New()
	src := stubSource{sess: &domain.Session{Token: "tok", Identity: domain.Identity{ID: 1, Role: domain.RoleAssociation}}}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession(src)(RBAC(domain.RoleRestaurant)(func(c echo.Context) error {
		t.Fatalf("association must not reach a restaurant route")
		return nil
	}))

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
