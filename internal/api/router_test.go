package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/api/handler"
	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
	"github.com/Zakyahmed/SaveEat-New/internal/core/validation"
)

type fakeAuth struct {
	role domain.Role
}

func (f fakeAuth) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	entity := int64(3)
	return domain.NewSession("tok", domain.Identity{ID: 1, Role: f.role, EntityID: &entity})
}

func (f fakeAuth) Register(ctx context.Context, in ports.RegisterInput) (*domain.Session, error) {
	return domain.NewSession("tok", domain.Identity{ID: 2, Role: in.Role})
}

func (fakeAuth) Logout(ctx context.Context, token string) error { return nil }

func (fakeAuth) Profile(ctx context.Context, token string) (*domain.Identity, error) {
	return nil, domain.ErrUnauthorized
}

type memRepo struct {
	sess *domain.Session
}

func (m *memRepo) Save(ctx context.Context, s *domain.Session) error { m.sess = s.Clone(); return nil }

func (m *memRepo) Load(ctx context.Context) (*domain.Session, error) {
	if m.sess == nil {
		return nil, domain.ErrNoSession
	}
	return m.sess.Clone(), nil
}

func (m *memRepo) Clear(ctx context.Context) error { m.sess = nil; return nil }
func (m *memRepo) Ping(ctx context.Context) error  { return nil }

type emptyListings struct{ ports.ListingService }

func (emptyListings) ListAvailable(ctx context.Context, token string) ([]domain.Listing, error) {
	return []domain.Listing{}, nil
}

func (emptyListings) ListMine(ctx context.Context, token string, f ports.ListingFilter) ([]domain.Listing, error) {
	return []domain.Listing{}, nil
}

type emptyReservations struct{ ports.ReservationService }

func (emptyReservations) ListMine(ctx context.Context, token string, role domain.Role, f ports.ReservationFilter) ([]domain.Reservation, error) {
	return []domain.Reservation{}, nil
}

type inlineRunner struct{}

func (inlineRunner) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	return fn(ctx)
}

func newTestRouter(role domain.Role) *echo.Echo {
	log := zerolog.Nop()
	valid := validation.New()
	sessions := service.NewSessionStore(fakeAuth{role: role}, &memRepo{}, valid, log)
	data := service.NewDataStore(emptyListings{}, emptyReservations{}, sessions, inlineRunner{}, valid, log)
	profiles := service.NewProfileManager(nil, sessions, valid, log)

	return NewRouter(Deps{
		Sessions: sessions,
		Data:     data,
		Profiles: profiles,
		Ready:    map[string]handler.Pinger{"session_store": &memRepo{}},
		Log:      log,
		Registry: prometheus.NewRegistry(),
	})
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_OperationalRoutes(t *testing.T) {
	e := newTestRouter(domain.RoleRestaurant)

	for _, path := range []string{"/health", "/health/ready", "/metrics", "/swagger/doc.json"} {
		if rec := serve(e, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_SignedOutIsUnauthorized(t *testing.T) {
	e := newTestRouter(domain.RoleRestaurant)

	for _, path := range []string{"/session", "/profile", "/listings", "/reservations"} {
		rec := serve(e, http.MethodGet, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s: expected 401, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Fatalf("GET %s: unexpected body %s", path, rec.Body.String())
		}
	}
}

func TestRouter_RoleGuards(t *testing.T) {
	e := newTestRouter(domain.RoleRestaurant)

	if rec := serve(e, http.MethodPost, "/session/login", `{"email":"lea@example.ch","password":"pw"}`); rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := serve(e, http.MethodGet, "/listings/mine", ""); rec.Code != http.StatusOK {
		t.Fatalf("my listings: expected 200, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "/reservations", `{"listing_id":1,"collect_at":"2026-10-17T09:00:00Z"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("restaurant reserving: expected 403, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "/reservations/1/transitions", `{"action":"fly"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown action: expected 400, got %d", rec.Code)
	}
}

func TestRouter_ValidationBeforeNetwork(t *testing.T) {
	e := newTestRouter(domain.RoleAssociation)

	rec := serve(e, http.MethodPost, "/session/login", `{"email":"not-an-email","password":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"fields"`) {
		t.Fatalf("expected field errors, got %s", rec.Body.String())
	}
}

func TestRouter_LogoutClearsSession(t *testing.T) {
	e := newTestRouter(domain.RoleAssociation)

	serve(e, http.MethodPost, "/session/login", `{"email":"jo@asso.ch","password":"pw"}`)
	if rec := serve(e, http.MethodGet, "/session", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected signed in, got %d", rec.Code)
	}
	serve(e, http.MethodPost, "/session/logout", "")
	if rec := serve(e, http.MethodGet, "/session", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected signed out, got %d", rec.Code)
	}
}
