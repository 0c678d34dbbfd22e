package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

type stubSessions struct {
	loginFn    func(ctx context.Context, in ports.LoginInput) service.Result[*domain.Session]
	registerFn func(ctx context.Context, in ports.RegisterInput) service.Result[*domain.Session]
	logoutFn   func(ctx context.Context) service.Result[struct{}]
	refreshFn  func(ctx context.Context) service.Result[*domain.Identity]
}

func (s *stubSessions) Login(ctx context.Context, in ports.LoginInput) service.Result[*domain.Session] {
	return s.loginFn(ctx, in)
}

func (s *stubSessions) Register(ctx context.Context, in ports.RegisterInput) service.Result[*domain.Session] {
	return s.registerFn(ctx, in)
}

func (s *stubSessions) Logout(ctx context.Context) service.Result[struct{}] {
	return s.logoutFn(ctx)
}

func (s *stubSessions) RefreshIdentity(ctx context.Context) service.Result[*domain.Identity] {
	return s.refreshFn(ctx)
}

type stubBoot struct {
	calls int
	err   error
}

func (b *stubBoot) Bootstrap(ctx context.Context) service.Result[struct{}] {
	b.calls++
	return service.Result[struct{}]{Success: b.err == nil, Err: b.err}
}

type stubListingStore struct {
	fetchAllFn func(ctx context.Context) service.Result[[]domain.Listing]
	available  []domain.Listing
	fetchMine  func(ctx context.Context, f ports.ListingFilter) service.Result[[]domain.Listing]
	searchFn   func(ctx context.Context, p ports.SearchParams) service.Result[[]domain.Listing]
	getFn      func(ctx context.Context, id int64) service.Result[*domain.Listing]
	actionsFn  func(ctx context.Context, id int64) service.Result[domain.ListingActions]
	createFn   func(ctx context.Context, in ports.ListingInput) service.Result[*domain.Listing]
	updateFn   func(ctx context.Context, id int64, in ports.ListingInput) service.Result[*domain.Listing]
	deleteFn   func(ctx context.Context, id int64) service.Result[struct{}]
}

func (s *stubListingStore) FetchAllListings(ctx context.Context) service.Result[[]domain.Listing] {
	return s.fetchAllFn(ctx)
}

func (s *stubListingStore) AvailableListings() []domain.Listing { return s.available }

func (s *stubListingStore) FetchMyListings(ctx context.Context, f ports.ListingFilter) service.Result[[]domain.Listing] {
	return s.fetchMine(ctx, f)
}

func (s *stubListingStore) SearchListings(ctx context.Context, p ports.SearchParams) service.Result[[]domain.Listing] {
	return s.searchFn(ctx, p)
}

func (s *stubListingStore) GetListing(ctx context.Context, id int64) service.Result[*domain.Listing] {
	return s.getFn(ctx, id)
}

func (s *stubListingStore) ListingActions(ctx context.Context, id int64) service.Result[domain.ListingActions] {
	return s.actionsFn(ctx, id)
}

func (s *stubListingStore) CreateListing(ctx context.Context, in ports.ListingInput) service.Result[*domain.Listing] {
	return s.createFn(ctx, in)
}

func (s *stubListingStore) UpdateListing(ctx context.Context, id int64, in ports.ListingInput) service.Result[*domain.Listing] {
	return s.updateFn(ctx, id, in)
}

func (s *stubListingStore) DeleteListing(ctx context.Context, id int64) service.Result[struct{}] {
	return s.deleteFn(ctx, id)
}

type stubReservationStore struct {
	listFn       func(ctx context.Context, f ports.ReservationFilter) service.Result[[]domain.Reservation]
	createFn     func(ctx context.Context, in ports.ReservationInput) service.Result[*domain.Reservation]
	actionsFn    func(ctx context.Context, id int64) service.Result[[]domain.ReservationAction]
	transitionFn func(ctx context.Context, id int64, action domain.ReservationAction) service.Result[*domain.Reservation]
}

func (s *stubReservationStore) FetchReservations(ctx context.Context, f ports.ReservationFilter) service.Result[[]domain.Reservation] {
	return s.listFn(ctx, f)
}

func (s *stubReservationStore) CreateReservation(ctx context.Context, in ports.ReservationInput) service.Result[*domain.Reservation] {
	return s.createFn(ctx, in)
}

func (s *stubReservationStore) ReservationActions(ctx context.Context, id int64) service.Result[[]domain.ReservationAction] {
	return s.actionsFn(ctx, id)
}

func (s *stubReservationStore) TransitionReservation(ctx context.Context, id int64, action domain.ReservationAction) service.Result[*domain.Reservation] {
	return s.transitionFn(ctx, id, action)
}

type stubProfiles struct {
	fetchFn func(ctx context.Context) service.Result[*domain.Profile]
	saveFn  func(ctx context.Context, in ports.ProfileInput) service.Result[*domain.Profile]
}

func (s *stubProfiles) Fetch(ctx context.Context) service.Result[*domain.Profile] {
	return s.fetchFn(ctx)
}

func (s *stubProfiles) Save(ctx context.Context, in ports.ProfileInput) service.Result[*domain.Profile] {
	return s.saveFn(ctx, in)
}

// newContext builds an echo context for method and target with an optional
// JSON body.
func newContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d", code, he.Code)
	}
}
