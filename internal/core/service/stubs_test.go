package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/validation"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuth struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.Session, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Session, error)
	logoutFn   func(ctx context.Context, token string) error
	profileFn  func(ctx context.Context, token string) (*domain.Identity, error)
	calls      int
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	s.calls++
	return s.loginFn(ctx, email, password)
}

func (s *stubAuth) Register(ctx context.Context, in ports.RegisterInput) (*domain.Session, error) {
	s.calls++
	return s.registerFn(ctx, in)
}

func (s *stubAuth) Logout(ctx context.Context, token string) error {
	s.calls++
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func (s *stubAuth) Profile(ctx context.Context, token string) (*domain.Identity, error) {
	s.calls++
	return s.profileFn(ctx, token)
}

// memRepo is an in-memory ports.SessionRepository.
type memRepo struct {
	mu      sync.Mutex
	saved   *domain.Session
	saveErr error
	cleared int
	// onSave runs at the start of Save, outside the lock.
	onSave func()
}

func (r *memRepo) Save(_ context.Context, s *domain.Session) error {
	if r.onSave != nil {
		r.onSave()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = s.Clone()
	return nil
}

func (r *memRepo) Load(_ context.Context) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		return nil, domain.ErrNoSession
	}
	return r.saved.Clone(), nil
}

func (r *memRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = nil
	r.cleared++
	return nil
}

func (r *memRepo) Ping(_ context.Context) error { return nil }

type stubListings struct {
	mu        sync.Mutex
	available []domain.Listing
	mine      []domain.Listing
	listErr   error
	createFn  func(in ports.ListingInput) (*domain.Listing, error)
	getFn     func(id int64) (*domain.Listing, error)
	// onAvailable runs at the start of ListAvailable, outside the lock.
	onAvailable func()
	calls       map[string]int
}

func newStubListings() *stubListings {
	return &stubListings{calls: map[string]int{}}
}

func (s *stubListings) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubListings) hit(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *stubListings) ListAvailable(_ context.Context, _ string) ([]domain.Listing, error) {
	s.hit("available")
	if s.onAvailable != nil {
		s.onAvailable()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Listing{}, s.available...), nil
}

func (s *stubListings) ListMine(_ context.Context, _ string, _ ports.ListingFilter) ([]domain.Listing, error) {
	s.hit("mine")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Listing{}, s.mine...), nil
}

func (s *stubListings) Get(_ context.Context, _ string, id int64) (*domain.Listing, error) {
	s.hit("get")
	if s.getFn != nil {
		return s.getFn(id)
	}
	return nil, domain.ErrListingNotFound
}

func (s *stubListings) Create(_ context.Context, _ string, in ports.ListingInput) (*domain.Listing, error) {
	s.hit("create")
	return s.createFn(in)
}

func (s *stubListings) Update(_ context.Context, _ string, id int64, in ports.ListingInput) (*domain.Listing, error) {
	s.hit("update")
	return &domain.Listing{ID: id, Title: in.Title, Status: domain.ListingAvailable}, nil
}

func (s *stubListings) Delete(_ context.Context, _ string, _ int64) error {
	s.hit("delete")
	return nil
}

func (s *stubListings) Search(_ context.Context, _ string, _ ports.SearchParams) ([]domain.Listing, error) {
	s.hit("search")
	return []domain.Listing{}, nil
}

type stubReservations struct {
	mu          sync.Mutex
	items       []domain.Reservation
	setStatusFn func(id int64, st domain.ReservationStatus) (*domain.Reservation, error)
	calls       map[string]int
	lastRole    domain.Role
}

func newStubReservations(items ...domain.Reservation) *stubReservations {
	return &stubReservations{items: items, calls: map[string]int{}}
}

func (s *stubReservations) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubReservations) ListMine(_ context.Context, _ string, role domain.Role, _ ports.ReservationFilter) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["list"]++
	s.lastRole = role
	return append([]domain.Reservation{}, s.items...), nil
}

func (s *stubReservations) Create(_ context.Context, _ string, in ports.ReservationInput) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["create"]++
	r := domain.Reservation{ID: int64(len(s.items) + 1), ListingID: in.ListingID, Status: domain.ReservationPending}
	s.items = append(s.items, r)
	return &r, nil
}

func (s *stubReservations) SetStatus(_ context.Context, _ string, id int64, st domain.ReservationStatus) (*domain.Reservation, error) {
	s.mu.Lock()
	s.calls["set_status"]++
	s.mu.Unlock()
	if s.setStatusFn != nil {
		return s.setStatusFn(id, st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = st
			r := s.items[i]
			return &r, nil
		}
	}
	return nil, domain.ErrReservationNotFound
}

// inlineRunner serializes per key with one mutex per key.
type inlineRunner struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *inlineRunner) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	r.mu.Lock()
	if r.locks == nil {
		r.locks = map[string]*sync.Mutex{}
	}
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()
	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func int64p(v int64) *int64 { return &v }

func restaurantSession() *domain.Session {
	return &domain.Session{Token: "T", Identity: domain.Identity{ID: 1, Role: domain.RoleRestaurant, EntityID: int64p(3)}}
}

func associationSession() *domain.Session {
	return &domain.Session{Token: "T", Identity: domain.Identity{ID: 2, Role: domain.RoleAssociation, EntityID: int64p(4)}}
}

// signedIn returns a SessionStore already holding sess.
func signedIn(t interface{ Helper() }, sess *domain.Session, auth *stubAuth) (*SessionStore, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	if auth == nil {
		auth = &stubAuth{}
	}
	store := NewSessionStore(auth, repo, validation.New(), zerolog.Nop())
	if sess != nil {
		store.set(sess)
		repo.saved = sess.Clone()
	}
	return store, repo
}
