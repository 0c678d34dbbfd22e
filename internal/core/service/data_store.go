package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/validation"
	"github.com/Zakyahmed/SaveEat-New/internal/pkg/metrics"
)

// Collection names a cached collection. It is also the key refreshes are
// serialized on.
type Collection string

const (
	CollectionAllListings  Collection = "all_listings"
	CollectionMyListings   Collection = "my_listings"
	CollectionReservations Collection = "reservations"
)

// KeyedRunner runs fn so that calls sharing a key never overlap.
type KeyedRunner interface {
	Do(ctx context.Context, key string, fn func(context.Context) error) error
}

// DataStore caches the listing and reservation collections of the signed-in
// user and keeps them convergent with the backend by re-fetching every
// affected collection after a successful write.
type DataStore struct {
	listings     ports.ListingService
	reservations ports.ReservationService
	session      *SessionStore
	runner       KeyedRunner
	valid        *validation.Validator
	log          zerolog.Logger
	now          func() time.Time

	mu           sync.RWMutex
	allListings  []domain.Listing
	myListings   []domain.Listing
	reservList   []domain.Reservation
	myFilter     ports.ListingFilter
	reservFilter ports.ReservationFilter
	lastErr      error
	// gen is bumped by Reset; loads started before it are discarded.
	gen uint64
}

func NewDataStore(
	listings ports.ListingService,
	reservations ports.ReservationService,
	session *SessionStore,
	runner KeyedRunner,
	valid *validation.Validator,
	log zerolog.Logger,
) *DataStore {
	s := &DataStore{
		listings:     listings,
		reservations: reservations,
		session:      session,
		runner:       runner,
		valid:        valid,
		log:          log,
		now:          time.Now,
	}
	session.OnChange(func(sess *domain.Session) {
		if sess == nil {
			s.Reset()
		}
	})
	return s
}

// WithClock overrides the time source used by AvailableListings.
func (s *DataStore) WithClock(now func() time.Time) *DataStore {
	s.now = now
	return s
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *DataStore) AllListings() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.allListings)
}

func (s *DataStore) MyListings() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.myListings)
}

func (s *DataStore) Reservations() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reservList)
}

// AvailableListings returns cached listings that can still be reserved now.
func (s *DataStore) AvailableListings() []domain.Listing {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Listing, 0, len(s.allListings))
	for _, l := range s.allListings {
		if l.AvailableAt(now) {
			out = append(out, l)
		}
	}
	return out
}

// LastError returns the most recent failure, nil after a reset.
func (s *DataStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Reset drops every cached collection. It runs on sign-out.
func (s *DataStore) Reset() {
	s.mu.Lock()
	s.allListings = nil
	s.myListings = nil
	s.reservList = nil
	s.myFilter = ports.ListingFilter{}
	s.reservFilter = ports.ReservationFilter{}
	s.lastErr = nil
	s.gen++
	s.mu.Unlock()
}

// ListingActions reports the owner actions offered for listing id.
func (s *DataStore) ListingActions(ctx context.Context, id int64) Result[domain.ListingActions] {
	l, err := s.lookupListing(ctx, id)
	if err != nil {
		return failed[domain.ListingActions](s.record(ctx, "listing actions", err))
	}
	return ok(domain.ActionsFor(*l))
}

// ReservationActions reports the transitions the current user may request
// on reservation id.
func (s *DataStore) ReservationActions(ctx context.Context, id int64) Result[[]domain.ReservationAction] {
	sess := s.session.Current()
	if sess == nil {
		return failed[[]domain.ReservationAction](s.record(ctx, "reservation actions", domain.ErrNotAuthenticated))
	}
	r, err := s.lookupReservation(ctx, id)
	if err != nil {
		return failed[[]domain.ReservationAction](s.record(ctx, "reservation actions", err))
	}
	return ok(r.Status.AllowedActions(sess.Identity.Role))
}

// ── Fetches ───────────────────────────────────────────────────────────────────

// FetchAllListings loads every available listing into the cache.
func (s *DataStore) FetchAllListings(ctx context.Context) Result[[]domain.Listing] {
	if err := s.refresh(ctx, CollectionAllListings); err != nil {
		return failed[[]domain.Listing](s.record(ctx, "fetch all listings", err))
	}
	return ok(s.AllListings())
}

// FetchMyListings loads the restaurant's own listings. The filter is kept
// and reused by later refreshes.
func (s *DataStore) FetchMyListings(ctx context.Context, f ports.ListingFilter) Result[[]domain.Listing] {
	s.mu.Lock()
	s.myFilter = f
	s.mu.Unlock()
	if err := s.refresh(ctx, CollectionMyListings); err != nil {
		return failed[[]domain.Listing](s.record(ctx, "fetch my listings", err))
	}
	return ok(s.MyListings())
}

// FetchReservations loads the reservations of the current role. The filter
// is kept and reused by later refreshes.
func (s *DataStore) FetchReservations(ctx context.Context, f ports.ReservationFilter) Result[[]domain.Reservation] {
	s.mu.Lock()
	s.reservFilter = f
	s.mu.Unlock()
	if err := s.refresh(ctx, CollectionReservations); err != nil {
		return failed[[]domain.Reservation](s.record(ctx, "fetch reservations", err))
	}
	return ok(s.Reservations())
}

func (s *DataStore) GetListing(ctx context.Context, id int64) Result[*domain.Listing] {
	token, err := s.token()
	if err != nil {
		return failed[*domain.Listing](s.record(ctx, "get listing", err))
	}
	l, err := s.listings.Get(ctx, token, id)
	if err != nil {
		return failed[*domain.Listing](s.record(ctx, "get listing", err))
	}
	return ok(l)
}

// SearchListings runs a search; results are not cached.
func (s *DataStore) SearchListings(ctx context.Context, p ports.SearchParams) Result[[]domain.Listing] {
	token, err := s.token()
	if err != nil {
		return failed[[]domain.Listing](s.record(ctx, "search listings", err))
	}
	items, err := s.listings.Search(ctx, token, p)
	if err != nil {
		return failed[[]domain.Listing](s.record(ctx, "search listings", err))
	}
	return ok(items)
}

// Bootstrap performs the initial load for the signed-in role: restaurants
// get their listings and received reservations, associations get every
// available listing and their own reservations.
func (s *DataStore) Bootstrap(ctx context.Context) Result[struct{}] {
	sess := s.session.Current()
	if sess == nil {
		return failed[struct{}](s.record(ctx, "bootstrap", domain.ErrNotAuthenticated))
	}
	cols := []Collection{CollectionAllListings, CollectionReservations}
	if sess.Identity.Role == domain.RoleRestaurant {
		cols = []Collection{CollectionMyListings, CollectionReservations}
	}
	if err := s.refresh(ctx, cols...); err != nil {
		return failed[struct{}](s.record(ctx, "bootstrap", err))
	}
	return ok(struct{}{})
}

// ── Listing mutations ─────────────────────────────────────────────────────────

// CreateListing publishes a listing for the restaurant linked to the session.
func (s *DataStore) CreateListing(ctx context.Context, in ports.ListingInput) Result[*domain.Listing] {
	sess, err := s.restaurant()
	if err != nil {
		return failed[*domain.Listing](s.record(ctx, "create listing", err))
	}
	in.RestaurantID = *sess.Identity.EntityID
	if err := s.valid.Struct(in); err != nil {
		return failed[*domain.Listing](s.record(ctx, "create listing", err))
	}
	l, err := s.listings.Create(ctx, sess.Token, in)
	if err != nil {
		return failed[*domain.Listing](s.record(ctx, "create listing", err))
	}
	s.refreshAfterWrite(ctx, CollectionMyListings, CollectionAllListings)
	return ok(l)
}

// UpdateListing edits a listing that is still available.
func (s *DataStore) UpdateListing(ctx context.Context, id int64, in ports.ListingInput) Result[*domain.Listing] {
	sess, err := s.restaurant()
	if err != nil {
		return failed[*domain.Listing](s.record(ctx, "update listing", err))
	}
	if r, blocked := s.guardEditable(ctx, id); blocked {
		return Result[*domain.Listing]{Err: r.Err, Notice: r.Notice}
	}
	in.RestaurantID = *sess.Identity.EntityID
	if err := s.valid.Struct(in); err != nil {
		return failed[*domain.Listing](s.record(ctx, "update listing", err))
	}
	l, err := s.listings.Update(ctx, sess.Token, id, in)
	if err != nil {
		return failed[*domain.Listing](s.record(ctx, "update listing", err))
	}
	s.refreshAfterWrite(ctx, CollectionMyListings, CollectionAllListings)
	return ok(l)
}

// DeleteListing removes a listing that is still available.
func (s *DataStore) DeleteListing(ctx context.Context, id int64) Result[struct{}] {
	sess, err := s.restaurant()
	if err != nil {
		return failed[struct{}](s.record(ctx, "delete listing", err))
	}
	if r, blocked := s.guardEditable(ctx, id); blocked {
		return r
	}
	if err := s.listings.Delete(ctx, sess.Token, id); err != nil {
		return failed[struct{}](s.record(ctx, "delete listing", err))
	}
	s.refreshAfterWrite(ctx, CollectionMyListings, CollectionAllListings)
	return ok(struct{}{})
}

// guardEditable refuses, without a write call, edits of a listing that has
// left the available state.
func (s *DataStore) guardEditable(ctx context.Context, id int64) (Result[struct{}], bool) {
	l, err := s.lookupListing(ctx, id)
	if err != nil {
		return failed[struct{}](s.record(ctx, "check listing", err)), true
	}
	if !l.Status.Editable() {
		return refused[struct{}](fmt.Sprintf("listing %q is %s and can no longer be modified", l.Title, l.Status)), true
	}
	return Result[struct{}]{}, false
}

// ── Reservation mutations ─────────────────────────────────────────────────────

// CreateReservation books a listing for the association linked to the session.
func (s *DataStore) CreateReservation(ctx context.Context, in ports.ReservationInput) Result[*domain.Reservation] {
	sess := s.session.Current()
	switch {
	case sess == nil:
		return failed[*domain.Reservation](s.record(ctx, "create reservation", domain.ErrNotAuthenticated))
	case sess.Identity.Role != domain.RoleAssociation:
		return failed[*domain.Reservation](s.record(ctx, "create reservation", domain.ErrForbidden))
	case !sess.Identity.HasEntity():
		return failed[*domain.Reservation](s.record(ctx, "create reservation", domain.ErrMissingEntity))
	}
	if err := s.valid.Struct(in); err != nil {
		return failed[*domain.Reservation](s.record(ctx, "create reservation", err))
	}
	r, err := s.reservations.Create(ctx, sess.Token, in)
	if err != nil {
		return failed[*domain.Reservation](s.record(ctx, "create reservation", err))
	}
	s.refreshAfterWrite(ctx, CollectionReservations, CollectionAllListings)
	return ok(r)
}

// TransitionReservation applies action to reservation id. Transitions not
// allowed for the current status and role are refused locally with a
// Notice and no backend call.
func (s *DataStore) TransitionReservation(ctx context.Context, id int64, action domain.ReservationAction) Result[*domain.Reservation] {
	sess := s.session.Current()
	if sess == nil {
		return failed[*domain.Reservation](s.record(ctx, "transition reservation", domain.ErrNotAuthenticated))
	}
	role := sess.Identity.Role

	cur, err := s.lookupReservation(ctx, id)
	if err != nil {
		metrics.ReservationTransitionsTotal.WithLabelValues(string(action), "error").Inc()
		return failed[*domain.Reservation](s.record(ctx, "transition reservation", err))
	}
	next, allowed := cur.Status.Apply(role, action)
	if !allowed {
		metrics.ReservationTransitionsTotal.WithLabelValues(string(action), "noop").Inc()
		s.log.Info().
			Int64("reservation_id", id).
			Str("status", string(cur.Status)).
			Str("action", string(action)).
			Str("role", string(role)).
			Msg("transition refused locally")
		return refused[*domain.Reservation](fmt.Sprintf("cannot %s a reservation that is %s", action, cur.Status))
	}

	updated, err := s.reservations.SetStatus(ctx, sess.Token, id, next)
	if err != nil {
		metrics.ReservationTransitionsTotal.WithLabelValues(string(action), "error").Inc()
		return failed[*domain.Reservation](s.record(ctx, "transition reservation", err))
	}
	metrics.ReservationTransitionsTotal.WithLabelValues(string(action), "applied").Inc()
	if updated == nil {
		cp := cur
		cp.Status = next
		updated = &cp
	}

	listingCol := CollectionAllListings
	if role == domain.RoleRestaurant {
		listingCol = CollectionMyListings
	}
	s.refreshAfterWrite(ctx, CollectionReservations, listingCol)
	return ok(updated)
}

// ── Internals ─────────────────────────────────────────────────────────────────

func (s *DataStore) token() (string, error) {
	t := s.session.Token()
	if t == "" {
		return "", domain.ErrNotAuthenticated
	}
	return t, nil
}

func (s *DataStore) restaurant() (*domain.Session, error) {
	sess := s.session.Current()
	switch {
	case sess == nil:
		return nil, domain.ErrNotAuthenticated
	case sess.Identity.Role != domain.RoleRestaurant:
		return nil, domain.ErrForbidden
	case !sess.Identity.HasEntity():
		return nil, domain.ErrMissingEntity
	}
	return sess, nil
}

// record stores err as the last error and signs out on a rejected token.
func (s *DataStore) record(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		s.session.Invalidate(ctx)
	}
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.log.Warn().Err(err).Str("op", op).Msg("store operation failed")
	return err
}

// refresh re-fetches cols concurrently. Each collection is serialized on
// its own key so two refreshes of the same collection never interleave.
func (s *DataStore) refresh(ctx context.Context, cols ...Collection) error {
	var g errgroup.Group
	for _, c := range cols {
		c := c
		g.Go(func() error {
			err := s.runner.Do(ctx, string(c), func(ctx context.Context) error {
				return s.load(ctx, c)
			})
			result := "ok"
			if err != nil {
				result = "error"
			}
			metrics.StoreRefreshTotal.WithLabelValues(string(c), result).Inc()
			return err
		})
	}
	return g.Wait()
}

// refreshAfterWrite converges the cache after a successful write. A failed
// refresh keeps the stale data and is only recorded.
func (s *DataStore) refreshAfterWrite(ctx context.Context, cols ...Collection) {
	if err := s.refresh(ctx, cols...); err != nil {
		s.record(ctx, "refresh after write", err)
	}
}

// load fetches collection c and stores it, unless the store was reset while
// the request was in flight.
func (s *DataStore) load(ctx context.Context, c Collection) error {
	s.mu.RLock()
	gen, myFilter, reservFilter := s.gen, s.myFilter, s.reservFilter
	s.mu.RUnlock()

	sess := s.session.Current()
	if sess == nil {
		return domain.ErrNotAuthenticated
	}
	switch c {
	case CollectionAllListings:
		items, err := s.listings.ListAvailable(ctx, sess.Token)
		if err != nil {
			return err
		}
		return s.commit(gen, func() { s.allListings = items })
	case CollectionMyListings:
		items, err := s.listings.ListMine(ctx, sess.Token, myFilter)
		if err != nil {
			return err
		}
		return s.commit(gen, func() { s.myListings = items })
	case CollectionReservations:
		items, err := s.reservations.ListMine(ctx, sess.Token, sess.Identity.Role, reservFilter)
		if err != nil {
			return err
		}
		return s.commit(gen, func() { s.reservList = items })
	default:
		return fmt.Errorf("unknown collection %q", c)
	}
}

// commit runs fn under the write lock if no Reset happened since gen was read.
func (s *DataStore) commit(gen uint64, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return domain.ErrNotAuthenticated
	}
	fn()
	return nil
}

// lookupListing finds id in the caches, falling back to a fetch.
func (s *DataStore) lookupListing(ctx context.Context, id int64) (*domain.Listing, error) {
	s.mu.RLock()
	for _, list := range [][]domain.Listing{s.myListings, s.allListings} {
		for _, l := range list {
			if l.ID == id {
				s.mu.RUnlock()
				return &l, nil
			}
		}
	}
	s.mu.RUnlock()

	token, err := s.token()
	if err != nil {
		return nil, err
	}
	return s.listings.Get(ctx, token, id)
}

// lookupReservation finds id in the cache, refreshing it once on a miss.
func (s *DataStore) lookupReservation(ctx context.Context, id int64) (domain.Reservation, error) {
	if r, found := s.cachedReservation(id); found {
		return r, nil
	}
	if err := s.refresh(ctx, CollectionReservations); err != nil {
		return domain.Reservation{}, err
	}
	if r, found := s.cachedReservation(id); found {
		return r, nil
	}
	return domain.Reservation{}, domain.ErrReservationNotFound
}

func (s *DataStore) cachedReservation(id int64) (domain.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reservList {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Reservation{}, false
}
