package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/validation"
	"github.com/Zakyahmed/SaveEat-New/internal/pkg/metrics"
)

// SessionStore owns the signed-in identity and its token. It keeps one
// in-memory copy and mirrors it to the repository for restarts.
type SessionStore struct {
	auth  ports.AuthService
	repo  ports.SessionRepository
	valid *validation.Validator
	log   zerolog.Logger
	now   func() time.Time

	// writeMu serializes a session change with its persistence so a Logout
	// can never be undone by a write that started before it.
	writeMu sync.Mutex

	mu        sync.RWMutex
	session   *domain.Session
	listeners []func(*domain.Session)
}

func NewSessionStore(auth ports.AuthService, repo ports.SessionRepository, valid *validation.Validator, log zerolog.Logger) *SessionStore {
	return &SessionStore{auth: auth, repo: repo, valid: valid, log: log, now: time.Now}
}

// OnChange registers fn to be called with a copy of the new session (nil
// after logout or invalidation) every time it changes.
func (s *SessionStore) OnChange(fn func(*domain.Session)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Current returns a copy of the session, or nil when signed out.
func (s *SessionStore) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

// Token returns the bearer token, or "" when signed out.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Restore loads the persisted session. A token whose JWT exp claim has
// passed is discarded. Data is nil when there is nothing to restore.
func (s *SessionStore) Restore(ctx context.Context) Result[*domain.Session] {
	sess, err := s.repo.Load(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return ok[*domain.Session](nil)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load persisted session")
		return failed[*domain.Session](err)
	}
	if tokenExpired(sess.Token, s.now()) {
		s.log.Info().Int64("user_id", sess.Identity.ID).Msg("persisted token expired, discarding")
		if err := s.repo.Clear(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear expired session")
		}
		metrics.SessionEventsTotal.WithLabelValues("expired").Inc()
		r := ok[*domain.Session](nil)
		r.Notice = "your session has expired, please sign in again"
		return r
	}
	s.writeMu.Lock()
	s.set(sess)
	s.writeMu.Unlock()
	metrics.SessionEventsTotal.WithLabelValues("restore").Inc()
	return ok(sess.Clone())
}

// Login validates the form, signs in and persists the session.
func (s *SessionStore) Login(ctx context.Context, in ports.LoginInput) Result[*domain.Session] {
	if err := s.valid.Struct(in); err != nil {
		return failed[*domain.Session](err)
	}
	sess, err := s.auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		s.log.Info().Err(err).Msg("login rejected")
		return failed[*domain.Session](err)
	}
	return s.establish(ctx, sess, "login")
}

// Register validates the form, creates the account and signs it in.
func (s *SessionStore) Register(ctx context.Context, in ports.RegisterInput) Result[*domain.Session] {
	if err := s.valid.Struct(in); err != nil {
		return failed[*domain.Session](err)
	}
	sess, err := s.auth.Register(ctx, in)
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("register_failed").Inc()
		s.log.Info().Err(err).Msg("registration rejected")
		return failed[*domain.Session](err)
	}
	return s.establish(ctx, sess, "register")
}

func (s *SessionStore) establish(ctx context.Context, sess *domain.Session, event string) Result[*domain.Session] {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.set(sess)
	metrics.SessionEventsTotal.WithLabelValues(event).Inc()
	s.log.Info().Int64("user_id", sess.Identity.ID).Str("role", string(sess.Identity.Role)).Msg(event + " succeeded")

	r := ok(sess.Clone())
	if err := s.repo.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session")
		r.Notice = "signed in, but the session could not be saved on this device"
	}
	return r
}

// Logout tells the backend (best effort) and always clears local state.
func (s *SessionStore) Logout(ctx context.Context) Result[struct{}] {
	if token := s.Token(); token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}
	s.clear(ctx)
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	return ok(struct{}{})
}

// Invalidate drops the session after the backend rejected its token.
func (s *SessionStore) Invalidate(ctx context.Context) {
	if s.Current() == nil {
		return
	}
	s.log.Warn().Msg("token rejected by backend, signing out")
	s.clear(ctx)
	metrics.SessionEventsTotal.WithLabelValues("invalidate").Inc()
}

// LinkEntity records the restaurant or association id on the identity and
// re-persists the session.
func (s *SessionStore) LinkEntity(ctx context.Context, id int64) error {
	_, err := s.update(ctx, "", func(next *domain.Session) error {
		next.Identity.EntityID = &id
		return nil
	})
	return err
}

// RefreshIdentity reloads the identity from /auth/profile.
func (s *SessionStore) RefreshIdentity(ctx context.Context) Result[*domain.Identity] {
	cur := s.Current()
	if cur == nil {
		return failed[*domain.Identity](domain.ErrNotAuthenticated)
	}
	id, err := s.auth.Profile(ctx, cur.Token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.Invalidate(ctx)
		}
		return failed[*domain.Identity](err)
	}
	next, err := s.update(ctx, cur.Token, func(next *domain.Session) error {
		if !id.HasEntity() && next.Identity.HasEntity() {
			id.EntityID = next.Identity.EntityID
		}
		built, err := domain.NewSession(next.Token, *id)
		if err != nil {
			return err
		}
		*next = *built
		return nil
	})
	if next == nil {
		return failed[*domain.Identity](err)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to persist refreshed identity")
	}
	out := next.Identity
	return ok(&out)
}

// update applies fn to a copy of the current session, swaps it in and
// persists it without letting a Logout or Invalidate interleave. It fails
// with ErrNotAuthenticated when signed out, or when token is set and the
// session now carries another one. A non-nil session with an error means
// only persisting failed.
func (s *SessionStore) update(ctx context.Context, token string, fn func(*domain.Session) error) (*domain.Session, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Current()
	if next == nil || (token != "" && next.Token != token) {
		return nil, domain.ErrNotAuthenticated
	}
	if err := fn(next); err != nil {
		return nil, err
	}
	s.set(next)
	return next, s.repo.Save(ctx, next)
}

func (s *SessionStore) clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.set(nil)
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

// set swaps the session and notifies listeners outside mu. Callers other
// than tests hold writeMu.
func (s *SessionStore) set(sess *domain.Session) {
	s.mu.Lock()
	s.session = sess.Clone()
	listeners := append([]func(*domain.Session){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(sess.Clone())
	}
}

// tokenExpired reports whether token is a JWT whose exp is not after now.
// Opaque tokens carry no expiry and are kept.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
