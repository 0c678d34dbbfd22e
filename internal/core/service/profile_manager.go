package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/validation"
)

// ProfileManager handles the restaurant or association record owned by
// the signed-in user and keeps the session's entity id in sync with it.
type ProfileManager struct {
	profiles ports.ProfileService
	session  *SessionStore
	valid    *validation.Validator
	log      zerolog.Logger
}

func NewProfileManager(profiles ports.ProfileService, session *SessionStore, valid *validation.Validator, log zerolog.Logger) *ProfileManager {
	return &ProfileManager{profiles: profiles, session: session, valid: valid, log: log}
}

// Save creates the profile when the identity has none yet and updates it
// otherwise. The resulting id is linked into the session.
func (m *ProfileManager) Save(ctx context.Context, in ports.ProfileInput) Result[*domain.Profile] {
	sess := m.session.Current()
	if sess == nil {
		return failed[*domain.Profile](domain.ErrNotAuthenticated)
	}
	if err := m.valid.Struct(in); err != nil {
		return failed[*domain.Profile](err)
	}
	kind := domain.KindFor(sess.Identity.Role)

	var (
		profile *domain.Profile
		notice  string
	)
	if sess.Identity.HasEntity() {
		p, err := m.profiles.Update(ctx, sess.Token, kind, *sess.Identity.EntityID, in)
		if err != nil {
			return failed[*domain.Profile](m.rejected(ctx, err))
		}
		profile = p
	} else {
		res, err := m.profiles.Create(ctx, sess.Token, kind, in)
		if err != nil {
			return failed[*domain.Profile](m.rejected(ctx, err))
		}
		profile = res.Profile
		if res.AlreadyExisted {
			notice = "a " + string(kind) + " already exists for this account, its details were loaded"
		}
	}

	m.link(ctx, sess, profile)
	r := ok(profile)
	r.Notice = notice
	return r
}

// Fetch loads the user's profile and links its id when the session lacks
// it. Data is nil when no profile exists yet.
func (m *ProfileManager) Fetch(ctx context.Context) Result[*domain.Profile] {
	sess := m.session.Current()
	if sess == nil {
		return failed[*domain.Profile](domain.ErrNotAuthenticated)
	}
	p, err := m.profiles.Mine(ctx, sess.Token, domain.KindFor(sess.Identity.Role))
	if err != nil {
		return failed[*domain.Profile](m.rejected(ctx, err))
	}
	if p == nil {
		r := ok[*domain.Profile](nil)
		r.Notice = "no " + string(domain.KindFor(sess.Identity.Role)) + " profile yet"
		return r
	}
	m.link(ctx, sess, p)
	return ok(p)
}

func (m *ProfileManager) link(ctx context.Context, sess *domain.Session, p *domain.Profile) {
	if p == nil || p.ID <= 0 {
		return
	}
	if sess.Identity.EntityID != nil && *sess.Identity.EntityID == p.ID {
		return
	}
	if err := m.session.LinkEntity(ctx, p.ID); err != nil {
		m.log.Warn().Err(err).Int64("entity_id", p.ID).Msg("failed to link profile to session")
	}
}

func (m *ProfileManager) rejected(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		m.session.Invalidate(ctx)
	}
	m.log.Info().Err(err).Msg("profile request failed")
	return err
}
