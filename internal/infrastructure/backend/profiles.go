package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
)

// ProfileAPI implements ports.ProfileService over /restaurants and /associations.
type ProfileAPI struct {
	c   *Client
	log zerolog.Logger
}

var _ ports.ProfileService = (*ProfileAPI)(nil)

func NewProfileAPI(c *Client, log zerolog.Logger) *ProfileAPI {
	return &ProfileAPI{c: c, log: log}
}

func collectionPath(kind domain.ProfileKind) string {
	if kind == domain.ProfileAssociation {
		return "/associations"
	}
	return "/restaurants"
}

// existsMessage is the backend's rejection when the user already owns a profile.
func existsMessage(kind domain.ProfileKind) string {
	if kind == domain.ProfileAssociation {
		return "Vous avez déjà une association"
	}
	return "Vous avez déjà un restaurant"
}

// Create posts a new profile. When the backend refuses because the user
// already owns one, the existing profile is fetched and returned with
// AlreadyExisted set. If that fetch fails too, the error wraps both
// domain.ErrProfileUnreachable and the fetch failure.
func (a *ProfileAPI) Create(ctx context.Context, token string, kind domain.ProfileKind, in ports.ProfileInput) (*ports.ProfileResult, error) {
	raw, err := a.c.Request(ctx, http.MethodPost, collectionPath(kind), nil, toProfileWrite(kind, in), token)
	if err == nil {
		p, derr := decodeProfile(raw, kind)
		if derr != nil {
			return nil, fmt.Errorf("create %s: %w", kind, derr)
		}
		return &ports.ProfileResult{Profile: p}, nil
	}

	if !isConflict(err, existsMessage(kind)) {
		return nil, fmt.Errorf("create %s: %w", kind, renameFields(err, profileFieldNames(kind)))
	}

	a.log.Info().Str("kind", string(kind)).Msg("profile already exists, fetching existing record")
	existing, ferr := a.Mine(ctx, token, kind)
	if ferr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProfileUnreachable, ferr)
	}
	if existing == nil {
		return nil, domain.ErrProfileUnreachable
	}
	return &ports.ProfileResult{Profile: existing, AlreadyExisted: true}, nil
}

func (a *ProfileAPI) Update(ctx context.Context, token string, kind domain.ProfileKind, id int64, in ports.ProfileInput) (*domain.Profile, error) {
	path := collectionPath(kind) + "/" + strconv.FormatInt(id, 10)
	raw, err := a.c.Request(ctx, http.MethodPut, path, nil, toProfileWrite(kind, in), token)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", kind, id, renameFields(err, profileFieldNames(kind)))
	}
	p, err := decodeProfile(raw, kind)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	if p != nil && p.ID == 0 {
		p.ID = id
	}
	return p, nil
}

// Mine fetches the caller's own profile. A 404 yields (nil, nil).
func (a *ProfileAPI) Mine(ctx context.Context, token string, kind domain.ProfileKind) (*domain.Profile, error) {
	raw, err := a.c.Request(ctx, http.MethodGet, collectionPath(kind)+"/me", nil, nil, token)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}
	return decodeProfile(raw, kind)
}

func decodeProfile(raw json.RawMessage, kind domain.ProfileKind) (*domain.Profile, error) {
	w, err := DecodeRecord[profileWire](raw, string(kind))
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}
	p := w.toDomain(kind)
	return &p, nil
}

func toProfileWrite(kind domain.ProfileKind, in ports.ProfileInput) map[string]string {
	p := profilePrefix(kind)
	return map[string]string{
		p + profileSuffixes.name:        in.Name,
		p + profileSuffixes.address:     in.Address,
		p + profileSuffixes.postal:      in.PostalCode,
		p + profileSuffixes.locality:    in.Locality,
		p + profileSuffixes.region:      in.Region,
		p + profileSuffixes.phone:       in.Phone,
		p + profileSuffixes.email:       in.Email,
		p + profileSuffixes.website:     in.Website,
		p + profileSuffixes.description: in.Description,
		specialtyKey(kind):              in.Specialty,
	}
}
