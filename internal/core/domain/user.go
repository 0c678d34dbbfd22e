package domain

import "time"

// Role is the kind of account a user holds on the platform.
type Role string

const (
	RoleRestaurant  Role = "restaurant"
	RoleAssociation Role = "association"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleRestaurant || r == RoleAssociation
}

// Identity models the authenticated user as returned by the backend.
// EntityID is the linked restaurant or association id, nil until the
// profile has been created.
type Identity struct {
	ID         int64     `json:"id"`
	LastName   string    `json:"last_name,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Role       Role      `json:"role"`
	EntityID   *int64    `json:"entity_id,omitempty"`
	RegisterAt time.Time `json:"registered_at,omitempty"`
}

// Name returns the display name of the identity.
func (i Identity) Name() string {
	switch {
	case i.FirstName != "" && i.LastName != "":
		return i.FirstName + " " + i.LastName
	case i.LastName != "":
		return i.LastName
	default:
		return i.FirstName
	}
}

// HasEntity reports whether a restaurant or association profile is linked.
func (i Identity) HasEntity() bool {
	return i.EntityID != nil && *i.EntityID > 0
}

// Session pairs an identity with its bearer token. A Session is either
// complete (both set) or absent; NewSession refuses half-built values.
type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}

// NewSession builds a Session, enforcing that token and identity travel together.
func NewSession(token string, identity Identity) (*Session, error) {
	if token == "" || identity.ID == 0 {
		return nil, ErrInvalidSession
	}
	return &Session{Token: token, Identity: identity}, nil
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Identity.EntityID != nil {
		id := *s.Identity.EntityID
		c.Identity.EntityID = &id
	}
	return &c
}
