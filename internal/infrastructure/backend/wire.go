package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// wireTimeLayout is the local date-time format the backend expects on writes.
const wireTimeLayout = "2006-01-02T15:04:05"

// wireTime renders t as a local wall-clock time, the same zone offset-less
// dates are read back in.
func wireTime(t time.Time) string {
	return t.In(time.Local).Format(wireTimeLayout)
}

var readTimeLayouts = []string{
	time.RFC3339Nano,
	wireTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// flexInt accepts 12, "12" and null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := unquote(b)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = flexInt(n)
	return nil
}

// flexFloat accepts 2.5, "2.5" and null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := unquote(b)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = flexFloat(n)
	return nil
}

// flexBool accepts true, 1, "1", "true" and their negatives.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(unquote(b)) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// flexString accepts a string or a bare number (phone numbers, postal codes).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := unquote(b)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}

// flexTime accepts the date layouts the backend has been seen to emit.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(b []byte) error {
	s := unquote(b)
	if s == "" || s == "null" {
		*f = flexTime(time.Time{})
		return nil
	}
	for _, layout := range readTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*f = flexTime(t)
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (f flexTime) Time() time.Time { return time.Time(f) }

func unquote(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		var s string
		if json.Unmarshal(b, &s) == nil {
			return strings.TrimSpace(s)
		}
	}
	return string(b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- auth ---

type userWire struct {
	ID              flexInt    `json:"id"`
	LastName        string     `json:"nom"`
	FirstName       string     `json:"prenom"`
	Email           string     `json:"email"`
	Type            string     `json:"type"`
	RestaurantID    flexInt    `json:"rest_id"`
	AssociationID   flexInt    `json:"asso_id"`
	Phone           flexString `json:"telephone"`
	DateInscription flexTime   `json:"date_inscription"`
}

func (u userWire) toDomain() domain.Identity {
	id := domain.Identity{
		ID:         int64(u.ID),
		LastName:   u.LastName,
		FirstName:  u.FirstName,
		Email:      u.Email,
		Phone:      string(u.Phone),
		Role:       domain.Role(u.Type),
		RegisterAt: u.DateInscription.Time(),
	}
	var entity int64
	switch id.Role {
	case domain.RoleRestaurant:
		entity = int64(u.RestaurantID)
	case domain.RoleAssociation:
		entity = int64(u.AssociationID)
	}
	if entity > 0 {
		id.EntityID = &entity
	}
	return id
}

type authResponse struct {
	Token string    `json:"token"`
	User  *userWire `json:"utilisateur"`
	Alt   *userWire `json:"user"`
}

func (a authResponse) user() *userWire {
	if a.User != nil {
		return a.User
	}
	return a.Alt
}

type registerWire struct {
	LastName             string `json:"nom"`
	FirstName            string `json:"prenom"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Type                 string `json:"type"`
	Phone                string `json:"telephone,omitempty"`
}

// registerFieldNames maps backend field keys back to form field names.
var registerFieldNames = map[string]string{
	"nom":       "last_name",
	"prenom":    "first_name",
	"type":      "role",
	"telephone": "phone",
}

// --- listings ---

type restaurantRef struct {
	ID   flexInt `json:"rest_id"`
	Name string  `json:"rest_nom"`
}

type listingWire struct {
	ID            flexInt        `json:"inv_id"`
	Title         string         `json:"inv_titre"`
	Description   string         `json:"inv_description"`
	Quantity      flexFloat      `json:"inv_quantite"`
	Unit          string         `json:"inv_unite"`
	AvailableFrom flexTime       `json:"inv_date_disponibilite"`
	ExpiresAt     flexTime       `json:"inv_date_limite"`
	Allergens     flexString     `json:"inv_allergenes"`
	Urgent        flexBool       `json:"inv_urgent"`
	Temperature   string         `json:"inv_temperature"`
	Status        string         `json:"inv_statut"`
	RestaurantID  flexInt        `json:"rest_id"`
	Restaurant    *restaurantRef `json:"restaurant"`
}

func (w listingWire) toDomain() domain.Listing {
	l := domain.Listing{
		ID:            int64(w.ID),
		Title:         w.Title,
		Description:   w.Description,
		Quantity:      float64(w.Quantity),
		Unit:          w.Unit,
		AvailableFrom: w.AvailableFrom.Time(),
		ExpiresAt:     w.ExpiresAt.Time(),
		Allergens:     string(w.Allergens),
		Urgent:        bool(w.Urgent),
		Temperature:   domain.Temperature(w.Temperature),
		Status:        domain.ListingStatus(w.Status),
		RestaurantID:  int64(w.RestaurantID),
	}
	if w.Restaurant != nil {
		l.RestaurantName = w.Restaurant.Name
		if l.RestaurantID == 0 {
			l.RestaurantID = int64(w.Restaurant.ID)
		}
	}
	return l
}

func listingsToDomain(in []listingWire) []domain.Listing {
	out := make([]domain.Listing, 0, len(in))
	for _, w := range in {
		out = append(out, w.toDomain())
	}
	return out
}

type listingWrite struct {
	Title         string  `json:"titre"`
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantite"`
	Unit          string  `json:"unite"`
	AvailableFrom string  `json:"date_disponibilite"`
	ExpiresAt     string  `json:"date_limite"`
	Allergens     string  `json:"allergenes"`
	Urgent        int     `json:"urgent"`
	Status        string  `json:"statut"`
	Temperature   string  `json:"temperature"`
	RestaurantID  int64   `json:"rest_id,omitempty"`
}

var listingFieldNames = map[string]string{
	"titre":              "title",
	"quantite":           "quantity",
	"unite":              "unit",
	"date_disponibilite": "available_from",
	"date_limite":        "expires_at",
	"allergenes":         "allergens",
	"statut":             "status",
	"rest_id":            "restaurant_id",
}

// --- reservations ---

type associationRef struct {
	ID   flexInt `json:"asso_id"`
	Name string  `json:"asso_nom"`
}

type reservationWire struct {
	ID            flexInt         `json:"res_id"`
	ListingID     flexInt         `json:"inv_id"`
	AltListingID  flexInt         `json:"invendu_id"`
	AssociationID flexInt         `json:"asso_id"`
	CollectAt     flexTime        `json:"res_date_collecte"`
	Comment       flexString      `json:"res_commentaire"`
	Status        string          `json:"res_statut"`
	Listing       *listingWire    `json:"invendu"`
	Association   *associationRef `json:"association"`
}

func (w reservationWire) toDomain() domain.Reservation {
	r := domain.Reservation{
		ID:            int64(w.ID),
		ListingID:     int64(w.ListingID),
		AssociationID: int64(w.AssociationID),
		CollectAt:     w.CollectAt.Time(),
		Comment:       string(w.Comment),
		Status:        domain.ReservationStatus(w.Status),
	}
	if r.ListingID == 0 {
		r.ListingID = int64(w.AltListingID)
	}
	if w.Listing != nil {
		l := w.Listing.toDomain()
		r.Listing = &l
		if r.ListingID == 0 {
			r.ListingID = l.ID
		}
	}
	if w.Association != nil {
		r.AssociationName = w.Association.Name
		if r.AssociationID == 0 {
			r.AssociationID = int64(w.Association.ID)
		}
	}
	return r
}

type reservationWrite struct {
	ListingID int64  `json:"invendu_id"`
	CollectAt string `json:"date_collecte"`
	Comment   string `json:"commentaire,omitempty"`
}

var reservationFieldNames = map[string]string{
	"invendu_id":    "listing_id",
	"date_collecte": "collect_at",
	"commentaire":   "comment",
}

type statusWrite struct {
	Status string `json:"statut"`
}

// --- profiles ---

// profileWire covers both rest_* and asso_* records; the prefix is chosen
// by kind when encoding and decoding.
type profileWire map[string]json.RawMessage

var profileSuffixes = struct {
	id, name, address, postal, locality, region, phone, email, website, description string
}{"id", "nom", "adresse", "npa", "localite", "canton", "telephone", "email", "site_web", "description"}

func profilePrefix(kind domain.ProfileKind) string {
	if kind == domain.ProfileAssociation {
		return "asso_"
	}
	return "rest_"
}

func specialtyKey(kind domain.ProfileKind) string {
	if kind == domain.ProfileAssociation {
		return "asso_beneficiaires"
	}
	return "rest_type_cuisine"
}

func (w profileWire) str(key string) string {
	raw, ok := w[key]
	if !ok {
		return ""
	}
	var s flexString
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return string(s)
}

func (w profileWire) toDomain(kind domain.ProfileKind) domain.Profile {
	p := profilePrefix(kind)
	var id flexInt
	if raw, ok := w[p+profileSuffixes.id]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	if id == 0 {
		if raw, ok := w["id"]; ok {
			_ = json.Unmarshal(raw, &id)
		}
	}
	return domain.Profile{
		ID:          int64(id),
		Kind:        kind,
		Name:        w.str(p + profileSuffixes.name),
		Address:     w.str(p + profileSuffixes.address),
		PostalCode:  w.str(p + profileSuffixes.postal),
		Locality:    w.str(p + profileSuffixes.locality),
		Region:      w.str(p + profileSuffixes.region),
		Phone:       w.str(p + profileSuffixes.phone),
		Email:       w.str(p + profileSuffixes.email),
		Website:     w.str(p + profileSuffixes.website),
		Description: w.str(p + profileSuffixes.description),
		Specialty:   w.str(specialtyKey(kind)),
	}
}

// profileFieldNames returns the backend → form field mapping for kind.
func profileFieldNames(kind domain.ProfileKind) map[string]string {
	p := profilePrefix(kind)
	return map[string]string{
		p + profileSuffixes.name:        "name",
		p + profileSuffixes.address:     "address",
		p + profileSuffixes.postal:      "postal_code",
		p + profileSuffixes.locality:    "locality",
		p + profileSuffixes.region:      "region",
		p + profileSuffixes.phone:       "phone",
		p + profileSuffixes.email:       "email",
		p + profileSuffixes.website:     "website",
		p + profileSuffixes.description: "description",
		specialtyKey(kind):              "specialty",
	}
}

// renameFields rewrites the field keys of a backend validation error so
// callers see the same names they submitted.
func renameFields(err error, names map[string]string) error {
	ve, ok := err.(*domain.ValidationError)
	if !ok || len(ve.Fields) == 0 {
		return err
	}
	out := &domain.ValidationError{Message: ve.Message}
	for k, msgs := range ve.Fields {
		name := k
		if n, ok := names[k]; ok {
			name = n
		}
		for _, m := range msgs {
			out.Add(name, m)
		}
	}
	return out
}
