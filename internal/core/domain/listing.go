package domain

import "time"

// ListingStatus represents the lifecycle state of a surplus-food listing.
type ListingStatus string

const (
	ListingAvailable   ListingStatus = "disponible"
	ListingReserved    ListingStatus = "reserve"
	ListingDistributed ListingStatus = "distribue"
	ListingExpired     ListingStatus = "expire"
	ListingCancelled   ListingStatus = "annule"
)

// listingTransitions defines the allowed state machine transitions.
// Expiry is decided by the server; the client only mirrors it.
var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingAvailable: {ListingReserved, ListingExpired, ListingCancelled},
	ListingReserved:  {ListingDistributed, ListingCancelled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	for _, allowed := range listingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s ListingStatus) Terminal() bool {
	return len(listingTransitions[s]) == 0
}

// Editable reports whether the owning restaurant may still edit or delete.
func (s ListingStatus) Editable() bool {
	return s == ListingAvailable
}

// Temperature is the storage condition of a listing.
type Temperature string

const (
	TemperatureRefrigerated Temperature = "refrigere"
	TemperatureAmbient      Temperature = "ambiant"
	TemperatureFrozen       Temperature = "congele"
)

// Listing ("invendu") is a restaurant's surplus-food offer.
type Listing struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Quantity       float64       `json:"quantity"`
	Unit           string        `json:"unit"`
	AvailableFrom  time.Time     `json:"available_from"`
	ExpiresAt      time.Time     `json:"expires_at"`
	Allergens      string        `json:"allergens,omitempty"`
	Urgent         bool          `json:"urgent"`
	Temperature    Temperature   `json:"temperature"`
	Status         ListingStatus `json:"status"`
	RestaurantID   int64         `json:"restaurant_id"`
	RestaurantName string        `json:"restaurant_name,omitempty"`
}

// AvailableAt reports whether the listing can still be reserved at t.
func (l Listing) AvailableAt(t time.Time) bool {
	return l.Status == ListingAvailable && l.ExpiresAt.After(t)
}

// ListingActions lists the affordances the owner may be offered.
type ListingActions struct {
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// ActionsFor returns which owner actions are available for l.
func ActionsFor(l Listing) ListingActions {
	ok := l.Status.Editable()
	return ListingActions{Edit: ok, Delete: ok}
}
