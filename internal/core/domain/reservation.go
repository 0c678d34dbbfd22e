package domain

import (
	"slices"
	"time"
)

// ReservationStatus represents the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "en_attente"
	ReservationAccepted  ReservationStatus = "accepte"
	ReservationRefused   ReservationStatus = "refuse"
	ReservationCompleted ReservationStatus = "termine"
	ReservationCancelled ReservationStatus = "annule"
)

// Terminal reports whether the reservation can no longer change.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case ReservationRefused, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

// ReservationAction is a user-triggered change of reservation status.
type ReservationAction string

const (
	ActionAccept   ReservationAction = "accept"
	ActionRefuse   ReservationAction = "refuse"
	ActionComplete ReservationAction = "complete"
	ActionCancel   ReservationAction = "cancel"
)

type transitionKey struct {
	role   Role
	from   ReservationStatus
	action ReservationAction
}

// reservationTransitions is keyed by actor as well as state: restaurants
// drive the workflow, associations may only cancel.
var reservationTransitions = map[transitionKey]ReservationStatus{
	{RoleRestaurant, ReservationPending, ActionAccept}:    ReservationAccepted,
	{RoleRestaurant, ReservationPending, ActionRefuse}:    ReservationRefused,
	{RoleRestaurant, ReservationAccepted, ActionComplete}: ReservationCompleted,
	{RoleRestaurant, ReservationAccepted, ActionCancel}:   ReservationCancelled,
	{RoleAssociation, ReservationPending, ActionCancel}:   ReservationCancelled,
	{RoleAssociation, ReservationAccepted, ActionCancel}:  ReservationCancelled,
}

var actionOrder = []ReservationAction{ActionAccept, ActionRefuse, ActionComplete, ActionCancel}

// Valid reports whether a is a known action.
func (a ReservationAction) Valid() bool {
	return slices.Contains(actionOrder, a)
}

// Apply returns the status reached when role performs action from s.
func (s ReservationStatus) Apply(role Role, action ReservationAction) (ReservationStatus, bool) {
	next, ok := reservationTransitions[transitionKey{role, s, action}]
	return next, ok
}

// AllowedActions lists the actions role may perform from s, in a stable order.
func (s ReservationStatus) AllowedActions(role Role) []ReservationAction {
	out := make([]ReservationAction, 0, 2)
	for _, a := range actionOrder {
		if _, ok := s.Apply(role, a); ok {
			out = append(out, a)
		}
	}
	return out
}

// Reservation is an association's claim on a listing.
type Reservation struct {
	ID              int64             `json:"id"`
	ListingID       int64             `json:"listing_id"`
	AssociationID   int64             `json:"association_id"`
	CollectAt       time.Time         `json:"collect_at"`
	Comment         string            `json:"comment,omitempty"`
	Status          ReservationStatus `json:"status"`
	Listing         *Listing          `json:"listing,omitempty"`
	AssociationName string            `json:"association_name,omitempty"`
}
