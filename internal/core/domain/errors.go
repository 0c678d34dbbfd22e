package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrUnauthorized        = errors.New("session rejected by server")
	ErrInvalidSession      = errors.New("session requires both token and identity")
	ErrNoSession           = errors.New("no persisted session")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrListingLocked       = errors.New("listing can no longer be modified")
	ErrListingNotFound     = errors.New("listing not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrMissingEntity       = errors.New("profile must be created first")
	ErrForbidden           = errors.New("action not allowed for this role")
	ErrProfileExists       = errors.New("profile already exists")
	ErrProfileUnreachable  = errors.New("profile already exists but could not be retrieved")
)

// ValidationError carries field-level messages, either produced locally
// before a request is sent or decoded from an HTTP 422 response.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.Join(e.Fields[k], "; "))
	}
	return strings.Join(parts, "\n")
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// RequestError is a non-validation rejection from the backend.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *RequestError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// TransportError means a response arrived but could not be understood.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "server unreachable or malformed response: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// NetworkError means no response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network failure: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }
