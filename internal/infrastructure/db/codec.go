// Package db holds the session repositories. Every backend stores the same
// two values under the fixed keys ports.SessionUserKey and
// ports.SessionTokenKey: the identity as JSON and the raw token.
package db

import (
	"encoding/json"
	"fmt"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// EncodeSession splits s into the stored identity document and token.
func EncodeSession(s *domain.Session) (user []byte, token string, err error) {
	if s == nil || s.Token == "" || s.Identity.ID == 0 {
		return nil, "", domain.ErrInvalidSession
	}
	user, err = json.Marshal(s.Identity)
	if err != nil {
		return nil, "", fmt.Errorf("encode identity: %w", err)
	}
	return user, s.Token, nil
}

// DecodeSession rebuilds a session. A half-present pair, or one that does
// not decode, is reported as domain.ErrNoSession so callers start signed out.
func DecodeSession(user []byte, token string) (*domain.Session, error) {
	if len(user) == 0 || token == "" {
		return nil, domain.ErrNoSession
	}
	var id domain.Identity
	if err := json.Unmarshal(user, &id); err != nil {
		return nil, domain.ErrNoSession
	}
	s, err := domain.NewSession(token, id)
	if err != nil {
		return nil, domain.ErrNoSession
	}
	return s, nil
}
