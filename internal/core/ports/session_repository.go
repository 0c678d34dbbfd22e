package ports

import (
	"context"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// Fixed keys under which the persisted session is stored.
const (
	SessionUserKey  = "user"
	SessionTokenKey = "token"
)

// SessionRepository persists the single on-device session copy.
type SessionRepository interface {
	// Save stores identity and token together, replacing any previous copy.
	Save(ctx context.Context, s *domain.Session) error
	// Load returns domain.ErrNoSession when nothing is persisted.
	Load(ctx context.Context) (*domain.Session, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
