package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/infrastructure/db"
)

const defaultPrefix = "saveeat:session:"

// SessionRepository persists the session under two keys:
// <prefix>user and <prefix>token. Keys carry no TTL; token expiry is
// checked on restore.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository wraps client. An empty prefix uses "saveeat:session:".
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionRepository{client: client, prefix: prefix}
}

func (r *SessionRepository) userKey() string  { return r.prefix + ports.SessionUserKey }
func (r *SessionRepository) tokenKey() string { return r.prefix + ports.SessionTokenKey }

// Save writes both keys in one MULTI/EXEC so a reader never sees half a session.
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	user, token, err := db.EncodeSession(s)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.userKey(), user, 0)
		p.Set(ctx, r.tokenKey(), token, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	vals, err := r.client.MGet(ctx, r.userKey(), r.tokenKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(vals) != 2 {
		return nil, domain.ErrNoSession
	}
	user, _ := vals[0].(string)
	token, _ := vals[1].(string)
	return db.DecodeSession([]byte(user), token)
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.userKey(), r.tokenKey()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
