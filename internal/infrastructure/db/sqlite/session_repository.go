package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/infrastructure/db"
)

// SessionRepository stores the session as two rows of the session table.
type SessionRepository struct {
	conn *sql.DB
	now  func() time.Time
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(conn *sql.DB) *SessionRepository {
	return &SessionRepository{conn: conn, now: time.Now}
}

const upsertSQL = `INSERT INTO session (name, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Save replaces both rows in one transaction.
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	user, token, err := db.EncodeSession(s)
	if err != nil {
		return err
	}
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ts := r.now().Unix()
	if _, err := tx.ExecContext(ctx, upsertSQL, ports.SessionUserKey, string(user), ts); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertSQL, ports.SessionTokenKey, token, ts); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return tx.Commit()
}

func (r *SessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT name, value FROM session WHERE name IN (?, ?)`,
		ports.SessionUserKey, ports.SessionTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	var user, token string
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		switch k {
		case ports.SessionUserKey:
			user = v
		case ports.SessionTokenKey:
			token = v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return db.DecodeSession([]byte(user), token)
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM session WHERE name IN (?, ?)`,
		ports.SessionUserKey, ports.SessionTokenKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.conn.PingContext(ctx)
}
