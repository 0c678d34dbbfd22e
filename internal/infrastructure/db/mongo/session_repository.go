package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/infrastructure/db"
)

const sessionCollection = "session"

// SessionRepository stores the session as two documents keyed by
// ports.SessionUserKey and ports.SessionTokenKey.
type SessionRepository struct {
	coll *mongo.Collection
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(database *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: database.Collection(sessionCollection)}
}

type sessionDoc struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	user, token, err := db.EncodeSession(s)
	if err != nil {
		return err
	}
	models := []mongo.WriteModel{
		mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": ports.SessionUserKey}).
			SetReplacement(sessionDoc{Key: ports.SessionUserKey, Value: string(user)}).
			SetUpsert(true),
		mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": ports.SessionTokenKey}).
			SetReplacement(sessionDoc{Key: ports.SessionTokenKey, Value: token}).
			SetUpsert(true),
	}
	if _, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": bson.A{ports.SessionUserKey, ports.SessionTokenKey}}})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer cur.Close(ctx)

	var docs []sessionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	var user, token string
	for _, d := range docs {
		switch d.Key {
		case ports.SessionUserKey:
			user = d.Value
		case ports.SessionTokenKey:
			token = d.Value
		}
	}
	return db.DecodeSession([]byte(user), token)
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": bson.A{ports.SessionUserKey, ports.SessionTokenKey}}})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
