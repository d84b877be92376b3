package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-style-service/internal/domain"
)

// SessionStore keeps one document per session with the session code as _id.
type SessionStore struct {
	coll *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection(SessionsCollection)}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	doc := bson.M(domain.SessionDocument(session))
	doc["_id"] = session.Code
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": session.Code}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *SessionStore) Get(ctx context.Context, code string) (domain.Session, error) {
	var raw bson.M
	err := s.coll.FindOne(ctx, bson.M{"_id": code}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	return domain.DecodeSession(code, document(raw)), nil
}

func (s *SessionStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) UpdateFlags(ctx context.Context, code string, patch domain.FlagPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": code}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Subscribe emits the session after every write to it. Nothing is emitted while it is missing.
func (s *SessionStore) Subscribe(ctx context.Context, code string) (<-chan domain.SessionSnapshot, func(), error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": code}}},
	}
	load := func(ctx context.Context) (domain.SessionSnapshot, bool) {
		session, err := s.Get(ctx, code)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.SessionSnapshot{}, false
		}
		if err != nil {
			return domain.SessionSnapshot{Err: err}, true
		}
		return domain.SessionSnapshot{Session: session}, true
	}
	failed := func(err error) domain.SessionSnapshot {
		return domain.SessionSnapshot{Err: err}
	}
	return watchCollection(ctx, s.coll, pipeline, load, failed)
}
