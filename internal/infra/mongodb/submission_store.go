package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-style-service/internal/domain"
)

// SubmissionStore keeps one document per submission, keyed by an ObjectID.
type SubmissionStore struct {
	coll *mongo.Collection
}

func NewSubmissionStore(db *mongo.Database) *SubmissionStore {
	return &SubmissionStore{coll: db.Collection(SubmissionsCollection)}
}

func (s *SubmissionStore) Create(ctx context.Context, sub domain.Submission) (string, error) {
	doc := bson.M(domain.SubmissionDocument(sub))
	doc["_id"] = primitive.NewObjectID()
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert submission: unexpected id %v", res.InsertedID)
	}
	return id.Hex(), nil
}

func (s *SubmissionStore) Get(ctx context.Context, id string) (domain.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	var raw bson.M
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, err
	}
	return domain.DecodeSubmission(id, document(raw)), nil
}

// ListBySession returns the session's submissions oldest first.
func (s *SubmissionStore) ListBySession(ctx context.Context, code string) ([]domain.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: domain.FieldCreatedAt, Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{domain.FieldSessionCode: code}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subs := make([]domain.Submission, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		subs = append(subs, domain.DecodeSubmission(objectIDString(raw["_id"]), document(raw)))
	}
	return subs, cursor.Err()
}

// Subscribe emits the full submission list of code up front and after every insert into it.
func (s *SubmissionStore) Subscribe(ctx context.Context, code string) (<-chan domain.SubmissionSnapshot, func(), error) {
	sessionField := "fullDocument." + domain.FieldSessionCode
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": "insert", sessionField: code}}},
	}
	load := func(ctx context.Context) (domain.SubmissionSnapshot, bool) {
		subs, err := s.ListBySession(ctx, code)
		return domain.SubmissionSnapshot{Code: code, Submissions: subs, Err: err}, true
	}
	failed := func(err error) domain.SubmissionSnapshot {
		return domain.SubmissionSnapshot{Code: code, Err: err}
	}
	return watchCollection(ctx, s.coll, pipeline, load, failed)
}

func objectIDString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	}
	return fmt.Sprint(v)
}
