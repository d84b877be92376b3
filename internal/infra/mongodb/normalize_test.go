package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"social-style-service/internal/domain"
)

func TestDocumentDecodesDriverTypes(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	oid := primitive.NewObjectID()
	raw := bson.M{
		"_id":                      oid,
		domain.FieldSessionCode:    "ABC123",
		domain.FieldName:           "Alice",
		domain.FieldAnswers:        bson.M{"q1": "a", "q11": "d"},
		domain.FieldSocialStyle:    bson.A{"Driver"},
		domain.FieldCreatedAt:      primitive.NewDateTimeFromTime(created),
		domain.FieldShowResults:    true,
		domain.FieldShowExpressive: bson.D{{Key: "ignored", Value: 1}},
	}

	sub := domain.DecodeSubmission(objectIDString(raw["_id"]), document(raw))
	if sub.ID != oid.Hex() || sub.SessionCode != "ABC123" || sub.Name != "Alice" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.Answers["q1"] != "a" || sub.Answers["q11"] != "d" {
		t.Fatalf("nested answers not decoded: %v", sub.Answers)
	}
	if len(sub.SocialStyle) != 1 || sub.SocialStyle[0] != "Driver" {
		t.Fatalf("array not decoded: %v", sub.SocialStyle)
	}
	if !sub.CreatedAt.Equal(created) {
		t.Fatalf("expected %v, got %v", created, sub.CreatedAt)
	}

	session := domain.DecodeSession("FALLBK", document(raw))
	if session.Code != "ABC123" || !session.ShowResults || session.ShowExpressive {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestDocumentDefaultsMissingFields(t *testing.T) {
	sub := domain.DecodeSubmission("x", document(bson.M{}))
	if sub.Name != "" || len(sub.Answers) != 0 || !sub.CreatedAt.IsZero() {
		t.Fatalf("expected defaulted submission, got %+v", sub)
	}
	session := domain.DecodeSession("ABC123", document(bson.M{"_id": "ABC123"}))
	if session.Code != "ABC123" || session.Flags != (domain.Flags{}) {
		t.Fatalf("expected defaulted session, got %+v", session)
	}
}
