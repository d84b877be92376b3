package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"social-style-service/internal/domain"
)

// SubmissionStore keeps each submission as a JSON document and indexes them per session by
// creation time.
//
//	SET  submission:{id} {json}
//	ZADD session:{code}:submissions {created_at millis} {id}
//	PUBLISH session:{code}:submissions ""
type SubmissionStore struct {
	client *redis.Client
}

func NewSubmissionStore(client *redis.Client) *SubmissionStore {
	return &SubmissionStore{client: client}
}

func (s *SubmissionStore) Create(ctx context.Context, sub domain.Submission) (string, error) {
	id := uuid.NewString()
	data, err := json.Marshal(domain.SubmissionDocument(sub))
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(id), data, 0)
		pipe.ZAdd(ctx, s.indexKey(sub.SessionCode), redis.Z{Score: float64(sub.CreatedAt.UnixMilli()), Member: id})
		pipe.Publish(ctx, s.channel(sub.SessionCode), "")
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SubmissionStore) Get(ctx context.Context, id string) (domain.Submission, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, err
	}
	return decodeSubmission(id, data)
}

// ListBySession returns the session's submissions oldest first. Index entries whose document has
// gone are skipped.
func (s *SubmissionStore) ListBySession(ctx context.Context, code string) ([]domain.Submission, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	subs := make([]domain.Submission, 0, len(ids))
	if len(ids) == 0 {
		return subs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		sub, err := decodeSubmission(ids[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Subscribe emits the full submission list of code up front and after every insert.
func (s *SubmissionStore) Subscribe(ctx context.Context, code string) (<-chan domain.SubmissionSnapshot, func(), error) {
	return watchChannel(ctx, s.client, s.channel(code), func(ctx context.Context) (domain.SubmissionSnapshot, bool) {
		subs, err := s.ListBySession(ctx, code)
		return domain.SubmissionSnapshot{Code: code, Submissions: subs, Err: err}, true
	})
}

func (s *SubmissionStore) key(id string) string {
	return "submission:" + id
}

func (s *SubmissionStore) indexKey(code string) string {
	return "session:" + code + ":submissions"
}

func (s *SubmissionStore) channel(code string) string {
	return "session:" + code + ":submissions"
}

func decodeSubmission(id string, data []byte) (domain.Submission, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Submission{}, fmt.Errorf("decode submission %s: %w", id, err)
	}
	return domain.DecodeSubmission(id, doc), nil
}
