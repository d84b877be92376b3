package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"social-style-service/internal/domain"
)

const maxTxAttempts = 3

// SessionStore keeps one hash per session and announces every write on a pub/sub channel.
//
//	HSET session:{code} session_code {code} showResults {bool} ...
//	PUBLISH session:{code}:flags ""
//
// Session hashes carry no expiry; a session lives as long as its submissions.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	key := s.key(session.Code)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, hashFields(domain.SessionDocument(session)))
		pipe.Publish(ctx, s.channel(session.Code), "")
		return nil
	})
	return err
}

func (s *SessionStore) Get(ctx context.Context, code string) (domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key(code)).Result()
	if err != nil {
		return domain.Session{}, err
	}
	if len(fields) == 0 {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	return domain.DecodeSession(code, doc), nil
}

func (s *SessionStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateFlags writes only the fields present in patch. The existence check and the write run in
// one optimistic transaction; concurrent writers retry and the last write wins.
func (s *SessionStore) UpdateFlags(ctx context.Context, code string, patch domain.FlagPatch) error {
	key := s.key(code)
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[k] = strconv.FormatBool(v)
	}

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrSessionNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, values)
			pipe.Publish(ctx, s.channel(code), "")
			return nil
		})
		return err
	}
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// Subscribe emits the session after every write. Nothing is emitted while the session is missing.
func (s *SessionStore) Subscribe(ctx context.Context, code string) (<-chan domain.SessionSnapshot, func(), error) {
	return watchChannel(ctx, s.client, s.channel(code), func(ctx context.Context) (domain.SessionSnapshot, bool) {
		session, err := s.Get(ctx, code)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.SessionSnapshot{}, false
		}
		if err != nil {
			return domain.SessionSnapshot{Err: err}, true
		}
		return domain.SessionSnapshot{Session: session}, true
	})
}

func (s *SessionStore) key(code string) string {
	return "session:" + code
}

func (s *SessionStore) channel(code string) string {
	return "session:" + code + ":flags"
}

// hashFields flattens a document into string hash values.
func hashFields(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch x := v.(type) {
		case bool:
			out[k] = strconv.FormatBool(x)
		default:
			out[k] = v
		}
	}
	return out
}
