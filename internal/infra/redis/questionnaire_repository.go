package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"social-style-service/internal/app"
	"social-style-service/internal/domain"
)

// QuestionnaireRepository caches question banks in Redis and falls back to a loader on cache miss.
// Each bank is stored as one JSON value: SET questionnaire:{id} {json} EX ttl
type QuestionnaireRepository struct {
	client *redis.Client
	loader app.QuestionnaireLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionnaireRepository(client *redis.Client, loader app.QuestionnaireLoader, ttl time.Duration) *QuestionnaireRepository {
	return &QuestionnaireRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionnaireRepository) GetQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	if q, ok := r.cached(ctx, id); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if q, ok := r.cached(ctx, id); ok {
			return q, nil
		}

		q, err := r.loader.LoadQuestionnaire(ctx, id)
		if err != nil {
			return domain.Questionnaire{}, err
		}

		data, err := json.Marshal(q)
		if err != nil {
			return domain.Questionnaire{}, err
		}
		if err := r.client.Set(ctx, r.key(id), data, r.ttlWithJitter()).Err(); err != nil {
			slog.Warn("questionnaire cache write failed", "questionnaire", id, "error", err)
		}
		return q, nil
	})
	if err != nil {
		return domain.Questionnaire{}, err
	}
	return result.(domain.Questionnaire), nil
}

// cached treats any Redis failure as a miss so the loader still serves the request.
func (r *QuestionnaireRepository) cached(ctx context.Context, id string) (domain.Questionnaire, bool) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("questionnaire cache read failed", "questionnaire", id, "error", err)
		}
		return domain.Questionnaire{}, false
	}
	var q domain.Questionnaire
	if err := json.Unmarshal(data, &q); err != nil {
		return domain.Questionnaire{}, false
	}
	return q, true
}

func (r *QuestionnaireRepository) key(id string) string {
	return "questionnaire:" + id
}

func (r *QuestionnaireRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
