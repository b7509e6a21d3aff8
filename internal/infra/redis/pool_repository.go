package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches a question pool from a backing store (files, Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error)
}

// PoolRepository caches question pools in Redis and falls back to a loader on cache miss.
// Each pool is stored as a JSON array: SET quiz:pool:{difficulty} [...] EX ttl
type PoolRepository struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPoolRepository(client *redis.Client, loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PoolRepository) GetPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error) {
	key := r.key(difficulty)
	if pool, ok := r.cached(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := r.cached(ctx, key); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadPool(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		// A failed cache write only costs a reload next time.
		if payload, err := json.Marshal(pool); err == nil {
			_ = r.client.Set(ctx, key, payload, r.ttlWithJitter()).Err()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionRecord), nil
}

// Invalidate drops the cached pools so the next read goes to the loader.
func (r *PoolRepository) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		keys = append(keys, r.key(d))
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *PoolRepository) cached(ctx context.Context, key string) ([]domain.QuestionRecord, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var pool []domain.QuestionRecord
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, false
	}
	return pool, true
}

func (r *PoolRepository) key(difficulty domain.Difficulty) string {
	return "quiz:pool:" + string(difficulty)
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
