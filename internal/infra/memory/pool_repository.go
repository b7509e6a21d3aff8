package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"adaptive-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches a question pool from a backing store (files, Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error)
}

// PoolRepository caches pools with TTL to avoid re-reading them for every session.
type PoolRepository struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[domain.Difficulty]cachedPool
}

type cachedPool struct {
	questions []domain.QuestionRecord
	expiresAt time.Time
}

func NewPoolRepository(loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Difficulty]cachedPool),
	}
}

func (r *PoolRepository) GetPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error) {
	if pool, ok := r.cached(difficulty); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(string(difficulty), func() (interface{}, error) {
		if pool, ok := r.cached(difficulty); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadPool(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[difficulty] = cachedPool{
			questions: pool,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionRecord), nil
}

// Invalidate drops every cached pool, e.g. after an import.
func (r *PoolRepository) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[domain.Difficulty]cachedPool)
	r.mu.Unlock()
}

func (r *PoolRepository) cached(difficulty domain.Difficulty) ([]domain.QuestionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[difficulty]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func (r *PoolRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPoolLoader is a loader backed by in-memory pools (useful for tests/demos).
type StaticPoolLoader struct {
	pools domain.Pools
}

func NewStaticPoolLoader(pools domain.Pools) *StaticPoolLoader {
	return &StaticPoolLoader{pools: pools}
}

func (l *StaticPoolLoader) LoadPool(_ context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error) {
	pool, ok := l.pools[difficulty]
	if !ok {
		return nil, fmt.Errorf("%s pool: %w", difficulty, domain.ErrPoolUnavailable)
	}
	return pool, nil
}
