package app

import (
	"context"
	"fmt"
	"sync"

	"adaptive-quiz-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// PoolRepository loads one difficulty tier (from cache/backing store).
type PoolRepository interface {
	GetPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error)
}

// LoadPools reads all three tiers. A session may route to any tier at any
// point, so a failure of any single pool fails the whole load.
func LoadPools(ctx context.Context, repo PoolRepository) (domain.Pools, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	pools := make(domain.Pools, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		d := d
		g.Go(func() error {
			pool, err := repo.GetPool(ctx, d)
			if err != nil {
				return &domain.LoadError{Difficulty: d, Err: err}
			}
			if err := validatePool(d, pool); err != nil {
				return &domain.LoadError{Difficulty: d, Err: err}
			}
			mu.Lock()
			pools[d] = pool
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pools, nil
}

func validatePool(d domain.Difficulty, pool []domain.QuestionRecord) error {
	for i, q := range pool {
		if q.Difficulty != "" && q.Difficulty != d {
			return fmt.Errorf("question %d: difficulty %q in %s pool", i, q.Difficulty, d)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %d: no options", i)
		}
		if !q.HasOption(q.CorrectAnswer) {
			return fmt.Errorf("question %d: correct answer is not one of the options", i)
		}
	}
	return nil
}
