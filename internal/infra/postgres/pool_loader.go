package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"adaptive-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PoolLoader loads question pool JSONB from Postgres, one row per difficulty.
type PoolLoader struct {
	pool *pgxpool.Pool
}

func NewPoolLoader(pool *pgxpool.Pool) *PoolLoader {
	return &PoolLoader{pool: pool}
}

func (l *PoolLoader) LoadPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_pools WHERE difficulty=$1`, string(difficulty)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s pool: %w", difficulty, domain.ErrPoolUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s pool: %w", difficulty, err)
	}
	var questions []domain.QuestionRecord
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal %s pool: %w", difficulty, err)
	}
	return questions, nil
}

// ImportPool replaces the stored pool for difficulty.
func (l *PoolLoader) ImportPool(ctx context.Context, difficulty domain.Difficulty, questions []domain.QuestionRecord) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal %s pool: %w", difficulty, err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO question_pools (difficulty, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (difficulty) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		string(difficulty), string(data))
	if err != nil {
		return fmt.Errorf("import %s pool: %w", difficulty, err)
	}
	return nil
}
