package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS quiz_histories (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    score INTEGER NOT NULL,
    correct_answers INTEGER NOT NULL,
    total_questions INTEGER NOT NULL,
    difficulty_breakdown TEXT NOT NULL,
    tag_analysis TEXT NOT NULL,
    questions TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS quiz_histories_user_created_idx ON quiz_histories (user_id, created_at DESC);
`

// HistoryStore keeps quiz history in a single-file SQLite database.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (or creates) the database at path. ":memory:" is
// accepted for tests.
func NewHistoryStore(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) Create(ctx context.Context, record domain.HistoryRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}
	breakdown, err := json.Marshal(record.DifficultyBreakdown)
	if err != nil {
		return "", err
	}
	tags, err := json.Marshal(record.TagAnalysis)
	if err != nil {
		return "", err
	}
	questions, err := json.Marshal(record.Questions)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_histories (id, user_id, score, correct_answers, total_questions, difficulty_breakdown, tag_analysis, questions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, record.UserID, record.Score, record.CorrectAnswers, record.TotalQuestions,
		string(breakdown), string(tags), string(questions), record.Date.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert quiz history: %w", err)
	}
	return id, nil
}

func (s *HistoryStore) GetByID(ctx context.Context, id string) (domain.HistoryRecord, error) {
	var (
		record                     domain.HistoryRecord
		breakdown, tags, questions string
		createdAt                  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, score, correct_answers, total_questions, difficulty_breakdown, tag_analysis, questions, created_at
		 FROM quiz_histories WHERE id = ?`, id).
		Scan(&record.ID, &record.UserID, &record.Score, &record.CorrectAnswers, &record.TotalQuestions,
			&breakdown, &tags, &questions, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryRecord{}, domain.ErrHistoryNotFound
	}
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("select quiz history: %w", err)
	}

	if err := json.Unmarshal([]byte(breakdown), &record.DifficultyBreakdown); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("decode difficulty breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &record.TagAnalysis); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("decode tag analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(questions), &record.Questions); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("decode questions: %w", err)
	}
	record.Date = time.Unix(0, createdAt).UTC()
	return record, nil
}

func (s *HistoryStore) ListByUser(ctx context.Context, userID string) ([]domain.HistoryListItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, score, correct_answers, total_questions, created_at
		 FROM quiz_histories WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list quiz histories: %w", err)
	}
	defer rows.Close()

	items := []domain.HistoryListItem{}
	for rows.Next() {
		var (
			item      domain.HistoryListItem
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &item.Score, &item.CorrectAnswers, &item.TotalQuestions, &createdAt); err != nil {
			return nil, err
		}
		item.Date = time.Unix(0, createdAt).UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}
