package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type historyModel struct {
	bun.BaseModel `bun:"table:quiz_histories"`

	ID                  string                     `bun:"id,pk,type:uuid"`
	UserID              string                     `bun:"user_id,notnull"`
	Score               int                        `bun:"score"`
	CorrectAnswers      int                        `bun:"correct_answers"`
	TotalQuestions      int                        `bun:"total_questions"`
	DifficultyBreakdown domain.DifficultyBreakdown `bun:"difficulty_breakdown,type:jsonb"`
	TagAnalysis         map[string]domain.TagStat  `bun:"tag_analysis,type:jsonb"`
	Questions           []domain.PresentedQuestion `bun:"questions,type:jsonb"`
	CreatedAt           time.Time                  `bun:"created_at,notnull"`
}

// HistoryStore persists completed quiz sessions in the quiz_histories table.
type HistoryStore struct {
	db *bun.DB
}

func NewHistoryStore(db *bun.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Create(ctx context.Context, record domain.HistoryRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}
	model := toHistoryModel(record)
	model.ID = uuid.NewString()
	if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return "", fmt.Errorf("insert quiz history: %w", err)
	}
	return model.ID, nil
}

func (s *HistoryStore) GetByID(ctx context.Context, id string) (domain.HistoryRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.HistoryRecord{}, domain.ErrHistoryNotFound
	}
	model := new(historyModel)
	err := s.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryRecord{}, domain.ErrHistoryNotFound
	}
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("select quiz history: %w", err)
	}
	return model.toDomain(), nil
}

func (s *HistoryStore) ListByUser(ctx context.Context, userID string) ([]domain.HistoryListItem, error) {
	var models []historyModel
	err := s.db.NewSelect().
		Model(&models).
		Column("id", "score", "correct_answers", "total_questions", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quiz histories: %w", err)
	}
	items := make([]domain.HistoryListItem, 0, len(models))
	for _, m := range models {
		items = append(items, domain.HistoryListItem{
			ID:             m.ID,
			Score:          m.Score,
			CorrectAnswers: m.CorrectAnswers,
			TotalQuestions: m.TotalQuestions,
			Date:           m.CreatedAt,
		})
	}
	return items, nil
}

func toHistoryModel(r domain.HistoryRecord) *historyModel {
	return &historyModel{
		UserID:              r.UserID,
		Score:               r.Score,
		CorrectAnswers:      r.CorrectAnswers,
		TotalQuestions:      r.TotalQuestions,
		DifficultyBreakdown: r.DifficultyBreakdown,
		TagAnalysis:         r.TagAnalysis,
		Questions:           r.Questions,
		CreatedAt:           r.Date,
	}
}

func (m *historyModel) toDomain() domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:     m.ID,
		UserID: m.UserID,
		Date:   m.CreatedAt,
		SessionSummary: domain.SessionSummary{
			Score:               m.Score,
			CorrectAnswers:      m.CorrectAnswers,
			TotalQuestions:      m.TotalQuestions,
			DifficultyBreakdown: m.DifficultyBreakdown,
			TagAnalysis:         m.TagAnalysis,
			Questions:           m.Questions,
		},
	}
}
