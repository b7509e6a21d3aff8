package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
	"go.uber.org/zap"
)

const (
	missingCorrectAnswer = "N/A"
	missingExplanation   = "No explanation available"
	unknownDifficulty    = domain.Difficulty("unknown")
)

// HistoryService serves the quiz history review use cases.
type HistoryService struct {
	repo   HistoryRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewHistoryService(repo HistoryRepository, opts ...Option) *HistoryService {
	o := buildOptions(opts)
	return &HistoryService{repo: repo, logger: o.logger, now: o.now}
}

// Save stores a client-reported result. Score and correct count are taken as
// reported; the difficulty breakdown and tag analysis are derived here.
func (h *HistoryService) Save(ctx context.Context, userID string, submission domain.HistorySubmission) (domain.HistoryRecord, error) {
	questions := normalizeSubmitted(submission.Questions)
	summary := BuildSummary(questions, submission.Score, submission.CorrectAnswers)
	if submission.TotalQuestions > 0 {
		summary.TotalQuestions = submission.TotalQuestions
	}

	record := domain.HistoryRecord{UserID: userID, Date: h.now(), SessionSummary: summary}
	id, err := h.repo.Create(ctx, record)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidHistory) {
			return domain.HistoryRecord{}, err
		}
		h.logger.Error("save submitted quiz history", zap.String("user_id", userID), zap.Error(err))
		return domain.HistoryRecord{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	record.ID = id
	return record, nil
}

// Get returns a history record owned by userID.
func (h *HistoryService) Get(ctx context.Context, userID, id string) (domain.HistoryRecord, error) {
	record, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return domain.HistoryRecord{}, err
	}
	if record.UserID != userID {
		return domain.HistoryRecord{}, domain.ErrHistoryNotFound
	}
	return record, nil
}

// List returns the user's history, newest first. No history is an empty list.
func (h *HistoryService) List(ctx context.Context, userID string) ([]domain.HistoryListItem, error) {
	items, err := h.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.HistoryListItem{}
	}
	return items, nil
}

func normalizeSubmitted(questions []domain.PresentedQuestion) []domain.PresentedQuestion {
	out := make([]domain.PresentedQuestion, 0, len(questions))
	for _, q := range questions {
		if q.UserAnswer != nil && *q.UserAnswer == "" {
			q.UserAnswer = nil
		}
		if q.CorrectAnswer == "" {
			q.CorrectAnswer = missingCorrectAnswer
		}
		if q.Difficulty == "" {
			q.Difficulty = unknownDifficulty
		}
		if q.Explanation == "" {
			q.Explanation = missingExplanation
		}
		if q.References == nil {
			q.References = []string{}
		}
		if q.Tags == nil {
			q.Tags = []string{}
		}
		if q.UserScore == nil {
			score := 0
			if q.AnsweredCorrectly() {
				score = 1
			}
			q.UserScore = &score
		}
		out = append(out, q)
	}
	return out
}
