package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
)

func TestHistoryStoreCreateAndGet(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, sampleRecord("u1", time.Now()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id || got.UserID != "u1" || got.Score != 7 {
		t.Fatalf("unexpected record %+v", got)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrHistoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHistoryStoreRejectsInvalidRecords(t *testing.T) {
	store := NewHistoryStore()

	record := sampleRecord("u1", time.Now())
	record.Questions = nil
	if _, err := store.Create(context.Background(), record); !errors.Is(err, domain.ErrInvalidHistory) {
		t.Fatalf("expected validation error for empty questions, got %v", err)
	}

	if _, err := store.Create(context.Background(), sampleRecord("", time.Now())); !errors.Is(err, domain.ErrInvalidHistory) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}
}

func TestHistoryStoreListNewestFirst(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	base := time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)

	older, _ := store.Create(ctx, sampleRecord("u1", base))
	newer, _ := store.Create(ctx, sampleRecord("u1", base.Add(time.Hour)))
	_, _ = store.Create(ctx, sampleRecord("u2", base))

	items, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != newer || items[1].ID != older {
		t.Fatalf("expected newest first, got %+v", items)
	}

	empty, err := store.ListByUser(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty history, got %v %v", empty, err)
	}
}

func sampleRecord(userID string, date time.Time) domain.HistoryRecord {
	answer := "4"
	score := 1
	return domain.HistoryRecord{
		UserID: userID,
		Date:   date,
		SessionSummary: domain.SessionSummary{
			Score:          7,
			CorrectAnswers: 1,
			TotalQuestions: 1,
			Questions: []domain.PresentedQuestion{{
				QuestionRecord: samplePools()[domain.DifficultyEasy][0],
				UserAnswer:     &answer,
				UserScore:      &score,
			}},
		},
	}
}
