package app

import (
	"math/rand"
	"slices"
	"time"

	"adaptive-quiz-service/internal/domain"
)

// Random is the source used to pick among unshown questions.
type Random interface {
	Intn(n int) int
}

// NewRandom returns a time-seeded source for production sessions.
func NewRandom() Random {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SelectionTracker records which pool indices a session has already drawn.
// Indices are tracked per pool, so index 3 of easy never blocks index 3 of hard.
type SelectionTracker struct {
	shown map[domain.Difficulty]map[int]struct{}
}

func NewSelectionTracker() *SelectionTracker {
	return &SelectionTracker{shown: make(map[domain.Difficulty]map[int]struct{})}
}

func (t *SelectionTracker) Shown(d domain.Difficulty, index int) bool {
	_, ok := t.shown[d][index]
	return ok
}

func (t *SelectionTracker) Mark(d domain.Difficulty, index int) {
	set, ok := t.shown[d]
	if !ok {
		set = make(map[int]struct{})
		t.shown[d] = set
	}
	set[index] = struct{}{}
}

// Count returns how many questions of pool d have been drawn.
func (t *SelectionTracker) Count(d domain.Difficulty) int {
	return len(t.shown[d])
}

// Draw picks a uniformly random unshown question from pool and marks it shown.
// It returns false when every question of the pool has already been drawn.
func Draw(pool []domain.QuestionRecord, d domain.Difficulty, tracker *SelectionTracker, rnd Random) (domain.PresentedQuestion, bool) {
	available := make([]int, 0, len(pool))
	for i := range pool {
		if !tracker.Shown(d, i) {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		return domain.PresentedQuestion{}, false
	}

	index := available[rnd.Intn(len(available))]
	tracker.Mark(d, index)

	record := pool[index]
	record.Options = slices.Clone(record.Options)
	record.Tags = slices.Clone(record.Tags)
	record.References = slices.Clone(record.References)
	if record.Difficulty == "" {
		record.Difficulty = d
	}
	return domain.PresentedQuestion{QuestionRecord: record, SourceIndex: index}, true
}
