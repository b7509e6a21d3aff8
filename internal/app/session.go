package app

import (
	"slices"
	"sync"
	"time"

	"adaptive-quiz-service/internal/domain"
)

// QuestionsPerSession is the length of a full quiz attempt.
const QuestionsPerSession = 10

// SessionState is the lifecycle phase of a quiz attempt.
type SessionState int

const (
	StateAwaitingFirstQuestion SessionState = iota
	StateInProgress
	StateCompleted
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingFirstQuestion:
		return "awaiting_first_question"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// AnswerResult describes what a single answer did to the session.
type AnswerResult struct {
	Answered       domain.PresentedQuestion
	Correct        bool
	Awarded        int
	Score          int
	CorrectAnswers int
	NextDifficulty domain.Difficulty
	Next           *domain.PresentedQuestion
	Position       int
	Completed      bool
	EndedEarly     bool
}

// SessionSnapshot is a read-only copy of the session state.
type SessionSnapshot struct {
	ID             string
	UserID         string
	State          SessionState
	Position       int
	Answered       int
	Difficulty     domain.Difficulty
	Score          int
	CorrectAnswers int
	Current        *domain.PresentedQuestion
	EndedEarly     bool
	HistoryID      string
	CreatedAt      time.Time
}

// Session is one adaptive quiz attempt. It owns the presented questions,
// the shown-set and the running score.
type Session struct {
	id        string
	userID    string
	createdAt time.Time
	now       func() time.Time
	rnd       Random
	pools     domain.Pools

	mu           sync.Mutex
	state        SessionState
	busy         bool
	lastActive   time.Time
	questions    []domain.PresentedQuestion
	currentIndex int
	difficulty   domain.Difficulty
	score        int
	correctCount int
	tracker      *SelectionTracker
	endedEarly   bool
	summary      *domain.SessionSummary
	historyID    string
}

// NewSession creates a session over already-loaded pools.
func NewSession(id, userID string, pools domain.Pools, rnd Random) *Session {
	return NewSessionWithClock(id, userID, pools, rnd, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, userID string, pools domain.Pools, rnd Random, now func() time.Time) *Session {
	created := now()
	return &Session{
		id:         id,
		userID:     userID,
		createdAt:  created,
		lastActive: created,
		now:        now,
		rnd:        rnd,
		pools:      pools,
		state:      StateAwaitingFirstQuestion,
		difficulty: domain.DifficultyEasy,
		questions:  make([]domain.PresentedQuestion, 0, QuestionsPerSession),
		tracker:    NewSelectionTracker(),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) UserID() string       { return s.userID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActive is the time of the most recent state change.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start draws the first (easy) question.
func (s *Session) Start() (domain.PresentedQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingFirstQuestion {
		return domain.PresentedQuestion{}, domain.ErrInitialization
	}
	q, ok := Draw(s.pools[s.difficulty], s.difficulty, s.tracker, s.rnd)
	if !ok {
		return domain.PresentedQuestion{}, domain.ErrInitialization
	}
	s.questions = append(s.questions, q)
	s.currentIndex = 0
	s.state = StateInProgress
	s.lastActive = s.now()
	return q, nil
}

// Answer records option for the current question.
func (s *Session) Answer(option string) (AnswerResult, error) {
	return s.answer(&option)
}

// Skip records an explicit unanswered question, scored as incorrect.
func (s *Session) Skip() (AnswerResult, error) {
	return s.answer(nil)
}

func (s *Session) answer(option *string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateCompleted:
		return AnswerResult{}, domain.ErrSessionCompleted
	case StateAwaitingFirstQuestion:
		return AnswerResult{}, domain.ErrNoActiveQuestion
	}

	current := &s.questions[s.currentIndex]
	if option != nil && !current.HasOption(*option) {
		return AnswerResult{}, domain.ErrInvalidOption
	}

	correct := option != nil && *option == current.CorrectAnswer
	awarded := 0
	userScore := 0
	if correct {
		awarded = ScoreWeight(current.Difficulty)
		s.score += awarded
		s.correctCount++
		userScore = 1
	}
	s.difficulty = NextDifficulty(s.difficulty, correct)

	if option != nil {
		answer := *option
		current.UserAnswer = &answer
	}
	current.UserScore = &userScore
	answered := *current

	// Completion is judged on the count before the successor is drawn, so the
	// tenth answer never triggers an eleventh draw.
	count := len(s.questions)
	result := AnswerResult{Answered: answered, Correct: correct, Awarded: awarded, NextDifficulty: s.difficulty}
	if count < QuestionsPerSession {
		next, ok := Draw(s.pools[s.difficulty], s.difficulty, s.tracker, s.rnd)
		if ok {
			s.questions = append(s.questions, next)
			s.currentIndex++
			result.Next = &next
		} else {
			s.endedEarly = true
			s.completeLocked()
		}
	}
	if count == QuestionsPerSession {
		s.completeLocked()
	}
	s.lastActive = s.now()

	result.Position = s.currentIndex
	result.Score = s.score
	result.CorrectAnswers = s.correctCount
	result.Completed = s.state == StateCompleted
	result.EndedEarly = s.endedEarly
	return result, nil
}

func (s *Session) completeLocked() {
	s.state = StateCompleted
	summary := BuildSummary(slices.Clone(s.questions), s.score, s.correctCount)
	s.summary = &summary
}

// Summary returns the completion summary; false while the session is in progress.
func (s *Session) Summary() (domain.SessionSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return domain.SessionSummary{}, false
	}
	return *s.summary, true
}

// HistoryID is the persisted record id, empty until saved.
func (s *Session) HistoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyID
}

func (s *Session) markSaved(historyID string) {
	s.mu.Lock()
	s.historyID = historyID
	s.lastActive = s.now()
	s.mu.Unlock()
}

// acquire marks the session busy for one answer/persist round.
func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return domain.ErrSessionBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Snapshot copies the current state for read-only callers.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ID:             s.id,
		UserID:         s.userID,
		State:          s.state,
		Position:       s.currentIndex,
		Difficulty:     s.difficulty,
		Score:          s.score,
		CorrectAnswers: s.correctCount,
		EndedEarly:     s.endedEarly,
		HistoryID:      s.historyID,
		CreatedAt:      s.createdAt,
	}
	for _, q := range s.questions {
		if q.Answered() {
			snap.Answered++
		}
	}
	if s.state == StateInProgress {
		current := s.questions[s.currentIndex]
		snap.Current = &current
	}
	return snap
}

// Questions returns a copy of the presented questions in order.
func (s *Session) Questions() []domain.PresentedQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.questions)
}
