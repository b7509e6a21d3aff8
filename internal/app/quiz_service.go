package app

import (
	"context"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts where in-flight sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// HistoryRepository persists completed sessions.
type HistoryRepository interface {
	Create(ctx context.Context, record domain.HistoryRecord) (string, error)
	GetByID(ctx context.Context, id string) (domain.HistoryRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.HistoryListItem, error)
}

// AnswerOutcome is an AnswerResult plus, once the session is completed, its
// summary and the history id after a successful save.
type AnswerOutcome struct {
	AnswerResult
	Summary   *domain.SessionSummary
	HistoryID string
}

// QuizService contains the adaptive quiz use cases.
type QuizService struct {
	sessions SessionRepository
	pools    PoolRepository
	history  HistoryRepository

	logger    *zap.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	newID     func() string
	newRandom func() Random
}

// Option customizes a service at construction time.
type Option func(*serviceOptions)

type serviceOptions struct {
	logger    *zap.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	newID     func() string
	newRandom func() Random
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(o *serviceOptions) { o.metrics = m }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *serviceOptions) { o.newID = newID }
}

// WithRandomSource injects the source each new session draws with.
func WithRandomSource(newRandom func() Random) Option {
	return func(o *serviceOptions) { o.newRandom = newRandom }
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
		newRandom: NewRandom,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewQuizService(sessions SessionRepository, pools PoolRepository, history HistoryRepository, opts ...Option) *QuizService {
	o := buildOptions(opts)
	return &QuizService{
		sessions:  sessions,
		pools:     pools,
		history:   history,
		logger:    o.logger,
		metrics:   o.metrics,
		now:       o.now,
		newID:     o.newID,
		newRandom: o.newRandom,
	}
}

// StartSession loads the pools and presents the first easy question.
func (s *QuizService) StartSession(ctx context.Context, userID string) (SessionSnapshot, error) {
	if userID == "" {
		return SessionSnapshot{}, domain.ErrInvalidUser
	}

	pools, err := LoadPools(ctx, s.pools)
	if err != nil {
		s.logger.Warn("load question pools", zap.String("user_id", userID), zap.Error(err))
		return SessionSnapshot{}, err
	}

	session := NewSessionWithClock(s.newID(), userID, pools, s.newRandom(), s.now)
	if _, err := session.Start(); err != nil {
		return SessionSnapshot{}, err
	}
	s.sessions.Save(session)
	s.metrics.SessionStarted()
	s.logger.Debug("quiz session started", zap.String("session_id", session.ID()), zap.String("user_id", userID))
	return session.Snapshot(), nil
}

// GetSession returns the current state of a user's session.
func (s *QuizService) GetSession(_ context.Context, sessionID, userID string) (SessionSnapshot, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// SubmitAnswer answers the current question. When the answer completes the
// session the summary is persisted; a persistence failure is returned wrapped
// in domain.ErrPersistence and can be retried with Finish.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID, userID, option string) (AnswerOutcome, error) {
	return s.submit(ctx, sessionID, userID, func(session *Session) (AnswerResult, error) {
		return session.Answer(option)
	})
}

// SkipQuestion records the current question as unanswered.
func (s *QuizService) SkipQuestion(ctx context.Context, sessionID, userID string) (AnswerOutcome, error) {
	return s.submit(ctx, sessionID, userID, (*Session).Skip)
}

func (s *QuizService) submit(ctx context.Context, sessionID, userID string, answer func(*Session) (AnswerResult, error)) (AnswerOutcome, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if err := session.acquire(); err != nil {
		return AnswerOutcome{}, err
	}
	defer session.release()

	result, err := answer(session)
	if err != nil {
		return AnswerOutcome{}, err
	}
	s.metrics.AnswerRecorded(result.Answered.Difficulty, result.Correct)
	s.sessions.Save(session)

	outcome := AnswerOutcome{AnswerResult: result}
	if !result.Completed {
		return outcome, nil
	}
	if summary, ok := session.Summary(); ok {
		outcome.Summary = &summary
	}
	s.metrics.SessionCompleted(result.EndedEarly)
	if result.EndedEarly {
		s.logger.Info("quiz session ended early, pool exhausted",
			zap.String("session_id", sessionID),
			zap.String("difficulty", string(result.NextDifficulty)))
	}

	historyID, err := s.persist(ctx, session)
	outcome.HistoryID = historyID
	return outcome, err
}

// Finish (re)tries saving a completed session and returns the history id.
// It is idempotent once the save has succeeded.
func (s *QuizService) Finish(ctx context.Context, sessionID, userID string) (string, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return "", err
	}
	if err := session.acquire(); err != nil {
		return "", err
	}
	defer session.release()
	return s.persist(ctx, session)
}

// Abandon drops an in-flight session without persisting anything.
func (s *QuizService) Abandon(_ context.Context, sessionID, userID string) error {
	if _, err := s.session(sessionID, userID); err != nil {
		return err
	}
	s.sessions.Delete(sessionID)
	return nil
}

func (s *QuizService) persist(ctx context.Context, session *Session) (string, error) {
	if id := session.HistoryID(); id != "" {
		return id, nil
	}
	summary, ok := session.Summary()
	if !ok {
		return "", domain.ErrSessionNotCompleted
	}

	record := domain.HistoryRecord{
		UserID:         session.UserID(),
		Date:           s.now(),
		SessionSummary: summary,
	}
	id, err := s.history.Create(ctx, record)
	if err != nil {
		s.metrics.HistorySaveFailed()
		s.logger.Error("save quiz history", zap.String("session_id", session.ID()), zap.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	session.markSaved(id)
	s.sessions.Save(session)
	s.logger.Info("quiz history saved",
		zap.String("session_id", session.ID()),
		zap.String("history_id", id),
		zap.Int("score", summary.Score))
	return id, nil
}

func (s *QuizService) session(sessionID, userID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.UserID() != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
