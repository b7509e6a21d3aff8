package app

import (
	"errors"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
)

func testPools(easy, medium, hard int) domain.Pools {
	return domain.Pools{
		domain.DifficultyEasy:   buildPool(domain.DifficultyEasy, easy, "basics"),
		domain.DifficultyMedium: buildPool(domain.DifficultyMedium, medium, "basics", "types"),
		domain.DifficultyHard:   buildPool(domain.DifficultyHard, hard, "concurrency"),
	}
}

func startedSession(t *testing.T, pools domain.Pools) *Session {
	t.Helper()
	session := NewSession("s1", "u1", pools, firstRandom{})
	first, err := session.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Difficulty != domain.DifficultyEasy {
		t.Fatalf("first question must be easy, got %s", first.Difficulty)
	}
	return session
}

func answerCurrent(t *testing.T, session *Session, correct bool) AnswerResult {
	t.Helper()
	current := session.Snapshot().Current
	if current == nil {
		t.Fatalf("no current question")
	}
	option := current.CorrectAnswer
	if !correct {
		option = "wrong"
	}
	result, err := session.Answer(option)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	return result
}

func TestSessionScriptedRun(t *testing.T) {
	session := startedSession(t, testPools(10, 10, 10))

	script := []bool{true, false, true, true, true, false, false, true, false, true}
	wantDifficulty := []domain.Difficulty{
		domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyEasy, domain.DifficultyMedium,
		domain.DifficultyHard, domain.DifficultyHard, domain.DifficultyMedium, domain.DifficultyEasy,
		domain.DifficultyMedium, domain.DifficultyEasy,
	}

	lastScore := 0
	var result AnswerResult
	for i, correct := range script {
		current := session.Snapshot().Current
		if current.Difficulty != wantDifficulty[i] {
			t.Fatalf("question %d: difficulty %s, want %s", i+1, current.Difficulty, wantDifficulty[i])
		}
		result = answerCurrent(t, session, correct)
		if result.Score < lastScore {
			t.Fatalf("score decreased from %d to %d", lastScore, result.Score)
		}
		lastScore = result.Score
		if i < len(script)-1 && result.Completed {
			t.Fatalf("completed early after %d answers", i+1)
		}
	}

	if !result.Completed || result.EndedEarly {
		t.Fatalf("expected normal completion, got %+v", result)
	}
	if result.Score != 15 || result.CorrectAnswers != 6 {
		t.Fatalf("score %d correct %d, want 15 and 6", result.Score, result.CorrectAnswers)
	}

	summary, ok := session.Summary()
	if !ok {
		t.Fatalf("summary missing after completion")
	}
	if summary.TotalQuestions != QuestionsPerSession || len(summary.Questions) != QuestionsPerSession {
		t.Fatalf("expected %d questions, got %d", QuestionsPerSession, len(summary.Questions))
	}
	want := domain.DifficultyBreakdown{Easy: 4, Medium: 4, Hard: 2}
	if summary.DifficultyBreakdown != want {
		t.Fatalf("breakdown %+v, want %+v", summary.DifficultyBreakdown, want)
	}
	for i, q := range summary.Questions {
		if q.UserScore == nil {
			t.Fatalf("question %d has no score", i+1)
		}
	}
}

func TestSessionRejectsAnswersAfterCompletion(t *testing.T) {
	session := startedSession(t, testPools(10, 10, 10))
	for i := 0; i < QuestionsPerSession; i++ {
		answerCurrent(t, session, false)
	}
	if session.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", session.State())
	}
	if _, err := session.Answer("right"); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	if got := len(session.Questions()); got != QuestionsPerSession {
		t.Fatalf("expected %d presented questions, got %d", QuestionsPerSession, got)
	}
}

func TestSessionEndsEarlyWhenPoolExhausted(t *testing.T) {
	session := startedSession(t, testPools(10, 10, 1))

	answerCurrent(t, session, true) // easy -> medium
	answerCurrent(t, session, true) // medium -> hard
	if d := session.Snapshot().Current.Difficulty; d != domain.DifficultyHard {
		t.Fatalf("expected hard question, got %s", d)
	}
	result := answerCurrent(t, session, true) // hard -> hard, pool empty

	if !result.Completed || !result.EndedEarly {
		t.Fatalf("expected early completion, got %+v", result)
	}
	summary, _ := session.Summary()
	if summary.TotalQuestions != 3 || summary.Score != 9 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestSessionInvalidOptionLeavesStateUnchanged(t *testing.T) {
	session := startedSession(t, testPools(10, 10, 10))
	before := session.Snapshot()

	if _, err := session.Answer("not an option"); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	after := session.Snapshot()
	if after.Answered != before.Answered || after.Score != before.Score || after.Difficulty != before.Difficulty {
		t.Fatalf("state changed after invalid option: %+v -> %+v", before, after)
	}
}

func TestSessionSkipCountsAsIncorrect(t *testing.T) {
	session := startedSession(t, testPools(10, 10, 10))
	answerCurrent(t, session, true)

	result, err := session.Skip()
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if result.Correct || result.Awarded != 0 {
		t.Fatalf("skip must not award points: %+v", result)
	}
	if result.Answered.UserAnswer != nil || result.Answered.UserScore == nil || *result.Answered.UserScore != 0 {
		t.Fatalf("skip must record null answer with zero score: %+v", result.Answered)
	}
	if result.NextDifficulty != domain.DifficultyEasy {
		t.Fatalf("skip on medium should step down to easy, got %s", result.NextDifficulty)
	}
}

func TestSessionStartRequiresEasyQuestion(t *testing.T) {
	session := NewSession("s1", "u1", testPools(0, 10, 10), firstRandom{})
	if _, err := session.Start(); !errors.Is(err, domain.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
	if _, err := session.Answer("right"); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected ErrNoActiveQuestion, got %v", err)
	}
}

func TestSessionBusyGuard(t *testing.T) {
	session := startedSession(t, testPools(10, 10, 10))
	if err := session.acquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := session.acquire(); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	session.release()
	if err := session.acquire(); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestSessionClockDrivesLastActive(t *testing.T) {
	now := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	session := NewSessionWithClock("s1", "u1", testPools(10, 10, 10), firstRandom{}, clock)
	if _, err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	now = now.Add(time.Minute)
	answerCurrent(t, session, true)
	if got := session.LastActive(); !got.Equal(now) {
		t.Fatalf("last active %v, want %v", got, now)
	}
	if !session.CreatedAt().Before(now) {
		t.Fatalf("created at should stay at start time")
	}
}
