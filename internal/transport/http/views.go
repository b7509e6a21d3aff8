package http

import (
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
)

// questionView is a presented question without its answer.
type questionView struct {
	ID         int               `json:"id"`
	Number     int               `json:"number"`
	Question   string            `json:"question"`
	Options    []string          `json:"options"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Tags       []string          `json:"tags"`
}

type sessionView struct {
	ID             string            `json:"sessionId"`
	State          string            `json:"state"`
	Answered       int               `json:"answered"`
	TotalQuestions int               `json:"totalQuestions"`
	Difficulty     domain.Difficulty `json:"difficulty"`
	Score          int               `json:"score"`
	CorrectAnswers int               `json:"correctAnswers"`
	Current        *questionView     `json:"current,omitempty"`
	EndedEarly     bool              `json:"endedEarly"`
	HistoryID      string            `json:"historyId,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

type answerView struct {
	Correct        bool                   `json:"correct"`
	Awarded        int                    `json:"awarded"`
	Score          int                    `json:"score"`
	CorrectAnswers int                    `json:"correctAnswers"`
	CorrectAnswer  string                 `json:"correctAnswer"`
	Explanation    string                 `json:"explanation"`
	References     []string               `json:"references"`
	NextDifficulty domain.Difficulty      `json:"nextDifficulty"`
	Next           *questionView          `json:"next,omitempty"`
	Completed      bool                   `json:"completed"`
	EndedEarly     bool                   `json:"endedEarly"`
	HistoryID      string                 `json:"historyId,omitempty"`
	Summary        *domain.SessionSummary `json:"summary,omitempty"`
}

func newQuestionView(q domain.PresentedQuestion, number int) *questionView {
	return &questionView{
		ID:         q.ID,
		Number:     number,
		Question:   q.Question,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Tags:       q.Tags,
	}
}

func newSessionView(s app.SessionSnapshot) sessionView {
	view := sessionView{
		ID:             s.ID,
		State:          s.State.String(),
		Answered:       s.Answered,
		TotalQuestions: app.QuestionsPerSession,
		Difficulty:     s.Difficulty,
		Score:          s.Score,
		CorrectAnswers: s.CorrectAnswers,
		EndedEarly:     s.EndedEarly,
		HistoryID:      s.HistoryID,
		CreatedAt:      s.CreatedAt,
	}
	if s.Current != nil {
		view.Current = newQuestionView(*s.Current, s.Position+1)
	}
	return view
}

func newAnswerView(o app.AnswerOutcome) answerView {
	view := answerView{
		Correct:        o.Correct,
		Awarded:        o.Awarded,
		Score:          o.Score,
		CorrectAnswers: o.CorrectAnswers,
		CorrectAnswer:  o.Answered.CorrectAnswer,
		Explanation:    o.Answered.Explanation,
		References:     o.Answered.References,
		NextDifficulty: o.NextDifficulty,
		Completed:      o.Completed,
		EndedEarly:     o.EndedEarly,
		HistoryID:      o.HistoryID,
		Summary:        o.Summary,
	}
	if o.Next != nil {
		view.Next = newQuestionView(*o.Next, o.Position+1)
	}
	return view
}
