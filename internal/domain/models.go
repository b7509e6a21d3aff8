package domain

import (
	"fmt"
	"time"
)

// Difficulty identifies one of the three question pools.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty converts a raw tier name into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(raw)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
	return d, nil
}

// QuestionRecord is an immutable multiple-choice question from a pool.
type QuestionRecord struct {
	ID            int        `json:"id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	Difficulty    Difficulty `json:"difficulty"`
	Tags          []string   `json:"tags"`
	Explanation   string     `json:"explanation"`
	References    []string   `json:"references"`
}

// HasOption reports whether option is one of the record's choices (exact match).
func (q QuestionRecord) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Pools holds the three question tiers loaded for a session.
type Pools map[Difficulty][]QuestionRecord

// PresentedQuestion is a drawn question plus the user's answer once given.
type PresentedQuestion struct {
	QuestionRecord
	SourceIndex int     `json:"sourceIndex"`
	UserAnswer  *string `json:"userAnswer"`
	UserScore   *int    `json:"userScore"`
}

// Answered reports whether the question has received its single answer (or skip).
func (q PresentedQuestion) Answered() bool {
	return q.UserScore != nil
}

// AnsweredCorrectly compares the recorded answer to the correct one.
func (q PresentedQuestion) AnsweredCorrectly() bool {
	return q.UserAnswer != nil && *q.UserAnswer == q.CorrectAnswer
}

// DifficultyBreakdown counts presented questions per tier.
type DifficultyBreakdown struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// TagStat is the per-tag accuracy bucket.
type TagStat struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// SessionSummary is the aggregated record of a completed session.
type SessionSummary struct {
	Score               int                 `json:"score"`
	CorrectAnswers      int                 `json:"correctAnswers"`
	TotalQuestions      int                 `json:"totalQuestions"`
	DifficultyBreakdown DifficultyBreakdown `json:"difficultyBreakdown"`
	TagAnalysis         map[string]TagStat  `json:"tagAnalysis"`
	Questions           []PresentedQuestion `json:"questions"`
}

// HistoryRecord is a persisted SessionSummary owned by a user.
type HistoryRecord struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	Date   time.Time `json:"date"`
	SessionSummary
}

// Validate applies the checks the history store enforces on create.
func (r HistoryRecord) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidHistory)
	}
	if len(r.Questions) == 0 {
		return fmt.Errorf("%w: questions are required", ErrInvalidHistory)
	}
	return nil
}

// ListItem projects the record into its history-list form.
func (r HistoryRecord) ListItem() HistoryListItem {
	return HistoryListItem{
		ID:             r.ID,
		Score:          r.Score,
		CorrectAnswers: r.CorrectAnswers,
		TotalQuestions: r.TotalQuestions,
		Date:           r.Date,
	}
}

// HistoryListItem is the compact view used by the history list.
type HistoryListItem struct {
	ID             string    `json:"id"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	Date           time.Time `json:"date"`
}

// HistorySubmission is a client-reported quiz result saved without an engine session.
type HistorySubmission struct {
	Score          int                 `json:"score"`
	CorrectAnswers int                 `json:"correctAnswers"`
	TotalQuestions int                 `json:"totalQuestions"`
	Questions      []PresentedQuestion `json:"questions"`
}

// User is a registered identity-provider account.
type User struct {
	ID        string    `json:"id"`
	AuthID    string    `json:"authId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProfile carries the identity-provider claims sent on login.
type UserProfile struct {
	AuthID    string `json:"authId"`
	Name      string `json:"name"`
	GivenName string `json:"givenName"`
	Email     string `json:"email"`
	Picture   string `json:"picture"`
}
