package app

import (
	"encoding/json"

	"adaptive-quiz-service/internal/domain"
)

// BuildSummary aggregates a finished question list into its persisted form.
func BuildSummary(questions []domain.PresentedQuestion, score, correctAnswers int) domain.SessionSummary {
	summary := domain.SessionSummary{
		Score:          score,
		CorrectAnswers: correctAnswers,
		TotalQuestions: len(questions),
		TagAnalysis:    tagAnalysis(questions),
		Questions:      questions,
	}
	for _, q := range questions {
		switch q.Difficulty {
		case domain.DifficultyEasy:
			summary.DifficultyBreakdown.Easy++
		case domain.DifficultyMedium:
			summary.DifficultyBreakdown.Medium++
		case domain.DifficultyHard:
			summary.DifficultyBreakdown.Hard++
		}
	}
	return summary
}

// tagAnalysis counts each distinct tag of a question once.
func tagAnalysis(questions []domain.PresentedQuestion) map[string]domain.TagStat {
	analysis := make(map[string]domain.TagStat)
	for _, q := range questions {
		seen := make(map[string]struct{}, len(q.Tags))
		for _, tag := range q.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}

			stat := analysis[tag]
			stat.Total++
			if q.AnsweredCorrectly() {
				stat.Correct++
			}
			analysis[tag] = stat
		}
	}
	return analysis
}

// MarshalSummary encodes the summary; map keys are sorted so output is stable.
func MarshalSummary(summary domain.SessionSummary) ([]byte, error) {
	return json.Marshal(summary)
}
