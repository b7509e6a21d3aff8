package app

import "adaptive-quiz-service/internal/domain"

// NextDifficulty moves one tier up after a correct answer and one tier down
// after an incorrect one, staying put at the ends of the scale.
func NextDifficulty(current domain.Difficulty, wasCorrect bool) domain.Difficulty {
	if wasCorrect {
		switch current {
		case domain.DifficultyEasy:
			return domain.DifficultyMedium
		case domain.DifficultyMedium, domain.DifficultyHard:
			return domain.DifficultyHard
		}
		return domain.DifficultyEasy
	}
	switch current {
	case domain.DifficultyHard:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyEasy
	}
}

// ScoreWeight is the number of points a correct answer earns at difficulty d.
func ScoreWeight(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyEasy:
		return 2
	case domain.DifficultyMedium:
		return 3
	default:
		return 4
	}
}
