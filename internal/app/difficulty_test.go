package app

import (
	"testing"

	"adaptive-quiz-service/internal/domain"
)

func TestNextDifficultyTable(t *testing.T) {
	cases := []struct {
		current domain.Difficulty
		correct bool
		want    domain.Difficulty
	}{
		{domain.DifficultyEasy, true, domain.DifficultyMedium},
		{domain.DifficultyEasy, false, domain.DifficultyEasy},
		{domain.DifficultyMedium, true, domain.DifficultyHard},
		{domain.DifficultyMedium, false, domain.DifficultyEasy},
		{domain.DifficultyHard, true, domain.DifficultyHard},
		{domain.DifficultyHard, false, domain.DifficultyMedium},
	}
	for _, tc := range cases {
		if got := NextDifficulty(tc.current, tc.correct); got != tc.want {
			t.Errorf("NextDifficulty(%s, %v) = %s, want %s", tc.current, tc.correct, got, tc.want)
		}
	}
}

func TestScoreWeight(t *testing.T) {
	want := map[domain.Difficulty]int{
		domain.DifficultyEasy:   2,
		domain.DifficultyMedium: 3,
		domain.DifficultyHard:   4,
	}
	for d, points := range want {
		if got := ScoreWeight(d); got != points {
			t.Errorf("ScoreWeight(%s) = %d, want %d", d, got, points)
		}
	}
}
