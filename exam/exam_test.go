package exam

import (
	"fmt"
	"strings"

	"exam-assembly-server/models"
)

// reverseRand reverses whatever it is asked to shuffle, which makes permutations easy
// to predict in assertions.
type reverseRand struct{}

func (reverseRand) Intn(n int) int { return 0 }

func (reverseRand) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func mcQuestion(id string, level models.Difficulty, discipline string, correct, alternatives int) models.Question {
	q := models.Question{
		ID:         id,
		Discipline: discipline,
		Difficulty: level,
		Type:       models.QuestionTypeMultipleChoice,
		Prompt:     "Prompt " + id,
	}
	for i := 0; i < alternatives; i++ {
		q.Alternatives = append(q.Alternatives, models.Alternative{
			Text:      fmt.Sprintf("%s-alt-%d", id, i),
			IsCorrect: i == correct,
		})
	}
	return q
}

// buildPool returns easy/medium/hard multiple choice questions for one discipline.
func buildPool(discipline string, easy, medium, hard int) []models.Question {
	var pool []models.Question
	add := func(level models.Difficulty, n int) {
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("%s-%s-%d", strings.ToLower(discipline), level, i)
			pool = append(pool, mcQuestion(id, level, discipline, i%4, 4))
		}
	}
	add(models.DifficultyEasy, easy)
	add(models.DifficultyMedium, medium)
	add(models.DifficultyHard, hard)
	return pool
}

func seedPtr(v int64) *int64 { return &v }
