package exam

import (
	"testing"

	"exam-assembly-server/models"
)

func TestValidateQuestion(t *testing.T) {
	valid := mcQuestion("q1", models.DifficultyEasy, "Math", 1, 4)

	noCorrect := mcQuestion("q2", models.DifficultyEasy, "Math", -1, 4)
	twoCorrect := mcQuestion("q3", models.DifficultyEasy, "Math", 0, 4)
	twoCorrect.Alternatives[2].IsCorrect = true
	oneAlt := mcQuestion("q4", models.DifficultyEasy, "Math", 0, 1)
	badLevel := mcQuestion("q5", "impossible", "Math", 0, 4)
	emptyAlt := mcQuestion("q6", models.DifficultyHard, "Math", 0, 3)
	emptyAlt.Alternatives[1].Text = " "
	essayWithAlts := mcQuestion("q7", models.DifficultyHard, "Math", 0, 3)
	essayWithAlts.Type = models.QuestionTypeEssay
	tfThree := mcQuestion("q8", models.DifficultyHard, "Math", 0, 3)
	tfThree.Type = models.QuestionTypeTrueFalse

	tests := []struct {
		name    string
		q       models.Question
		wantErr bool
	}{
		{name: "valid multiple choice", q: valid},
		{name: "valid essay", q: models.Question{ID: "e", Difficulty: "hard", Type: models.QuestionTypeEssay, Prompt: "Discuss"}},
		{name: "missing id", q: models.Question{Difficulty: "easy", Type: models.QuestionTypeEssay, Prompt: "x"}, wantErr: true},
		{name: "missing prompt", q: models.Question{ID: "p", Difficulty: "easy", Type: models.QuestionTypeEssay}, wantErr: true},
		{name: "unknown type", q: models.Question{ID: "t", Difficulty: "easy", Type: "matching", Prompt: "x"}, wantErr: true},
		{name: "no correct alternative", q: noCorrect, wantErr: true},
		{name: "two correct alternatives", q: twoCorrect, wantErr: true},
		{name: "single alternative", q: oneAlt, wantErr: true},
		{name: "unknown difficulty", q: badLevel, wantErr: true},
		{name: "empty alternative", q: emptyAlt, wantErr: true},
		{name: "essay with alternatives", q: essayWithAlts, wantErr: true},
		{name: "true/false with three alternatives", q: tfThree, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateQuestion(tt.q); (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuestion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePool(t *testing.T) {
	good := buildPool("Math", 2, 1, 0)
	bad := mcQuestion("bad", models.DifficultyEasy, "Math", -1, 4)
	pool := append(append([]models.Question{}, good...), bad, good[0])

	valid, problems := ValidatePool(pool)
	if len(valid) != 3 {
		t.Fatalf("expected 3 valid questions, got %d", len(valid))
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", problems)
	}
}
