package exam

import (
	"errors"
	"fmt"
	"strings"

	"exam-assembly-server/models"
)

var (
	errMissingID     = errors.New("question id is required")
	errMissingPrompt = errors.New("question prompt is required")
)

// ValidateQuestion checks a question record before it is admitted to the pool.
// Choice questions need at least two alternatives and exactly one flagged correct.
func ValidateQuestion(q models.Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return errMissingID
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return errMissingPrompt
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	if !q.Type.HasAlternatives() {
		if len(q.Alternatives) > 0 {
			return fmt.Errorf("question %s: %s questions must not have alternatives", q.ID, q.Type)
		}
		return nil
	}
	if len(q.Alternatives) < 2 {
		return fmt.Errorf("question %s: needs at least 2 alternatives, has %d", q.ID, len(q.Alternatives))
	}
	if q.Type == models.QuestionTypeTrueFalse && len(q.Alternatives) != 2 {
		return fmt.Errorf("question %s: true/false questions have exactly 2 alternatives, has %d", q.ID, len(q.Alternatives))
	}
	for i, alt := range q.Alternatives {
		if strings.TrimSpace(alt.Text) == "" {
			return fmt.Errorf("question %s: alternative %d is empty", q.ID, i+1)
		}
	}
	if n := q.CorrectCount(); n != 1 {
		return fmt.Errorf("question %s: exactly one alternative must be correct, found %d", q.ID, n)
	}
	return nil
}

// ValidatePool splits qs into the questions that pass ValidateQuestion and a problem
// message per rejected one. Repeated ids after the first are rejected too.
func ValidatePool(qs []models.Question) ([]models.Question, []string) {
	valid := make([]models.Question, 0, len(qs))
	var problems []string
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if err := ValidateQuestion(q); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if seen[q.ID] {
			problems = append(problems, fmt.Sprintf("question %s: duplicate id", q.ID))
			continue
		}
		seen[q.ID] = true
		valid = append(valid, q)
	}
	return valid, problems
}
