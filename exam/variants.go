package exam

import (
	"fmt"

	"exam-assembly-server/models"
	"exam-assembly-server/utils"
)

// GenerateVariants produces variantCount independent presentations of base.
// Each variant works on its own deep copy, so reordering one never touches another
// variant or base. A nil source falls back to a time-seeded one.
func GenerateVariants(base []models.Question, variantCount int, shuffleQuestions, shuffleAlternatives bool, r Rand) []models.Variant {
	if variantCount < 1 {
		return []models.Variant{}
	}
	r = orDefault(r)

	variants := make([]models.Variant, 0, variantCount)
	for i := 0; i < variantCount; i++ {
		code := utils.IndexToLetter(i)
		questions, key := scramble(base, shuffleQuestions, shuffleAlternatives, r)
		variants = append(variants, models.Variant{
			Label:     "Variant " + code,
			Code:      code,
			Questions: questions,
			AnswerKey: key,
		})
	}
	return variants
}

// scramble clones base, applies the requested permutations and derives the answer key
// from the final order. It is the only producer of answer keys for new variants.
func scramble(base []models.Question, shuffleQuestions, shuffleAlternatives bool, r Rand) ([]models.Question, models.AnswerKey) {
	questions := models.CloneQuestions(base)

	if shuffleQuestions {
		r.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}
	if shuffleAlternatives {
		for i := range questions {
			if !questions[i].IsMultipleChoice() {
				continue
			}
			alts := questions[i].Alternatives
			r.Shuffle(len(alts), func(a, b int) {
				alts[a], alts[b] = alts[b], alts[a]
			})
		}
	}

	return questions, AnswerKeyFor(questions)
}

// AnswerKeyFor maps each 1-based position of a choice question to the letter of its
// correct alternative as presented. Open questions have no entry; a choice question
// with no correct alternative maps to "".
func AnswerKeyFor(questions []models.Question) models.AnswerKey {
	key := make(models.AnswerKey, len(questions))
	for i, q := range questions {
		if !q.Type.HasAlternatives() {
			continue
		}
		key[i+1] = utils.IndexToLetter(q.CorrectIndex())
	}
	return key
}

// VerifyAnswerKey decodes every entry of v's answer key back to an alternative and
// checks it is the one flagged correct.
func VerifyAnswerKey(v models.Variant) error {
	for i, q := range v.Questions {
		pos := i + 1
		letter, ok := v.AnswerKey[pos]
		if !q.Type.HasAlternatives() {
			if ok {
				return fmt.Errorf("%s: position %d is not a choice question but has key %q", v.Label, pos, letter)
			}
			continue
		}
		if !ok {
			return fmt.Errorf("%s: position %d has no answer key entry", v.Label, pos)
		}
		idx := utils.LetterToIndex(letter)
		if idx < 0 || idx >= len(q.Alternatives) {
			return fmt.Errorf("%s: position %d key %q is out of range", v.Label, pos, letter)
		}
		if !q.Alternatives[idx].IsCorrect {
			return fmt.Errorf("%s: position %d key %q points to an incorrect alternative", v.Label, pos, letter)
		}
	}
	if len(v.AnswerKey) > len(v.Questions) {
		return fmt.Errorf("%s: answer key has %d entries for %d questions", v.Label, len(v.AnswerKey), len(v.Questions))
	}
	return nil
}
