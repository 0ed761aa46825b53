package exam

import (
	"fmt"

	"exam-assembly-server/models"
)

// DefaultThinMarginRatio is the candidates-to-required ratio under which a bucket is
// flagged with a warning.
const DefaultThinMarginRatio = 1.5

// Selector draws an exam's questions from the pool according to a distribution.
type Selector struct {
	rng             Rand
	thinMarginRatio float64
}

// NewSelector builds a selector. A nil source falls back to a time-seeded one and a
// non-positive ratio to DefaultThinMarginRatio.
func NewSelector(r Rand, thinMarginRatio float64) *Selector {
	if thinMarginRatio <= 0 {
		thinMarginRatio = DefaultThinMarginRatio
	}
	return &Selector{rng: orDefault(r), thinMarginRatio: thinMarginRatio}
}

// SelectQuestions runs one automatic selection with the default thin-margin ratio.
func SelectQuestions(pool []models.Question, filter models.PoolFilter, spec models.DistributionSpec, totalQuestions int, r Rand) models.SelectionResult {
	return NewSelector(r, DefaultThinMarginRatio).Select(pool, filter, spec, totalQuestions)
}

// Select draws spec[level] questions per difficulty bucket, without replacement across
// the whole exam. Any shortage fails the call and no question is returned.
func (s *Selector) Select(pool []models.Question, filter models.PoolFilter, spec models.DistributionSpec, totalQuestions int) models.SelectionResult {
	result := models.SelectionResult{
		Questions: []models.Question{},
		Warnings:  []string{},
		Errors:    []string{},
	}

	if errs := ValidateDistribution(spec, totalQuestions); len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		return result
	}

	byLevel := make(map[models.Difficulty][]models.Question)
	for _, q := range pool {
		if filter.Matches(q) {
			byLevel[q.Difficulty] = append(byLevel[q.Difficulty], q)
		}
	}

	used := make(map[string]bool)
	drawn := make([]models.Question, 0, totalQuestions)
	for _, level := range sortedLevels(spec) {
		required := spec[level]
		if required == 0 {
			continue
		}

		candidates := make([]models.Question, 0, len(byLevel[level]))
		seen := make(map[string]bool)
		for _, q := range byLevel[level] {
			// a duplicated id in the pool counts once
			if used[q.ID] || seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			candidates = append(candidates, q)
		}

		if len(candidates) < required {
			short := models.Shortage{
				Difficulty: level,
				Required:   required,
				Available:  len(candidates),
				Missing:    required - len(candidates),
			}
			result.Shortages = append(result.Shortages, short)
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Not enough %s questions: required %d, available %d (shortage of %d)",
				level, short.Required, short.Available, short.Missing))
			continue
		}

		if float64(len(candidates)) < s.thinMarginRatio*float64(required) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Low margin for %s questions: %d available for %d required",
				level, len(candidates), required))
		}

		s.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, q := range candidates[:required] {
			used[q.ID] = true
			drawn = append(drawn, q.Clone())
		}
	}

	if len(result.Shortages) > 0 {
		return result
	}

	result.Success = true
	result.Questions = drawn
	return result
}

// ValidateManualSelection checks a hand-picked selection: the count must equal the
// exam total and no question may appear twice. Per-difficulty quotas are not checked.
func ValidateManualSelection(selected []models.Question, totalQuestions int) []string {
	var errs []string
	if len(selected) != totalQuestions {
		errs = append(errs, fmt.Sprintf("Selected %d questions but the exam requires %d", len(selected), totalQuestions))
	}
	seen := make(map[string]bool, len(selected))
	for _, q := range selected {
		if seen[q.ID] {
			errs = append(errs, fmt.Sprintf("Question %s is selected more than once", q.ID))
			continue
		}
		seen[q.ID] = true
	}
	return errs
}
