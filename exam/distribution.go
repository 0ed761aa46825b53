package exam

import (
	"fmt"
	"sort"

	"exam-assembly-server/models"
)

// IsDistributionValid reports whether the required counts add up to the exam's total.
func IsDistributionValid(spec models.DistributionSpec, totalQuestions int) bool {
	return spec.Total() == totalQuestions
}

// ValidateDistribution lists every specification error of spec. An empty result means
// automatic selection may proceed.
func ValidateDistribution(spec models.DistributionSpec, totalQuestions int) []string {
	var errs []string
	for _, level := range sortedLevels(spec) {
		if !level.Valid() {
			errs = append(errs, fmt.Sprintf("Unknown difficulty level %q in distribution", level))
			continue
		}
		if spec[level] < 0 {
			errs = append(errs, fmt.Sprintf("Required count for %s questions must not be negative (got %d)", level, spec[level]))
		}
	}
	if !IsDistributionValid(spec, totalQuestions) {
		errs = append(errs, fmt.Sprintf("Distribution total (%d) does not match the exam's total question count (%d)", spec.Total(), totalQuestions))
	}
	return errs
}

// Analyze projects spec against the filtered pool and the current selection.
// It is a pure function; entries follow the canonical difficulty order and only
// levels present in spec are reported.
func Analyze(pool []models.Question, filter models.PoolFilter, spec models.DistributionSpec, currentSelection []models.Question) []models.DistributionAnalysis {
	available := make(map[models.Difficulty]int)
	seen := make(map[string]bool, len(pool))
	for _, q := range pool {
		if !filter.Matches(q) || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		available[q.Difficulty]++
	}

	selected := make(map[models.Difficulty]int)
	for _, q := range currentSelection {
		selected[q.Difficulty]++
	}

	analysis := make([]models.DistributionAnalysis, 0, len(spec))
	for _, level := range sortedLevels(spec) {
		required := spec[level]
		a := models.DistributionAnalysis{
			Difficulty: level,
			Required:   required,
			Available:  available[level],
			Selected:   selected[level],
		}
		a.Shortage = max(0, required-a.Available)
		a.CanFulfill = required <= 0 || a.Available >= required
		analysis = append(analysis, a)
	}
	return analysis
}

// sortedLevels returns the keys of spec, known levels in canonical order first and
// unknown ones after them alphabetically.
func sortedLevels(spec models.DistributionSpec) []models.Difficulty {
	levels := make([]models.Difficulty, 0, len(spec))
	for _, level := range models.Difficulties {
		if _, ok := spec[level]; ok {
			levels = append(levels, level)
		}
	}
	var unknown []models.Difficulty
	for level := range spec {
		if !level.Valid() {
			unknown = append(unknown, level)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(levels, unknown...)
}
