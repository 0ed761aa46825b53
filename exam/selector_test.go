package exam

import (
	"reflect"
	"strings"
	"testing"

	"exam-assembly-server/models"
)

func TestSelectFailsOnShortage(t *testing.T) {
	pool := buildPool("Math", 5, 3, 1)
	spec := models.DistributionSpec{"easy": 2, "medium": 2, "hard": 2}

	res := SelectQuestions(pool, models.PoolFilter{}, spec, 6, NewRand(seedPtr(1)))

	if res.Success {
		t.Fatalf("expected failure")
	}
	if len(res.Questions) != 0 {
		t.Fatalf("expected no questions on failure, got %d", len(res.Questions))
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "hard") || !strings.Contains(res.Errors[0], "shortage of 1") {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	want := []models.Shortage{{Difficulty: "hard", Required: 2, Available: 1, Missing: 1}}
	if !reflect.DeepEqual(res.Shortages, want) {
		t.Fatalf("Shortages = %+v, want %+v", res.Shortages, want)
	}
}

func TestSelectReportsEveryShortBucket(t *testing.T) {
	pool := buildPool("Math", 1, 5, 0)
	spec := models.DistributionSpec{"easy": 2, "medium": 2, "hard": 1}

	res := SelectQuestions(pool, models.PoolFilter{}, spec, 5, NewRand(seedPtr(1)))
	if res.Success || len(res.Shortages) != 2 {
		t.Fatalf("expected two shortages, got %+v", res)
	}
	if res.Shortages[0].Difficulty != "easy" || res.Shortages[1].Difficulty != "hard" {
		t.Fatalf("unexpected shortage order %+v", res.Shortages)
	}
}

func TestSelectRejectsInvalidDistribution(t *testing.T) {
	pool := buildPool("Math", 10, 10, 10)
	res := SelectQuestions(pool, models.PoolFilter{}, models.DistributionSpec{"easy": 2, "hard": 2}, 5, NewRand(seedPtr(1)))
	if res.Success {
		t.Fatalf("expected failure")
	}
	if len(res.Questions) != 0 || len(res.Shortages) != 0 {
		t.Fatalf("a specification error must not select anything: %+v", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "does not match") {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
}

func TestSelectNoDuplicatesAndExactCounts(t *testing.T) {
	pool := buildPool("Math", 6, 5, 4)
	// the same record listed twice must still be drawn at most once
	pool = append(pool, pool[0], pool[7])
	spec := models.DistributionSpec{"easy": 6, "medium": 3, "hard": 2}

	for seed := int64(0); seed < 50; seed++ {
		res := SelectQuestions(pool, models.PoolFilter{}, spec, 11, NewRand(seedPtr(seed)))
		if !res.Success {
			t.Fatalf("seed %d: unexpected failure %v", seed, res.Errors)
		}
		seen := make(map[string]bool)
		counts := make(map[models.Difficulty]int)
		for _, q := range res.Questions {
			if seen[q.ID] {
				t.Fatalf("seed %d: duplicate id %s", seed, q.ID)
			}
			seen[q.ID] = true
			counts[q.Difficulty]++
		}
		for level, want := range spec {
			if counts[level] != want {
				t.Fatalf("seed %d: %s count = %d, want %d", seed, level, counts[level], want)
			}
		}
	}
}

func TestSelectRespectsFilter(t *testing.T) {
	pool := append(buildPool("Math", 3, 0, 0), buildPool("History", 10, 0, 0)...)
	res := SelectQuestions(pool, models.PoolFilter{Discipline: "Math"}, models.DistributionSpec{"easy": 3}, 3, NewRand(seedPtr(4)))
	if !res.Success {
		t.Fatalf("unexpected failure %v", res.Errors)
	}
	for _, q := range res.Questions {
		if q.Discipline != "Math" {
			t.Fatalf("selected question from %s", q.Discipline)
		}
	}

	res = SelectQuestions(pool, models.PoolFilter{Discipline: "Math"}, models.DistributionSpec{"easy": 4}, 4, NewRand(seedPtr(4)))
	if res.Success {
		t.Fatalf("expected the filter to cause a shortage")
	}
}

func TestSelectWarnsOnThinMargin(t *testing.T) {
	pool := buildPool("Math", 4, 6, 0)
	res := SelectQuestions(pool, models.PoolFilter{}, models.DistributionSpec{"easy": 3, "medium": 4}, 7, NewRand(seedPtr(2)))
	if !res.Success {
		t.Fatalf("unexpected failure %v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "easy") {
		t.Fatalf("expected one warning for easy, got %v", res.Warnings)
	}
}

func TestSelectIsReproducibleWithSeed(t *testing.T) {
	pool := buildPool("Math", 20, 20, 20)
	spec := models.DistributionSpec{"easy": 5, "medium": 5, "hard": 5}

	a := SelectQuestions(pool, models.PoolFilter{}, spec, 15, NewRand(seedPtr(99)))
	b := SelectQuestions(pool, models.PoolFilter{}, spec, 15, NewRand(seedPtr(99)))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different selections")
	}
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	pool := buildPool("Math", 5, 5, 5)
	snapshot := models.CloneQuestions(pool)

	res := SelectQuestions(pool, models.PoolFilter{}, models.DistributionSpec{"easy": 5, "medium": 5, "hard": 5}, 15, NewRand(seedPtr(3)))
	if !res.Success {
		t.Fatalf("unexpected failure %v", res.Errors)
	}
	res.Questions[0].Alternatives[0].Text = "changed"
	if !reflect.DeepEqual(pool, snapshot) {
		t.Fatalf("pool was modified by selection")
	}
}

func TestSelectZeroBucketDrawsNothing(t *testing.T) {
	pool := buildPool("Math", 3, 0, 0)
	res := SelectQuestions(pool, models.PoolFilter{}, models.DistributionSpec{"easy": 2, "hard": 0}, 2, NewRand(seedPtr(5)))
	if !res.Success || len(res.Questions) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestValidateManualSelection(t *testing.T) {
	pool := buildPool("Math", 3, 0, 0)
	tests := []struct {
		name     string
		selected []models.Question
		total    int
		wantErrs int
	}{
		{name: "exact", selected: pool, total: 3},
		{name: "too few", selected: pool[:2], total: 3, wantErrs: 1},
		{name: "duplicate", selected: []models.Question{pool[0], pool[0], pool[1]}, total: 3, wantErrs: 1},
		{name: "duplicate and short", selected: []models.Question{pool[0], pool[0]}, total: 3, wantErrs: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errs := ValidateManualSelection(tt.selected, tt.total); len(errs) != tt.wantErrs {
				t.Errorf("ValidateManualSelection() = %v, want %d errors", errs, tt.wantErrs)
			}
		})
	}
}
