package utils

import (
	"testing"

	"exam-assembly-server/models"
)

func TestIndexToLetter(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{-1, ""},
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		if got := IndexToLetter(tt.in); got != tt.want {
			t.Errorf("IndexToLetter(%d) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.in >= 0 {
			if back := LetterToIndex(tt.want); back != tt.in {
				t.Errorf("LetterToIndex(%q) = %d, want %d", tt.want, back, tt.in)
			}
		}
	}
}

func TestLetterToIndexRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "a", "A1", "-"} {
		if got := LetterToIndex(s); got != -1 {
			t.Errorf("LetterToIndex(%q) = %d, want -1", s, got)
		}
	}
}

func TestParseDistribution(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    models.DistributionSpec
		wantErr bool
	}{
		{name: "empty", in: "", want: models.DistributionSpec{}},
		{name: "full", in: "easy:4|medium:4|hard:2", want: models.DistributionSpec{"easy": 4, "medium": 4, "hard": 2}},
		{name: "spaces and case", in: " Easy : 1 | HARD:0", want: models.DistributionSpec{"easy": 1, "hard": 0}},
		{name: "missing colon", in: "easy4", wantErr: true},
		{name: "unknown level", in: "extreme:1", wantErr: true},
		{name: "negative", in: "easy:-1", wantErr: true},
		{name: "not a number", in: "easy:x", wantErr: true},
		{name: "duplicate", in: "easy:1|easy:2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDistribution(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDistribution() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseDistribution() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ParseDistribution()[%s] = %d, want %d", k, got[k], v)
				}
			}
		})
	}
}

func TestFormatDistributionCanonicalOrder(t *testing.T) {
	got := FormatDistribution(models.DistributionSpec{"hard": 2, "easy": 4, "medium": 3})
	if got != "easy:4|medium:3|hard:2" {
		t.Fatalf("FormatDistribution() = %q", got)
	}
}
