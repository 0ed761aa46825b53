package utils

import (
	"fmt"
	"strconv"
	"strings"

	"exam-assembly-server/models"
)

// StringPtr returns a pointer to a string, or nil if empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ContainsString checks if a string slice contains a specific string.
func ContainsString(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// ParseDistribution parses a pipe-separated string of "level:count" into a distribution,
// e.g. "easy:4|medium:4|hard:2".
func ParseDistribution(s string) (models.DistributionSpec, error) {
	spec := make(models.DistributionSpec)
	if strings.TrimSpace(s) == "" {
		return spec, nil
	}
	for _, pair := range strings.Split(s, "|") {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid distribution format: %s. Expected 'level:count'", pair)
		}
		level, err := models.ParseDifficulty(parts[0])
		if err != nil {
			return nil, err
		}
		countStr := strings.TrimSpace(parts[1])
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("invalid count for difficulty '%s': %s", level, countStr)
		}
		if count < 0 {
			return nil, fmt.Errorf("count for difficulty '%s' must not be negative", level)
		}
		if _, dup := spec[level]; dup {
			return nil, fmt.Errorf("difficulty '%s' listed twice", level)
		}
		spec[level] = count
	}
	return spec, nil
}

// FormatDistribution is the inverse of ParseDistribution, in canonical difficulty order.
func FormatDistribution(spec models.DistributionSpec) string {
	parts := make([]string, 0, len(spec))
	for _, level := range models.Difficulties {
		if n, ok := spec[level]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", level, n))
		}
	}
	return strings.Join(parts, "|")
}

// IndexToLetter converts a 0-based index to spreadsheet-style letters: 0→A, 25→Z, 26→AA.
func IndexToLetter(i int) string {
	if i < 0 {
		return ""
	}
	var b []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// LetterToIndex is the inverse of IndexToLetter. It returns -1 for anything that is not
// an uppercase letter sequence.
func LetterToIndex(s string) int {
	if s == "" {
		return -1
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A') + 1
	}
	return n - 1
}

// BytesToInt converts a byte slice (e.g., from SHA256 sum) to an int64.
// Used for generating a deterministic seed from a hash.
func BytesToInt(b []byte) int64 {
	var i int64
	for idx, val := range b {
		if idx >= 8 {
			break
		}
		i = (i << 8) | int64(val)
	}
	return i
}
