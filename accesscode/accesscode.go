// Package accesscode generates and checks the short codes students type to open an exam.
package accesscode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"exam-assembly-server/models"
)

// Alphabet holds the allowed characters: A-Z and 2-9 without the look-alikes O, 0, I and 1.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultLength is the length of generated codes when none is configured.
const DefaultLength = 6

var charsetPattern = regexp.MustCompile(`^[A-HJ-NP-Z2-9]+$`)

// Source picks an index in [0, n).
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("accesscode: reading random source: %v", err))
	}
	return int(v.Int64())
}

// Generator produces and validates codes of one fixed length.
type Generator struct {
	length int
	src    Source
}

// NewGenerator returns a generator for codes of the given length. A length below 1
// means DefaultLength; a nil source means crypto/rand.
func NewGenerator(length int, src Source) *Generator {
	if length < 1 {
		length = DefaultLength
	}
	if src == nil {
		src = cryptoSource{}
	}
	return &Generator{length: length, src: src}
}

// Length returns the code length this generator produces and expects.
func (g *Generator) Length() int {
	return g.length
}

// Generate draws every character independently and uniformly from Alphabet.
func (g *Generator) Generate() string {
	b := make([]byte, g.length)
	for i := range b {
		b[i] = Alphabet[g.src.Intn(len(Alphabet))]
	}
	return string(b)
}

// Validate checks the code's format only. Whether the code belongs to an exam is up to
// the exam store.
func (g *Generator) Validate(code string) models.AccessCodeValidation {
	switch {
	case code == "":
		return models.AccessCodeValidation{Message: "Access code is required"}
	case code != strings.ToUpper(code):
		return models.AccessCodeValidation{Message: "Access code must be uppercase"}
	case len(code) != g.length:
		return models.AccessCodeValidation{Message: fmt.Sprintf("Access code must be %d characters long", g.length)}
	case !charsetPattern.MatchString(code):
		return models.AccessCodeValidation{Message: "Access code contains invalid characters"}
	}
	return models.AccessCodeValidation{Valid: true, Message: "Access code is valid"}
}

var defaultGenerator = NewGenerator(DefaultLength, nil)

// Generate returns a new code of the given length using crypto/rand.
func Generate(length int) string {
	return NewGenerator(length, nil).Generate()
}

// Validate checks a code of DefaultLength.
func Validate(code string) models.AccessCodeValidation {
	return defaultGenerator.Validate(code)
}
