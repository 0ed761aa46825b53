package exam

import (
	"crypto/sha256"
	"math/rand"
	"time"

	"exam-assembly-server/utils"
)

// Rand is the randomness the engine draws from. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a source seeded with *seed, or a time-seeded one when seed is nil.
// A fixed seed reproduces selections and variants exactly.
func NewRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SeedFromString derives a deterministic seed from s.
func SeedFromString(s string) int64 {
	sum := sha256.Sum256([]byte(s))
	return utils.BytesToInt(sum[:])
}

func orDefault(r Rand) Rand {
	if r == nil {
		return NewRand(nil)
	}
	return r
}
