package selector

import (
	"math/rand/v2"

	"github.com/vocdoni/note-selector/util"
)

// RandomSource provides the random noise objective with numbers in [0, 1).
// *rand.Rand implements it. Implementations do not need to be safe for
// concurrent use: every selection uses its own source.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a ChaCha8 generator seeded from crypto/rand.
func NewRandomSource() RandomSource {
	return rand.New(rand.NewChaCha8(util.Random32()))
}

// NewSeededRandomSource returns a deterministic generator, for tests and
// reproducible runs.
func NewSeededRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed))
}
