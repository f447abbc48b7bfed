package permute

import "math/rand/v2"

// Source draws uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSeededSource returns a deterministic source for reproducible shuffles.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle reorders seq in place so every ordering is equally likely and
// returns it. A nil src uses the process-wide generator.
func Shuffle(seq Sequence, src Source) Sequence {
	if src == nil {
		src = globalSource{}
	}
	for i := len(seq) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		seq[i], seq[j] = seq[j], seq[i]
	}
	return seq
}
