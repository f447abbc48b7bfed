package permute

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/roach88/permute/internal/prompt"
)

// Separator joins the chosen variants of one combination.
const Separator = ", "

// checkEvery is how many combinations GenerateContext emits between
// cancellation checks.
const checkEvery = 1024

// ErrTooManyCombinations is returned by GenerateContext when the product
// exceeds the caller's limit.
var ErrTooManyCombinations = errors.New("too many combinations")

// Sequence is an ordered list of generated prompts.
type Sequence []string

// Clone returns an independent copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// factors returns the usable variants of each entry in store order.
func factors(store *prompt.Store) [][]string {
	entries := store.Entries()
	out := make([][]string, len(entries))
	for i, e := range entries {
		out[i] = prompt.Usable(e.Variants)
	}
	return out
}

// Count returns the number of combinations Generate would produce.
// ok is false if the product does not fit in a uint64.
func Count(store *prompt.Store) (n uint64, ok bool) {
	return product(factors(store))
}

func product(fs [][]string) (uint64, bool) {
	if len(fs) == 0 {
		return 0, true
	}
	n := uint64(1)
	for _, f := range fs {
		if len(f) == 0 {
			return 0, true
		}
		hi, lo := bits.Mul64(n, uint64(len(f)))
		if hi != 0 {
			return math.MaxUint64, false
		}
		n = lo
	}
	return n, true
}

// Generate returns every combination of one usable variant per entry.
//
// The result is empty when the store is empty or any entry has no usable
// variants. It shares no memory with the store.
func Generate(store *prompt.Store) Sequence {
	seq, _ := GenerateContext(context.Background(), store, 0)
	return seq
}

// GenerateContext is Generate with a size limit and cancellation.
// A limit of 0 means unlimited. Cancellation is checked periodically
// during enumeration and returns ctx.Err().
func GenerateContext(ctx context.Context, store *prompt.Store, limit uint64) (Sequence, error) {
	fs := factors(store)
	n, ok := product(fs)
	if !ok {
		return nil, fmt.Errorf("%w: product overflows", ErrTooManyCombinations)
	}
	if limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyCombinations, n, limit)
	}
	if n == 0 {
		return Sequence{}, nil
	}
	if n > math.MaxInt {
		return nil, fmt.Errorf("%w: %d does not fit in memory", ErrTooManyCombinations, n)
	}

	out := make(Sequence, 0, int(n))
	odometer := make([]int, len(fs))
	parts := make([]string, len(fs))
	for {
		if len(out)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i, f := range fs {
			parts[i] = f[odometer[i]]
		}
		out = append(out, strings.Join(parts, Separator))

		// Advance the rightmost wheel; carry leftwards.
		i := len(fs) - 1
		for ; i >= 0; i-- {
			odometer[i]++
			if odometer[i] < len(fs[i]) {
				break
			}
			odometer[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}
