package permute

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/permute/internal/testutil"
)

func TestShuffle_ScriptedSwaps(t *testing.T) {
	src := testutil.NewScriptedSource(0, 1, 0)
	seq := Sequence{"a", "b", "c", "d"}

	got := Shuffle(seq, src)

	// i=3 j=0: d b c a; i=2 j=1: d c b a; i=1 j=0: c d b a
	assert.Equal(t, Sequence{"c", "d", "b", "a"}, got)
	assert.Equal(t, []int{4, 3, 2}, src.Calls(), "draws must be uniform over [0, i]")
}

func TestShuffle_InPlace(t *testing.T) {
	seq := Sequence{"a", "b", "c"}
	got := Shuffle(seq, testutil.NewScriptedSource(0, 0))
	assert.Equal(t, &seq[0], &got[0])
}

func TestShuffle_EmptyAndSingle(t *testing.T) {
	src := testutil.NewScriptedSource()
	assert.Empty(t, Shuffle(Sequence{}, src))
	assert.Nil(t, Shuffle(nil, src))
	assert.Equal(t, Sequence{"only"}, Shuffle(Sequence{"only"}, src))
	assert.Empty(t, src.Calls())
}

func TestShuffle_PreservesMultiset(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("a", "1", "2", "3", "1"),
		testutil.V("b", "x", "y"),
	)
	seq := Generate(&s)
	want := slices.Clone(seq)
	slices.Sort(want)

	for seed := uint64(0); seed < 20; seed++ {
		got := Shuffle(seq.Clone(), NewSeededSource(seed))
		require.Len(t, got, len(want))
		sorted := slices.Clone(got)
		slices.Sort(sorted)
		assert.Equal(t, want, sorted)
	}
}

func TestShuffle_GlobalSource(t *testing.T) {
	seq := Sequence{"a", "b", "c", "d", "e"}
	got := Shuffle(seq.Clone(), nil)
	slices.Sort(got)
	assert.Equal(t, seq, got)
}

func TestShuffle_ApproximatelyUniform(t *testing.T) {
	const trials = 60000
	src := NewSeededSource(42)
	counts := map[string]int{}

	for i := 0; i < trials; i++ {
		seq := Shuffle(Sequence{"a", "b", "c"}, src)
		counts[strings.Join(seq, "")]++
	}

	require.Len(t, counts, 6, "every ordering of three elements must occur")
	expected := trials / 6
	for order, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)*0.05, "ordering %s", order)
	}
}

func TestShuffle_SeededIsReproducible(t *testing.T) {
	base := Sequence{"a", "b", "c", "d", "e", "f"}
	first := Shuffle(base.Clone(), NewSeededSource(7))
	second := Shuffle(base.Clone(), NewSeededSource(7))
	assert.Equal(t, first, second)
}
