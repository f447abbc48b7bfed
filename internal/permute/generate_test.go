package permute

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/permute/internal/prompt"
	"github.com/roach88/permute/internal/testutil"
)

func TestGenerate_OdometerOrder(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("first", "a", "b"),
		testutil.V("second", "x", "y"),
	)

	got := Generate(&s)
	assert.Equal(t, Sequence{"a, x", "a, y", "b, x", "b, y"}, got)
}

func TestGenerate_ThreeFactors(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("a", "1", "2"),
		testutil.V("b", "x"),
		testutil.V("c", "p", "q", "r"),
	)

	got := Generate(&s)
	assert.Equal(t, Sequence{
		"1, x, p", "1, x, q", "1, x, r",
		"2, x, p", "2, x, q", "2, x, r",
	}, got)
}

func TestGenerate_CountIsProduct(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"single", []int{4}, 4},
		{"two", []int{2, 3}, 6},
		{"three", []int{3, 1, 5}, 15},
		{"default store shape", []int{4, 4, 4}, 64},
		{"zero factor", []int{3, 0, 2}, 0},
		{"empty store", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vars []testutil.Var
			for i, c := range tt.counts {
				vs := make([]string, c)
				for j := range vs {
					vs[j] = strings.Repeat("v", j+1)
				}
				vars = append(vars, testutil.V(strings.Repeat("n", i+1), vs...))
			}
			s := testutil.BuildStore(vars...)

			got := Generate(&s)
			assert.Len(t, got, tt.want)

			n, ok := Count(&s)
			assert.True(t, ok)
			assert.Equal(t, uint64(tt.want), n)
		})
	}
}

func TestGenerate_SkipsBlankVariants(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("subject", "", "man", "   ", "woman", "\t"),
		testutil.V("setting", "bar", ""),
	)

	got := Generate(&s)
	assert.Equal(t, Sequence{"man, bar", "woman, bar"}, got)
	for _, line := range got {
		assert.NotContains(t, line, ", ,")
		assert.False(t, strings.HasSuffix(line, ","))
		assert.False(t, strings.HasPrefix(line, ","))
	}
}

func TestGenerate_AllBlankEntryYieldsEmpty(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("subject", "man", "woman"),
		testutil.V("blank", "", " "),
	)

	got := Generate(&s)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerate_FreshEntryYieldsEmpty(t *testing.T) {
	s := testutil.BuildStore(testutil.V("subject", "man"))
	s.Add(prompt.NewSequentialGenerator("new"))

	assert.Empty(t, Generate(&s))
}

func TestGenerate_SingleEntryHasNoSeparator(t *testing.T) {
	s := testutil.BuildStore(testutil.V("only", "alpha", "beta"))
	assert.Equal(t, Sequence{"alpha", "beta"}, Generate(&s))
}

func TestGenerate_KeepsCommasInsideVariants(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("a", "red, blue"),
		testutil.V("b", "x,"),
	)
	assert.Equal(t, Sequence{"red, blue, x,"}, Generate(&s))
}

func TestGenerate_DuplicateNamesAreSeparateFactors(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("dup", "a", "b"),
		testutil.V("dup", "x"),
	)
	assert.Equal(t, Sequence{"a, x", "b, x"}, Generate(&s))
}

func TestGenerate_IndependentOfLaterMutation(t *testing.T) {
	s := testutil.BuildStore(testutil.V("a", "one", "two"))
	got := Generate(&s)

	require.True(t, s.SetVariant("v1", 0, "changed"))
	require.True(t, s.Remove("v1"))

	assert.Equal(t, Sequence{"one", "two"}, got)
}

func TestGenerate_Deterministic(t *testing.T) {
	s := prompt.DefaultStore(prompt.NewSequentialGenerator("seed"))
	assert.Equal(t, Generate(&s), Generate(&s))
}

func TestGenerate_DefaultStoreGolden(t *testing.T) {
	s := prompt.DefaultStore(prompt.NewSequentialGenerator("seed"))
	got := Generate(&s)
	require.Len(t, got, 64)

	testutil.AssertGolden(t, "default_store", []byte(strings.Join(got, "\n")+"\n"))
}

func TestGenerateContext_Limit(t *testing.T) {
	s := testutil.BuildStore(
		testutil.V("a", "1", "2", "3"),
		testutil.V("b", "1", "2", "3"),
	)

	_, err := GenerateContext(context.Background(), &s, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyCombinations))

	got, err := GenerateContext(context.Background(), &s, 9)
	require.NoError(t, err)
	assert.Len(t, got, 9)
}

func TestGenerateContext_Cancelled(t *testing.T) {
	s := testutil.BuildStore(testutil.V("a", "1", "2"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateContext(ctx, &s, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCount_Overflow(t *testing.T) {
	big := make([]string, 1<<16)
	for i := range big {
		big[i] = "v"
	}
	var vars []testutil.Var
	for i := 0; i < 5; i++ {
		vars = append(vars, testutil.V("x", big...))
	}
	s := testutil.BuildStore(vars...)

	_, ok := Count(&s)
	assert.False(t, ok)

	_, err := GenerateContext(context.Background(), &s, 0)
	assert.ErrorIs(t, err, ErrTooManyCombinations)
}

func TestGenerateContext_ProductBeyondInt(t *testing.T) {
	// 2^63 fits in a uint64 but not in an int.
	var vars []testutil.Var
	for i := 0; i < 63; i++ {
		vars = append(vars, testutil.V("bit", "0", "1"))
	}
	s := testutil.BuildStore(vars...)

	n, ok := Count(&s)
	require.True(t, ok)
	assert.Equal(t, uint64(1)<<63, n)

	_, err := GenerateContext(context.Background(), &s, 0)
	assert.ErrorIs(t, err, ErrTooManyCombinations)
	assert.Empty(t, Generate(&s))
}

func TestSequenceClone(t *testing.T) {
	seq := Sequence{"a", "b"}
	c := seq.Clone()
	c[0] = "z"
	assert.Equal(t, "a", seq[0])
	assert.Nil(t, Sequence(nil).Clone())
}
