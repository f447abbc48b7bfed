package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedSource_ReplaysDraws(t *testing.T) {
	s := NewScriptedSource(2, 0)
	assert.Equal(t, 2, s.IntN(3))
	assert.Equal(t, 0, s.IntN(2))
	assert.Equal(t, 4, s.IntN(5), "exhausted script returns n-1")
	assert.Equal(t, []int{3, 2, 5}, s.Calls())
}

func TestScriptedSource_Reset(t *testing.T) {
	s := NewScriptedSource(1)
	s.IntN(2)
	s.Reset()
	assert.Empty(t, s.Calls())
	assert.Equal(t, 1, s.IntN(2))
}

func TestScriptedSource_PanicsOutOfRange(t *testing.T) {
	s := NewScriptedSource(7)
	assert.Panics(t, func() { s.IntN(3) })
}
