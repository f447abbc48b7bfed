package testutil

import "sync"

// ScriptedSource replays a fixed list of draws for shuffle tests.
//
// Each IntN call returns the next scripted value. Values must already lie
// in [0, n); IntN panics otherwise so a misconfigured test fails loudly.
// When the script is exhausted IntN returns n-1, which leaves the element
// in place.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedSource struct {
	mu    sync.Mutex
	draws []int
	idx   int
	calls []int
}

// NewScriptedSource creates a source that returns draws in order.
func NewScriptedSource(draws ...int) *ScriptedSource {
	return &ScriptedSource{draws: draws}
}

// IntN returns the next scripted draw.
func (s *ScriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, n)
	if s.idx >= len(s.draws) {
		return n - 1
	}
	v := s.draws[s.idx]
	s.idx++
	if v < 0 || v >= n {
		panic("ScriptedSource: draw out of range")
	}
	return v
}

// Calls returns the n passed to each IntN call so far.
func (s *ScriptedSource) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.calls...)
}

// Reset rewinds the script and clears recorded calls.
func (s *ScriptedSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = 0
	s.calls = nil
}
