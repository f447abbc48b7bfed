package testutil

import (
	"fmt"

	"github.com/roach88/permute/internal/prompt"
)

// Var is a name and its variants for building test stores.
type Var struct {
	Name     string
	Variants []string
}

// V is shorthand for a Var literal.
func V(name string, variants ...string) Var {
	return Var{Name: name, Variants: variants}
}

// BuildStore creates a store with ids "v1", "v2", ... in argument order.
func BuildStore(vars ...Var) prompt.Store {
	entries := make([]prompt.Entry, len(vars))
	for i, v := range vars {
		variants := v.Variants
		if variants == nil {
			variants = []string{}
		}
		entries[i] = prompt.Entry{
			ID:       fmt.Sprintf("v%d", i+1),
			Name:     v.Name,
			Variants: variants,
		}
	}
	return prompt.NewStore(entries...)
}

// Shape returns the name and variants of every entry, dropping ids, so
// stores decoded with fresh ids can be compared. Entries without variants
// report nil, matching V(name).
func Shape(s prompt.Store) []Var {
	entries := s.Entries()
	out := make([]Var, len(entries))
	for i, e := range entries {
		var variants []string
		if len(e.Variants) > 0 {
			variants = e.Variants
		}
		out[i] = Var{Name: e.Name, Variants: variants}
	}
	return out
}
