package prompt

import "slices"

// Entry is one named variable list.
//
// JSON field names match the documents the browser version keeps in
// localStorage, so such a value loads unchanged.
type Entry struct {
	ID       string   `json:"id"`
	Name     string   `json:"variableName"`
	Variants []string `json:"promptTexts"`
}

// clone returns a deep copy of e.
func (e Entry) clone() Entry {
	e.Variants = slices.Clone(e.Variants)
	if e.Variants == nil {
		e.Variants = []string{}
	}
	return e
}

// Lookup is the result of Find: the entry's position and a copy of it.
// Modifying Lookup.Entry does not affect the store.
type Lookup struct {
	Index int
	Entry Entry
}

// Store is the ordered collection of entries.
// The zero value is an empty store ready for use.
type Store struct {
	entries []Entry
}

// NewStore builds a store from entries. The entries are copied and their
// text normalized.
func NewStore(entries ...Entry) Store {
	s := Store{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		e = e.clone()
		e.Name = normalize(e.Name)
		for i, v := range e.Variants {
			e.Variants[i] = normalize(v)
		}
		s.entries = append(s.entries, e)
	}
	return s
}

// Len returns the number of entries.
func (s Store) Len() int {
	return len(s.entries)
}

// Entries returns a deep copy of the entries in store order.
func (s Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Clone returns an independent copy of the store.
func (s Store) Clone() Store {
	return Store{entries: s.Entries()}
}

// Find locates an entry by id.
func (s Store) Find(id string) (Lookup, bool) {
	i := s.index(id)
	if i < 0 {
		return Lookup{Index: -1}, false
	}
	return Lookup{Index: i, Entry: s.entries[i].clone()}, true
}

func (s Store) index(id string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// Add appends a new entry with an empty name and a single empty variant
// slot, and returns a copy of it.
func (s *Store) Add(gen IDGenerator) Entry {
	e := Entry{ID: gen.Generate(), Name: "", Variants: []string{""}}
	next := s.Entries()
	s.entries = append(next, e)
	return e.clone()
}

// Remove deletes the entry with the given id.
func (s *Store) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	next := s.Entries()
	s.entries = slices.Delete(next, i, i+1)
	return true
}

// Rename sets an entry's name. Empty and duplicate names are allowed.
func (s *Store) Rename(id, name string) bool {
	return s.update(id, func(e *Entry) bool {
		e.Name = normalize(name)
		return true
	})
}

// SetVariant replaces the variant at index.
// Returns false if the id is unknown or index is out of range.
func (s *Store) SetVariant(id string, index int, text string) bool {
	return s.update(id, func(e *Entry) bool {
		if index < 0 || index >= len(e.Variants) {
			return false
		}
		e.Variants[index] = normalize(text)
		return true
	})
}

// AppendVariant adds a variant to the end of an entry's list.
func (s *Store) AppendVariant(id, text string) bool {
	return s.update(id, func(e *Entry) bool {
		e.Variants = append(e.Variants, normalize(text))
		return true
	})
}

// RemoveVariant deletes the variant at index.
// An entry may be left with no variants; it then contributes zero
// combinations.
func (s *Store) RemoveVariant(id string, index int) bool {
	return s.update(id, func(e *Entry) bool {
		if index < 0 || index >= len(e.Variants) {
			return false
		}
		e.Variants = slices.Delete(e.Variants, index, index+1)
		return true
	})
}

// Move relocates an entry to target, keeping the relative order of every
// other entry. The target is clamped to [0, Len()-1].
func (s *Store) Move(id string, target int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	target = max(0, min(target, len(s.entries)-1))
	if target == i {
		return true
	}
	next := s.Entries()
	e := next[i]
	next = slices.Delete(next, i, i+1)
	s.entries = slices.Insert(next, target, e)
	return true
}

// update applies fn to a copy of the entry and commits it only if fn
// reports success.
func (s *Store) update(id string, fn func(*Entry) bool) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	e := s.entries[i].clone()
	if !fn(&e) {
		return false
	}
	next := s.Entries()
	next[i] = e
	s.entries = next
	return true
}

// DefaultStore returns the starter collection shown on first launch.
func DefaultStore(gen IDGenerator) Store {
	return NewStore(
		Entry{
			ID:       gen.Generate(),
			Name:     "subject",
			Variants: []string{"large man", "large woman", "small man", "small woman"},
		},
		Entry{
			ID:       gen.Generate(),
			Name:     "setting",
			Variants: []string{"in a bar", "in a sauna", "at an airport", "at a park"},
		},
		Entry{
			ID:       gen.Generate(),
			Name:     "action",
			Variants: []string{"drinking", "running", "flying", "eating"},
		},
	)
}
