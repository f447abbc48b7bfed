package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the store as a JSON array of entries. HTML
// characters in prompt text are written as is.
func (s Store) MarshalJSON() ([]byte, error) {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a JSON array of entries. Entries without an id are
// rejected since ids drive every mutation.
func (s *Store) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d: missing id", i)
		}
	}
	*s = NewStore(entries...)
	return nil
}
