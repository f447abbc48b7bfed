package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/permute/internal/permute"
	"github.com/roach88/permute/internal/prompt"
)

// marshalDocument converts a value to JSON TEXT for storage.
// HTML escaping is disabled so prompt text containing < > & is stored
// verbatim and stays readable in the database.
func marshalDocument(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// marshalStore converts a prompt store to JSON TEXT.
func marshalStore(s prompt.Store) (string, error) {
	data, err := marshalDocument(s)
	if err != nil {
		return "", fmt.Errorf("marshal store: %w", err)
	}
	return data, nil
}

// unmarshalStore parses JSON TEXT to a prompt store.
func unmarshalStore(data string) (prompt.Store, error) {
	var s prompt.Store
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return prompt.Store{}, fmt.Errorf("unmarshal store: %w", err)
	}
	return s, nil
}

// marshalSequence converts a generated sequence to JSON TEXT.
// A nil sequence is stored as an empty array.
func marshalSequence(seq permute.Sequence) (string, error) {
	if seq == nil {
		seq = permute.Sequence{}
	}
	data, err := marshalDocument([]string(seq))
	if err != nil {
		return "", fmt.Errorf("marshal sequence: %w", err)
	}
	return data, nil
}

// unmarshalSequence parses JSON TEXT to a generated sequence.
func unmarshalSequence(data string) (permute.Sequence, error) {
	var seq []string
	if err := json.Unmarshal([]byte(data), &seq); err != nil {
		return nil, fmt.Errorf("unmarshal sequence: %w", err)
	}
	if seq == nil {
		seq = []string{}
	}
	return permute.Sequence(seq), nil
}
