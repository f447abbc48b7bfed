package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/permute/internal/permute"
	"github.com/roach88/permute/internal/prompt"
)

const (
	kindStore    = "store"
	kindSequence = "sequence"
)

// ErrNotFound is returned by Delete when no document exists for the key.
var ErrNotFound = errors.New("document not found")

// LoadStore returns the prompt store saved under key.
//
// If nothing is saved, def is called and its result written and returned.
// A corrupt saved document is overwritten the same way.
func (s *Store) LoadStore(ctx context.Context, key string, def func() prompt.Store) (prompt.Store, error) {
	data, found, err := s.readDocument(ctx, key, kindStore)
	if err != nil {
		return prompt.Store{}, fmt.Errorf("load store %q: %w", key, err)
	}
	if found {
		st, decodeErr := unmarshalStore(data)
		if decodeErr == nil {
			return st, nil
		}
		slog.Warn("stored prompt list is corrupt, restoring default",
			"key", key,
			"error", decodeErr,
		)
	}
	st := def()
	if err := s.SaveStore(ctx, key, st); err != nil {
		return prompt.Store{}, fmt.Errorf("load store %q: %w", key, err)
	}
	return st, nil
}

// SaveStore writes the prompt store under key, replacing any previous one.
func (s *Store) SaveStore(ctx context.Context, key string, st prompt.Store) error {
	data, err := marshalStore(st)
	if err != nil {
		return fmt.Errorf("save store %q: %w", key, err)
	}
	if err := s.writeDocument(ctx, key, kindStore, data); err != nil {
		return fmt.Errorf("save store %q: %w", key, err)
	}
	return nil
}

// LoadSequence returns the last generated sequence saved under key.
// A missing or corrupt document yields an empty sequence; a corrupt one is
// also reset so it stops being reported.
func (s *Store) LoadSequence(ctx context.Context, key string) (permute.Sequence, error) {
	data, found, err := s.readDocument(ctx, key, kindSequence)
	if err != nil {
		return nil, fmt.Errorf("load sequence %q: %w", key, err)
	}
	if !found {
		return permute.Sequence{}, nil
	}
	seq, decodeErr := unmarshalSequence(data)
	if decodeErr == nil {
		return seq, nil
	}
	slog.Warn("stored sequence is corrupt, clearing it",
		"key", key,
		"error", decodeErr,
	)
	if err := s.SaveSequence(ctx, key, permute.Sequence{}); err != nil {
		return nil, fmt.Errorf("load sequence %q: %w", key, err)
	}
	return permute.Sequence{}, nil
}

// SaveSequence writes the generated sequence under key.
func (s *Store) SaveSequence(ctx context.Context, key string, seq permute.Sequence) error {
	data, err := marshalSequence(seq)
	if err != nil {
		return fmt.Errorf("save sequence %q: %w", key, err)
	}
	if err := s.writeDocument(ctx, key, kindSequence, data); err != nil {
		return fmt.Errorf("save sequence %q: %w", key, err)
	}
	return nil
}

// Keys returns every key with a saved prompt store, most recently written
// first.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM documents
		WHERE kind = ?
		ORDER BY updated_seq DESC, key COLLATE BINARY ASC
	`, kindStore)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// Delete removes the store and sequence saved under key.
// Returns ErrNotFound if neither existed.
func (s *Store) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: rows affected: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", key, ErrNotFound)
	}
	return nil
}

func (s *Store) readDocument(ctx context.Context, key, kind string) (data string, found bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT value FROM documents
		WHERE key = ? AND kind = ?
	`, key, kind).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read document: %w", err)
	}
	return data, true, nil
}

// writeDocument upserts a document and bumps its logical sequence number.
func (s *Store) writeDocument(ctx context.Context, key, kind, data string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, kind, value, updated_seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(updated_seq), 0) + 1 FROM documents))
		ON CONFLICT(key, kind) DO UPDATE SET
			value = excluded.value,
			updated_seq = excluded.updated_seq
	`, key, kind, data)
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
