// Package session owns the prompt store and the last generated sequence
// for one user, and routes every user action through the engine, the
// codec and the external collaborators.
//
// A Session is not safe for concurrent use. There is exactly one actor:
// the command (or UI event) currently running.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/permute/internal/clipboard"
	"github.com/roach88/permute/internal/permute"
	"github.com/roach88/permute/internal/prompt"
	"github.com/roach88/permute/internal/tabular"
)

var (
	// ErrUnknownEntry means no entry id matched a reference.
	ErrUnknownEntry = errors.New("unknown entry")
	// ErrAmbiguousEntry means a reference prefix matched several entries.
	ErrAmbiguousEntry = errors.New("ambiguous entry")
	// ErrNothingToCopy means no sequence has been generated yet.
	ErrNothingToCopy = errors.New("nothing to copy")
)

// Persister saves and restores session state. *store.Store implements it.
type Persister interface {
	LoadStore(ctx context.Context, key string, def func() prompt.Store) (prompt.Store, error)
	SaveStore(ctx context.Context, key string, st prompt.Store) error
	LoadSequence(ctx context.Context, key string) (permute.Sequence, error)
	SaveSequence(ctx context.Context, key string, seq permute.Sequence) error
}

// Options configures a session. Zero values pick sensible defaults.
type Options struct {
	// Key names the saved prompt list.
	Key string
	// Persister stores state between runs. Nil keeps everything in memory.
	Persister Persister
	// IDs assigns entry ids. Nil uses UUIDv7.
	IDs prompt.IDGenerator
	// Source drives Shuffle. Nil uses the process-wide generator.
	Source permute.Source
	// Clipboard receives copied prompts. Nil disables Copy.
	Clipboard clipboard.Writer
	// MaxCombinations caps Generate; 0 is unlimited.
	MaxCombinations uint64
	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Session is the controller owning one store and its last sequence.
type Session struct {
	opts  Options
	log   *slog.Logger
	store prompt.Store
	seq   permute.Sequence
}

func withDefaults(opts Options) Options {
	if opts.Key == "" {
		opts.Key = "prompts"
	}
	if opts.IDs == nil {
		opts.IDs = prompt.UUIDv7Generator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// New creates a session over an existing store. Nothing is loaded.
func New(st prompt.Store, opts Options) *Session {
	opts = withDefaults(opts)
	return &Session{
		opts:  opts,
		log:   opts.Logger.With("key", opts.Key),
		store: st.Clone(),
		seq:   permute.Sequence{},
	}
}

// Open creates a session from persisted state. When nothing is saved under
// the key, the starter collection is used (and saved).
func Open(ctx context.Context, opts Options) (*Session, error) {
	opts = withDefaults(opts)
	s := New(prompt.Store{}, opts)
	if opts.Persister == nil {
		s.store = prompt.DefaultStore(opts.IDs)
		return s, nil
	}

	st, err := opts.Persister.LoadStore(ctx, opts.Key, func() prompt.Store {
		return prompt.DefaultStore(opts.IDs)
	})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	seq, err := opts.Persister.LoadSequence(ctx, opts.Key)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	s.store, s.seq = st, seq
	s.log.Debug("session opened", "entries", st.Len(), "sequence", len(seq))
	return s, nil
}

// Store returns a copy of the current store.
func (s *Session) Store() prompt.Store {
	return s.store.Clone()
}

// Sequence returns a copy of the last generated sequence.
func (s *Session) Sequence() permute.Sequence {
	return s.seq.Clone()
}

// Count returns how many prompts Generate would produce.
func (s *Session) Count() (uint64, bool) {
	return permute.Count(&s.store)
}

// Resolve maps an id or unique id prefix to a full entry id.
func (s *Session) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrUnknownEntry)
	}
	if _, ok := s.store.Find(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, e := range s.store.Entries() {
		if strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownEntry, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d entries", ErrAmbiguousEntry, ref, len(matches))
	}
}

// saveStore persists the store. Failures are logged, never returned: the
// in-memory state is already correct and the next save retries.
func (s *Session) saveStore(ctx context.Context) {
	if s.opts.Persister == nil {
		return
	}
	if err := s.opts.Persister.SaveStore(ctx, s.opts.Key, s.store); err != nil {
		s.log.Error("failed to save prompt list", "error", err)
	}
}

func (s *Session) saveSequence(ctx context.Context) {
	if s.opts.Persister == nil {
		return
	}
	if err := s.opts.Persister.SaveSequence(ctx, s.opts.Key, s.seq); err != nil {
		s.log.Error("failed to save sequence", "error", err)
	}
}

// mutate runs fn and saves the store if fn reports a change.
func (s *Session) mutate(ctx context.Context, action string, fn func(*prompt.Store) bool) bool {
	if !fn(&s.store) {
		s.log.Debug("no-op", "action", action)
		return false
	}
	s.log.Debug("store updated", "action", action, "entries", s.store.Len())
	s.saveStore(ctx)
	return true
}

// AddEntry appends a new empty entry.
func (s *Session) AddEntry(ctx context.Context) prompt.Entry {
	var e prompt.Entry
	s.mutate(ctx, "add", func(st *prompt.Store) bool {
		e = st.Add(s.opts.IDs)
		return true
	})
	return e
}

// RemoveEntry deletes an entry.
func (s *Session) RemoveEntry(ctx context.Context, id string) bool {
	return s.mutate(ctx, "remove", func(st *prompt.Store) bool { return st.Remove(id) })
}

// RenameEntry sets an entry's name.
func (s *Session) RenameEntry(ctx context.Context, id, name string) bool {
	return s.mutate(ctx, "rename", func(st *prompt.Store) bool { return st.Rename(id, name) })
}

// SetVariant replaces one variant.
func (s *Session) SetVariant(ctx context.Context, id string, index int, text string) bool {
	return s.mutate(ctx, "set", func(st *prompt.Store) bool { return st.SetVariant(id, index, text) })
}

// AppendVariant adds a variant to an entry.
func (s *Session) AppendVariant(ctx context.Context, id, text string) bool {
	return s.mutate(ctx, "append", func(st *prompt.Store) bool { return st.AppendVariant(id, text) })
}

// RemoveVariant deletes one variant.
func (s *Session) RemoveVariant(ctx context.Context, id string, index int) bool {
	return s.mutate(ctx, "unset", func(st *prompt.Store) bool { return st.RemoveVariant(id, index) })
}

// MoveEntry relocates an entry. It is the only reordering entry point.
func (s *Session) MoveEntry(ctx context.Context, id string, target int) bool {
	return s.mutate(ctx, "move", func(st *prompt.Store) bool { return st.Move(id, target) })
}

// Generate replaces the current sequence with the store's cartesian
// product. On error the previous sequence is kept.
func (s *Session) Generate(ctx context.Context) (permute.Sequence, error) {
	seq, err := permute.GenerateContext(ctx, &s.store, s.opts.MaxCombinations)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	s.seq = seq
	s.log.Info("generated prompts", "count", len(seq))
	s.saveSequence(ctx)
	return s.seq.Clone(), nil
}

// Shuffle reorders the current sequence in place. It never regenerates;
// an empty sequence stays empty.
func (s *Session) Shuffle(ctx context.Context) permute.Sequence {
	permute.Shuffle(s.seq, s.opts.Source)
	if len(s.seq) > 1 {
		s.saveSequence(ctx)
	}
	return s.seq.Clone()
}

// Import replaces the whole store with the decoded table.
func (s *Session) Import(ctx context.Context, r io.Reader, layout tabular.Layout) error {
	st, err := tabular.Read(r, layout, s.opts.IDs)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.store = st
	s.log.Info("imported prompt list", "entries", st.Len(), "layout", layout.String())
	s.saveStore(ctx)
	return nil
}

// Export writes the store as a table.
func (s *Session) Export(w io.Writer, layout tabular.Layout) error {
	if err := tabular.Write(w, &s.store, layout); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// CanCopy reports whether Copy can succeed.
func (s *Session) CanCopy() bool {
	return s.opts.Clipboard != nil && s.opts.Clipboard.Available() && len(s.seq) > 0
}

// Copy puts the current sequence on the clipboard, one prompt per line.
func (s *Session) Copy() error {
	if s.opts.Clipboard == nil || !s.opts.Clipboard.Available() {
		return clipboard.ErrUnavailable
	}
	if len(s.seq) == 0 {
		return ErrNothingToCopy
	}
	if err := s.opts.Clipboard.Write(strings.Join(s.seq, "\n")); err != nil {
		s.log.Warn("copy failed", "error", err)
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}
