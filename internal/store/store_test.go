package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/permute/internal/permute"
	"github.com/roach88/permute/internal/prompt"
	"github.com/roach88/permute/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func constant(st prompt.Store) func() prompt.Store {
	return func() prompt.Store { return st }
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		"documents",
	).Scan(&name)
	if err != nil {
		t.Errorf("documents table not found after idempotent opens: %v", err)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1", // NORMAL
		"busy_timeout": "5000",
		"user_version": "1",
	}
	for name, want := range checks {
		got, err := s.pragma(name)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("PRAGMA %s = %q, want %q", name, got, want)
		}
	}
}

func TestOpen_CreatesRecencyIndex(t *testing.T) {
	s := openTestStore(t)

	var table string
	err := s.db.QueryRow(
		"SELECT tbl_name FROM sqlite_master WHERE type='index' AND name=?",
		"idx_documents_kind_updated",
	).Scan(&table)
	if err != nil {
		t.Fatalf("recency index not found: %v", err)
	}
	if table != "documents" {
		t.Errorf("index is on %q, want documents", table)
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := Open(path); !errors.Is(err, ErrNewerSchema) {
		t.Errorf("Open() = %v, want ErrNewerSchema", err)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty store = %v, want nil", err)
	}
}

func TestLoadStore_MissingWritesDefault(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	def := testutil.BuildStore(testutil.V("subject", "man"))

	got, err := s.LoadStore(ctx, "prompts", constant(def))
	if err != nil {
		t.Fatalf("LoadStore() failed: %v", err)
	}
	if diff := cmp.Diff(def.Entries(), got.Entries()); diff != "" {
		t.Errorf("LoadStore() mismatch (-want +got):\n%s", diff)
	}

	var value string
	if err := s.db.QueryRow(`SELECT value FROM documents WHERE key = 'prompts' AND kind = 'store'`).Scan(&value); err != nil {
		t.Fatalf("default was not persisted: %v", err)
	}
	want := `[{"id":"v1","variableName":"subject","promptTexts":["man"]}]`
	if value != want {
		t.Errorf("stored value = %s, want %s", value, want)
	}
}

func TestLoadStore_DefaultOnlyBuiltWhenMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	calls := 0
	def := func() prompt.Store {
		calls++
		return testutil.BuildStore(testutil.V("a", "1"))
	}
	for i := 0; i < 3; i++ {
		if _, err := s.LoadStore(ctx, "k", def); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("default built %d times, want 1", calls)
	}
}

func TestSaveStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	st := testutil.BuildStore(
		testutil.V("subject", "large man", "", "<b>bold</b> & co"),
		testutil.V("", "x"),
	)

	if err := s.SaveStore(ctx, "k", st); err != nil {
		t.Fatalf("SaveStore() failed: %v", err)
	}
	got, err := s.LoadStore(ctx, "k", constant(prompt.Store{}))
	if err != nil {
		t.Fatalf("LoadStore() failed: %v", err)
	}
	if diff := cmp.Diff(st.Entries(), got.Entries()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	var value string
	if err := s.db.QueryRow(`SELECT value FROM documents WHERE key = 'k'`).Scan(&value); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(value, "<b>bold</b> & co") {
		t.Errorf("HTML was escaped in stored value: %s", value)
	}
}

func TestSaveStore_Overwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testutil.BuildStore(testutil.V("a", "1"))
	second := testutil.BuildStore(testutil.V("b", "2"), testutil.V("c", "3"))
	if err := s.SaveStore(ctx, "k", first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveStore(ctx, "k", second); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadStore(ctx, "k", constant(prompt.Store{}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 {
		t.Errorf("Len() = %d, want 2", got.Len())
	}
}

func TestLoadStore_CorruptFallsBackAndOverwrites(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", `{{{`},
		{"wrong shape", `{"id":"x"}`},
		{"missing id", `[{"variableName":"x","promptTexts":["a"]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			ctx := context.Background()

			_, err := s.db.Exec(`INSERT INTO documents (key, kind, value, updated_seq) VALUES ('k', 'store', ?, 1)`, tt.value)
			if err != nil {
				t.Fatal(err)
			}

			def := testutil.BuildStore(testutil.V("default", "d"))
			got, err := s.LoadStore(ctx, "k", constant(def))
			if err != nil {
				t.Fatalf("LoadStore() failed: %v", err)
			}
			if diff := cmp.Diff(def.Entries(), got.Entries()); diff != "" {
				t.Errorf("fallback mismatch (-want +got):\n%s", diff)
			}

			// Corrupt value must be replaced with the default.
			var value string
			if err := s.db.QueryRow(`SELECT value FROM documents WHERE key = 'k' AND kind = 'store'`).Scan(&value); err != nil {
				t.Fatal(err)
			}
			if value == tt.value {
				t.Error("corrupt value was not overwritten")
			}
			again, err := unmarshalStore(value)
			if err != nil {
				t.Fatalf("overwritten value does not decode: %v", err)
			}
			if again.Len() != 1 {
				t.Errorf("overwritten store Len() = %d, want 1", again.Len())
			}
		})
	}
}

func TestSequence_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.LoadSequence(ctx, "k")
	if err != nil {
		t.Fatalf("LoadSequence() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("LoadSequence() on empty db = %#v, want empty non-nil", got)
	}

	seq := permute.Sequence{"a, x", "a, y"}
	if err := s.SaveSequence(ctx, "k", seq); err != nil {
		t.Fatalf("SaveSequence() failed: %v", err)
	}
	got, err = s.LoadSequence(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(seq, got); diff != "" {
		t.Errorf("sequence mismatch (-want +got):\n%s", diff)
	}

	if err := s.SaveSequence(ctx, "k", nil); err != nil {
		t.Fatal(err)
	}
	got, err = s.LoadSequence(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("nil sequence loaded as %v", got)
	}
}

func TestLoadSequence_Corrupt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.db.Exec(`INSERT INTO documents (key, kind, value, updated_seq) VALUES ('k', 'sequence', 'nope', 1)`); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSequence(ctx, "k")
	if err != nil {
		t.Fatalf("LoadSequence() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LoadSequence() = %v, want empty", got)
	}

	var value string
	if err := s.db.QueryRow(`SELECT value FROM documents WHERE key = 'k' AND kind = 'sequence'`).Scan(&value); err != nil {
		t.Fatal(err)
	}
	if value != "[]" {
		t.Errorf("corrupt sequence reset to %q, want []", value)
	}
}

func TestKeys_MostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	st := testutil.BuildStore(testutil.V("a", "1"))

	for _, key := range []string{"alpha", "beta", "gamma"} {
		if err := s.SaveStore(ctx, key, st); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveStore(ctx, "alpha", st); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSequence(ctx, "delta", permute.Sequence{"x"}); err != nil {
		t.Fatal(err)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	want := []string{"alpha", "gamma", "beta"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveStore(ctx, "k", testutil.BuildStore(testutil.V("a", "1"))); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSequence(ctx, "k", permute.Sequence{"1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys() after delete = %v", keys)
	}

	if err := s.Delete(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
}
