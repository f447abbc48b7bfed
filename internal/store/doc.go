// Package store provides SQLite-backed persistence for prompt stores and
// their last generated sequence.
//
// Each saved value is a JSON document addressed by (key, kind). The kind
// is either "store" (the entry collection) or "sequence" (the last
// generated prompts, so a later shuffle reorders them instead of
// regenerating).
//
// # Recovery
//
// Loading never fails because of stored content. A missing document is
// written with the caller's default (built only then) and the default is returned. A
// document that does not decode is logged, overwritten with the default,
// and the default is returned. Only database errors reach the caller.
//
// # Ordering
//
// Every write stamps updated_seq from a logical counter (MAX+1), never a
// timestamp, so listings are deterministic.
//
// # Versioning
//
// The schema version lives in PRAGMA user_version. Open refuses a file
// stamped with a newer version than it knows (ErrNewerSchema).
package store
