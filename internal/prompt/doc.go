// Package prompt holds the variable list store that the permutation engine
// and the tabular codec operate on.
//
// A Store is an ordered collection of entries. Each entry is one
// combinatorial factor: a name plus an ordered list of text variants.
//
// # Ordering
//
// Insertion order is significant. It defines iteration order for
// generation and row/column order for the tabular codec. Order changes
// only through Add, Remove and Move; it is never derived from names.
//
// # Mutation
//
// Every mutating method builds a new entry slice and swaps it in when the
// operation succeeds, so a call either applies completely or leaves the
// store untouched. Methods addressed by an unknown id return false and do
// nothing.
//
// All text written through the store is normalized to Unicode NFC.
package prompt
