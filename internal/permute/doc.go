// Package permute turns a prompt store into its cartesian product and
// reorders generated sequences.
//
// Generation walks the entries like an odometer: the first entry varies
// slowest, the last entry fastest, and each entry's variants are visited
// in stored order. Blank variants are dropped before enumeration, so an
// entry left with nothing usable makes the whole product empty.
//
// Shuffle is an unbiased Fisher-Yates pass over an existing sequence. It
// never regenerates.
package permute
