// Package tabular converts a prompt store to and from comma-separated text.
//
// # Layouts
//
// Encode writes one row per entry: the name followed by its variants.
// Decode reads one entry per header column: the header field is the name
// and the values below it, row by row, are the variants. The two are
// transposes of each other, so Decode(Encode(s)) is not s. Files made by
// the browser version of the tool rely on both conventions.
//
// Callers wanting a lossless round trip pick one Layout for both
// directions with EncodeLayout and DecodeLayout.
//
// # Quoting
//
// Decoding honors double quotes: commas inside a quoted span do not split
// the field. Quote characters are then removed from every field and the
// field is trimmed. Encoding never quotes, so names or variants that
// contain commas do not survive a round trip.
package tabular
