package prompt

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalize converts text to NFC so visually identical variants compare
// equal after editing on different platforms.
func normalize(s string) string {
	return norm.NFC.String(s)
}

// IsBlank reports whether s is empty or whitespace only.
// Blank variants never contribute to generation or decoding.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Usable returns the non-blank variants of vs in their stored order.
// The result never aliases vs.
func Usable(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if IsBlank(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
