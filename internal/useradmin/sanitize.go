package useradmin

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeName strips zero-width characters, normalizes to NFC and trims
// surrounding whitespace. Stored display names must not carry invisible or
// decomposed code points that allow two visually identical names to differ.
// The function is idempotent.
func SanitizeName(s string) string {
	s = strings.Map(dropZeroWidth, s)
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

// U+200B..U+200D and U+FEFF (zero-width space/non-joiner/joiner and BOM).
func dropZeroWidth(r rune) rune {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return -1
	}
	return r
}
