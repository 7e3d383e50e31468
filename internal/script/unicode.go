package script

import "unicode"

// isUnicodePunctOrSymbol reports whether r belongs to a Unicode
// punctuation or symbol category.
func isUnicodePunctOrSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
