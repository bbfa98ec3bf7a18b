// Package analyze holds the deterministic question-understanding layer:
// text normalization, signal extraction and question classification. Every
// function is pure; pattern tables are fixed at build time so tests can
// enumerate them.
package analyze

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize produces the canonical matching form of a string: Unicode
// decomposition, combining-mark removal, lowercase. Idempotent, so
// "Événement" and "evenement" normalize to the same value.
func Normalize(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
