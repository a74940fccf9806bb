package alphabet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, drops everything that is not an alphabet
// letter and uppercases the rest. Ñ becomes N, É becomes E.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	folded := fold(raw)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldRune folds a single rune to its base alphabet letter, keeping case.
// It accepts exactly the runes Normalize keeps, so ı folds to i and ſ to s.
// It reports false when the rune has no alphabet letter.
func FoldRune(r rune) (rune, bool) {
	f := r
	if r >= 0x80 {
		folded := []rune(fold(string(r)))
		if len(folded) != 1 {
			return 0, false
		}
		f = folded[0]
	}
	up := unicode.ToUpper(f)
	if up < 'A' || up > 'Z' {
		return 0, false
	}
	if unicode.IsLower(r) {
		return unicode.ToLower(up), true
	}
	return up, true
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
