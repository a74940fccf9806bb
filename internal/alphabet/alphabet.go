// Package alphabet defines the 26-letter alphabet, reference letter
// frequencies and text normalization.
package alphabet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/vigenere/internal/model"
)

// Size is the number of letters in the alphabet.
const Size = 26

// Letters is the alphabet in index order.
const Letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Table holds the expected percentage of each letter, indexed like Letters.
type Table [Size]float64

// Spanish letter frequencies. Ñ has no slot of its own and is folded into N.
var Spanish = Table{
	12.53, 1.42, 4.68, 5.86, 13.68, 0.69, 1.01, 0.70, 6.25, 0.44, 0.02, 4.97, 3.15, // A-M
	6.71, 8.68, 2.51, 0.88, 6.87, 7.98, 4.63, 3.93, 0.90, 0.01, 0.22, 0.90, 0.52, // N-Z
}

// English letter frequencies.
var English = Table{
	8.167, 1.492, 2.782, 4.253, 12.702, 2.228, 2.015, 6.094, 6.966, 0.153, 0.772, 4.025, 2.406, // A-M
	6.749, 7.507, 1.929, 0.095, 5.987, 6.327, 9.056, 2.758, 0.978, 2.360, 0.150, 1.974, 0.074, // N-Z
}

// DefaultLang is the language code used when none is configured.
const DefaultLang = "es"

var tables = map[string]Table{
	"es": Spanish,
	"en": English,
}

// Lookup returns the frequency table for a language code.
func Lookup(lang string) (Table, error) {
	code := strings.ToLower(strings.TrimSpace(lang))
	if code == "" {
		code = DefaultLang
	}
	t, ok := tables[code]
	if !ok {
		return Table{}, fmt.Errorf("unknown language %q (available: %s): %w", lang, strings.Join(Langs(), ", "), model.ErrInvalidInput)
	}
	return t, nil
}

// Langs lists the language codes that have a built-in table.
func Langs() []string {
	out := make([]string, 0, len(tables))
	for code := range tables {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Index maps an uppercase letter to its position in the alphabet.
func Index(r rune) (int, bool) {
	if r < 'A' || r > 'Z' {
		return 0, false
	}
	return int(r - 'A'), true
}

// Letter maps an index in [0, Size) back to its letter.
func Letter(i int) byte {
	return Letters[i]
}

// ToIndices converts normalized text to letter indices.
func ToIndices(text string) ([]int, error) {
	out := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		idx, ok := Index(rune(text[i]))
		if !ok {
			return nil, fmt.Errorf("character %q at %d is not in the alphabet: %w", text[i], i, model.ErrInvalidInput)
		}
		out[i] = idx
	}
	return out, nil
}

// FromIndices converts letter indices to text.
func FromIndices(idx []int) string {
	b := make([]byte, len(idx))
	for i, v := range idx {
		b[i] = Letters[v]
	}
	return string(b)
}
