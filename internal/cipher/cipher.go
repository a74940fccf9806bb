// Package cipher implements the Vigenère cipher over the 26-letter alphabet.
package cipher

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/model"
)

// Encode shifts each plain index forward by the repeating key. Indices
// outside [0, 26) are rejected.
func Encode(plain, key []int) ([]int, error) {
	if err := checkIndices(plain, key); err != nil {
		return nil, err
	}
	out := make([]int, len(plain))
	for i, p := range plain {
		out[i] = (p + key[i%len(key)]) % alphabet.Size
	}
	return out, nil
}

// Decode shifts each cipher index back by the repeating key.
func Decode(cipher, key []int) ([]int, error) {
	if err := checkIndices(cipher, key); err != nil {
		return nil, err
	}
	out := make([]int, len(cipher))
	DecodeInto(out, cipher, key)
	return out, nil
}

func checkIndices(text, key []int) error {
	if len(key) == 0 {
		return fmt.Errorf("empty key: %w", model.ErrInvalidInput)
	}
	for i, v := range key {
		if v < 0 || v >= alphabet.Size {
			return fmt.Errorf("key index %d at %d out of range: %w", v, i, model.ErrInvalidInput)
		}
	}
	for i, v := range text {
		if v < 0 || v >= alphabet.Size {
			return fmt.Errorf("text index %d at %d out of range: %w", v, i, model.ErrInvalidInput)
		}
	}
	return nil
}

// DecodeInto decodes cipher into dst without allocating. Unlike Decode it
// does not validate: the key must be non-empty, every index in [0, 26) and
// dst at least as long as cipher.
func DecodeInto(dst, cipher, key []int) {
	k := 0
	for i, c := range cipher {
		v := c - key[k]
		if v < 0 {
			v += alphabet.Size
		}
		dst[i] = v
		k++
		if k == len(key) {
			k = 0
		}
	}
}

// EncodeText encrypts raw text. Letters (after diacritic folding) are
// shifted and keep their case; every other character passes through and
// does not consume a key position.
func EncodeText(text, key string) (string, error) {
	return transformText(text, key, 1)
}

// DecodeText is the inverse of EncodeText.
func DecodeText(text, key string) (string, error) {
	return transformText(text, key, -1)
}

func transformText(text, key string, dir int) (string, error) {
	keyIdx, err := KeyIndices(key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, r := range text {
		folded, ok := alphabet.FoldRune(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		lower := unicode.IsLower(folded)
		idx, _ := alphabet.Index(unicode.ToUpper(folded))
		shifted := (idx + dir*keyIdx[pos%len(keyIdx)] + alphabet.Size) % alphabet.Size
		out := rune(alphabet.Letter(shifted))
		if lower {
			out = unicode.ToLower(out)
		}
		b.WriteRune(out)
		pos++
	}
	return b.String(), nil
}

// KeyIndices normalizes a key and converts it to shifts.
func KeyIndices(key string) ([]int, error) {
	norm := alphabet.Normalize(key)
	if norm == "" {
		return nil, fmt.Errorf("key %q has no letters: %w", key, model.ErrInvalidInput)
	}
	return alphabet.ToIndices(norm)
}
