package generator

import (
	"strings"
	"testing"

	"github.com/verte-zerg/vigenere/internal/alphabet"
)

func TestProportionalLengthAndShares(t *testing.T) {
	text := Proportional(alphabet.Spanish, 1000)
	if len(text) != 1000 {
		t.Fatalf("expected 1000 letters, got %d", len(text))
	}
	if got := strings.Count(text, "E"); got < 135 || got > 138 {
		t.Fatalf("expected ~137 E, got %d", got)
	}
	if got := strings.Count(text, "W"); got != 0 {
		t.Fatalf("expected no W in 1000 letters, got %d", got)
	}
}

func TestKeyIsDeterministicWithSeed(t *testing.T) {
	a := NewWithSeed(42).Key(8)
	b := NewWithSeed(42).Key(8)
	if a != b || len(a) != 8 {
		t.Fatalf("expected equal 8-letter keys, got %q and %q", a, b)
	}
	if alphabet.Normalize(a) != a {
		t.Fatalf("expected key of alphabet letters, got %q", a)
	}
}

func TestSampleUsesTableLetters(t *testing.T) {
	var table alphabet.Table
	table[2] = 50
	table[3] = 50
	text := NewWithSeed(1).Sample(table, 200)
	if len(text) != 200 {
		t.Fatalf("expected 200 letters, got %d", len(text))
	}
	if strings.Trim(text, "CD") != "" {
		t.Fatalf("expected only C and D, got %q", text)
	}
}
