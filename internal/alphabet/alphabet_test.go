package alphabet

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/vigenere/internal/model"
)

func TestIndexRoundTrip(t *testing.T) {
	for i := 0; i < Size; i++ {
		idx, ok := Index(rune(Letter(i)))
		if !ok || idx != i {
			t.Fatalf("expected %c to map back to %d, got %d (ok=%v)", Letter(i), i, idx, ok)
		}
	}
	if _, ok := Index('a'); ok {
		t.Fatalf("expected lowercase letter to be rejected")
	}
}

func TestTablesSumToHundred(t *testing.T) {
	for _, lang := range Langs() {
		table, err := Lookup(lang)
		if err != nil {
			t.Fatalf("lookup %s: %v", lang, err)
		}
		sum := 0.0
		for _, v := range table {
			sum += v
		}
		if math.Abs(sum-100) > 0.5 {
			t.Fatalf("expected %s table to sum to ~100, got %.2f", lang, sum)
		}
	}
}

func TestLookupUnknownLang(t *testing.T) {
	_, err := Lookup("xx")
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	table, err := Lookup("")
	if err != nil {
		t.Fatalf("expected default table, got %v", err)
	}
	if table != Spanish {
		t.Fatalf("expected default table to be spanish")
	}
}

func TestToIndicesRejectsForeignChars(t *testing.T) {
	idx, err := ToIndices("AZB")
	if err != nil {
		t.Fatalf("ToIndices failed: %v", err)
	}
	if idx[0] != 0 || idx[1] != 25 || idx[2] != 1 {
		t.Fatalf("unexpected indices: %v", idx)
	}
	if FromIndices(idx) != "AZB" {
		t.Fatalf("unexpected round trip: %q", FromIndices(idx))
	}
	if _, err := ToIndices("A B"); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for space, got %v", err)
	}
}
