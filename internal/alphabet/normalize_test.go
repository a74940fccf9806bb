package alphabet

import (
	"testing"
	"unicode"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Hola, mundo!", "HOLAMUNDO"},
		{"El niño comió piñas", "ELNINOCOMIOPINAS"},
		{"Ça déjà vu: über", "CADEJAVUUBER"},
		{"123 ¿? ---", ""},
		{"straße", "STRAE"},
		{"ıſ", "IS"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) == %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFoldRune(t *testing.T) {
	cases := []struct {
		in   rune
		want rune
		ok   bool
	}{
		{'a', 'a', true},
		{'Z', 'Z', true},
		{'ñ', 'n', true},
		{'Á', 'A', true},
		{' ', 0, false},
		{'7', 0, false},
		{'ß', 0, false},
		{'ı', 'i', true},
		{'ſ', 's', true},
		{'İ', 'I', true},
	}
	for _, c := range cases {
		got, ok := FoldRune(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("FoldRune(%q) == %q, %v, want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFoldRuneAgreesWithNormalize(t *testing.T) {
	for _, r := range "aZñÁıſİßø1 ¿Ωé" {
		folded, ok := FoldRune(r)
		norm := Normalize(string(r))
		if ok != (norm != "") {
			t.Fatalf("FoldRune(%q) ok=%v but Normalize gives %q", r, ok, norm)
		}
		if ok && string(unicode.ToUpper(folded)) != norm {
			t.Fatalf("FoldRune(%q) == %q, Normalize gives %q", r, folded, norm)
		}
	}
}
