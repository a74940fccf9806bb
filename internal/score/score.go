// Package score measures how language-like a candidate plaintext is.
package score

import (
	"math"

	"github.com/verte-zerg/vigenere/internal/alphabet"
)

// ZeroFrequencyPenalty is added once for every letter that occurs in the
// text although the table expects it never to.
const ZeroFrequencyPenalty = 100.0

// Counts returns the occurrences of each letter in text.
func Counts(text []int) [alphabet.Size]int {
	var counts [alphabet.Size]int
	for _, v := range text {
		counts[v]++
	}
	return counts
}

// ChiSquared compares the letter histogram of text with the table. Lower is
// better; empty text scores +Inf.
func ChiSquared(text []int, table alphabet.Table) float64 {
	if len(text) == 0 {
		return math.Inf(1)
	}
	return chiSquaredCounts(Counts(text), len(text), table)
}

// ChiSquaredString scores normalized text. Characters outside the alphabet
// are ignored for the histogram but still count towards the length.
func ChiSquaredString(text string, table alphabet.Table) float64 {
	if len(text) == 0 {
		return math.Inf(1)
	}
	var counts [alphabet.Size]int
	for i := 0; i < len(text); i++ {
		if idx, ok := alphabet.Index(rune(text[i])); ok {
			counts[idx]++
		}
	}
	return chiSquaredCounts(counts, len(text), table)
}

func chiSquaredCounts(counts [alphabet.Size]int, length int, table alphabet.Table) float64 {
	n := float64(length)
	chi := 0.0
	for i, observed := range counts {
		expected := table[i] / 100 * n
		if expected > 0 {
			d := float64(observed) - expected
			chi += d * d / expected
		} else if observed > 0 {
			chi += ZeroFrequencyPenalty
		}
	}
	return chi
}
