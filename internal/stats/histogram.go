package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/vigenere/internal/alphabet"
)

const (
	barScale            = 1.5
	barFull             = '█'
	barMarker           = '|'
	histogramRule       = '▒'
	histogramPrefix     = 28
	terminalWidthBackup = 80
)

// LetterShare is the observed and expected percentage of one letter.
type LetterShare struct {
	Letter   byte
	Real     float64
	Expected float64
}

// LetterShares computes per-letter percentages of normalized text.
func LetterShares(text string, table alphabet.Table) []LetterShare {
	var counts [alphabet.Size]int
	total := 0
	for i := 0; i < len(text); i++ {
		if idx, ok := alphabet.Index(rune(text[i])); ok {
			counts[idx]++
			total++
		}
	}
	out := make([]LetterShare, alphabet.Size)
	for i := range out {
		observed := 0.0
		if total > 0 {
			observed = float64(counts[i]) / float64(total) * 100
		}
		out[i] = LetterShare{Letter: alphabet.Letter(i), Real: observed, Expected: table[i]}
	}
	return out
}

// RenderHistogram prints a letter histogram of text against the table. The
// text is normalized first. A width of zero uses the terminal width.
func RenderHistogram(w io.Writer, text string, table alphabet.Table, width int) error {
	norm := alphabet.Normalize(text)
	if norm == "" {
		_, err := fmt.Fprintln(w, "No letters to chart.")
		return err
	}
	if width <= 0 {
		width = terminalWidth()
	}
	shares := LetterShares(norm, table)
	scale := histogramScale(shares, width)
	ruleWidth := min(60, width)
	rule := strings.Repeat(string(histogramRule), ruleWidth)

	lines := []string{
		rule,
		fmt.Sprintf(" LETTER FREQUENCIES (total: %d letters)", len(norm)),
		rule,
		fmt.Sprintf("%-6s | %-7s | %-7s | %s", "LETTER", "REAL", "MODEL", "CHART (█=text, |=model)"),
		strings.Repeat("-", ruleWidth),
	}
	for _, s := range shares {
		lines = append(lines, fmt.Sprintf("  %c    | %6.2f%% | %6.2f%% | %s", s.Letter, s.Real, s.Expected, histogramBar(s.Real, s.Expected, scale)))
	}
	lines = append(lines, strings.Repeat("-", ruleWidth))
	return writeLines(w, lines)
}

// histogramBar draws the observed share as a solid bar and marks the
// expected share with a pipe.
func histogramBar(observed, expected, scale float64) string {
	barLen := int(observed * scale)
	marker := int(expected * scale)
	bar := []rune(strings.Repeat(string(barFull), barLen))
	switch {
	case marker > barLen:
		bar = append(bar, []rune(strings.Repeat(" ", marker-barLen-1))...)
		bar = append(bar, barMarker)
	case marker < barLen:
		bar[marker] = barMarker
	}
	return string(bar)
}

func histogramScale(shares []LetterShare, width int) float64 {
	maxPct := 0.0
	for _, s := range shares {
		maxPct = max(maxPct, s.Real, s.Expected)
	}
	avail := float64(width - histogramPrefix)
	if maxPct <= 0 || avail <= 0 {
		return barScale
	}
	return min(barScale, avail/maxPct)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
