package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/vigenere/internal/model"
)

// RenderRanking prints up to limit candidates as a table. A limit of zero
// prints all of them; previewWidth caps the plaintext column.
func RenderRanking(w io.Writer, candidates []model.Candidate, limit, previewWidth int) error {
	if len(candidates) == 0 {
		_, err := fmt.Fprintln(w, "No candidates found.")
		return err
	}
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	headers := []string{"#", "Score", "Len", "Key", "Text"}
	rows := make([][]string, 0, limit)
	for i, c := range candidates[:limit] {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			FormatScore(c.Score),
			fmt.Sprintf("%d", len(c.Key)),
			c.Key,
			Preview(c.Text, previewWidth),
		})
	}
	return writeLines(w, FormatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true}))
}

// FormatScore renders a chi-squared score with two decimals.
func FormatScore(score float64) string {
	if math.IsInf(score, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", score)
}
