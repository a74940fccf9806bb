package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/vigenere/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
// Infinite values are drawn as the highest level.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.IsInf(minVal, 1) || math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			b.WriteByte(sparkChars[len(sparkChars)-1])
			continue
		}
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ScoresByKeyLength orders candidate scores by key length.
func ScoresByKeyLength(candidates []model.Candidate) []float64 {
	sorted := make([]model.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Key) < len(sorted[j].Key) })
	out := make([]float64, len(sorted))
	for i, c := range sorted {
		out[i] = c.Score
	}
	return out
}

// FormatDuration renders seconds as seconds, minutes or hours.
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.4f s", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.2f min", seconds/60)
	default:
		return fmt.Sprintf("%.2f h", seconds/3600)
	}
}

// RenderProjection prints the keyspace size and estimated brute-force time
// for key lengths 1..maxLen at the given decode rate.
func RenderProjection(w io.Writer, opsPerSec float64, maxLen int) error {
	if opsPerSec <= 0 {
		_, err := fmt.Fprintln(w, "No throughput measured.")
		return err
	}
	headers := []string{"Length", "Keys", "Estimated"}
	rows := make([][]string, 0, maxLen)
	keys := 1.0
	for length := 1; length <= maxLen; length++ {
		keys *= 26
		rows = append(rows, []string{
			fmt.Sprintf("%d", length),
			fmt.Sprintf("%.0f", keys),
			FormatDuration(keys / opsPerSec),
		})
	}
	return writeLines(w, FormatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true}))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
