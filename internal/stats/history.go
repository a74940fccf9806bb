package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/vigenere/internal/model"
)

// RenderHistory prints recorded runs, newest first as given.
func RenderHistory(w io.Writer, runs []model.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	headers := []string{"ID", "Ended", "Mode", "Lang", "Max", "Workers", "Letters", "Time", "Best key", "Score"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.RunID),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Mode,
			r.Lang,
			fmt.Sprintf("%d", r.MaxLen),
			fmt.Sprintf("%d", r.Workers),
			fmt.Sprintf("%d", r.TextLen),
			(time.Duration(r.DurationMs) * time.Millisecond).String(),
			r.BestKey,
			FormatScore(r.BestScore),
		})
	}
	right := map[int]bool{0: true, 4: true, 5: true, 6: true, 7: true, 9: true}
	return writeLines(w, FormatTable(headers, rows, right))
}
