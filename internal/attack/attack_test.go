package attack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/cipher"
	"github.com/verte-zerg/vigenere/internal/model"
)

func loadSample(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "quijote.txt"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	text := alphabet.Normalize(string(raw))
	if len(text) < 2000 {
		t.Fatalf("expected at least 2000 letters in sample, got %d", len(text))
	}
	return text
}

func encrypt(t *testing.T, plain, key string) string {
	t.Helper()
	ct, err := cipher.EncodeText(plain, key)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return ct
}

func TestStatisticalRecoversKey(t *testing.T) {
	plain := loadSample(t)
	ct := encrypt(t, plain, "LUNA")

	for _, workers := range []int{1, 3} {
		a := New(WithWorkers(workers))
		got, err := a.Statistical(context.Background(), ct, 12)
		if err != nil {
			t.Fatalf("Statistical failed: %v", err)
		}
		if len(got) != 12 {
			t.Fatalf("expected one candidate per length, got %d", len(got))
		}
		if got[0].Key != "LUNA" {
			t.Fatalf("workers=%d: expected LUNA ranked first, got %q (score %.2f)", workers, got[0].Key, got[0].Score)
		}
		if got[0].Text != plain {
			t.Fatalf("workers=%d: decoded text does not match sample", workers)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Score < got[i-1].Score {
				t.Fatalf("candidates not sorted at %d", i)
			}
		}
	}
}

func TestStatisticalLength(t *testing.T) {
	plain := loadSample(t)
	a := New()
	got, err := a.StatisticalLength(encrypt(t, plain, "LUNA"), 4)
	if err != nil {
		t.Fatalf("StatisticalLength failed: %v", err)
	}
	if got.Key != "LUNA" || got.Text != plain {
		t.Fatalf("expected LUNA, got %q", got.Key)
	}
	if _, err := a.StatisticalLength("Hola!", 5); !errors.Is(err, model.ErrInfeasibleLength) {
		t.Fatalf("expected ErrInfeasibleLength, got %v", err)
	}
	if _, err := a.StatisticalLength("Hola!", 0); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStatisticalOmitsInfeasibleLengths(t *testing.T) {
	a := New(WithWorkers(2))
	got, err := a.Statistical(context.Background(), "Hola!", 8)
	if err != nil {
		t.Fatalf("Statistical failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected candidates for lengths 1..4, got %d", len(got))
	}
	for _, c := range got {
		if len(c.Key) > 4 {
			t.Fatalf("unexpected candidate for length %d", len(c.Key))
		}
	}
}

func TestBreakLengthInfeasible(t *testing.T) {
	if _, ok := BreakLength([]int{1, 2, 3}, 4, alphabet.Spanish); ok {
		t.Fatalf("expected no candidate when length exceeds text")
	}
	if _, ok := BreakLength([]int{1, 2, 3}, 0, alphabet.Spanish); ok {
		t.Fatalf("expected no candidate for zero length")
	}
}

func TestAttacksRejectInvalidInput(t *testing.T) {
	a := New()
	ctx := context.Background()
	cases := []struct {
		text   string
		maxLen int
	}{
		{"", 3},
		{"123 ...", 3},
		{"HOLA", 0},
		{"HOLA", -1},
	}
	for _, c := range cases {
		if _, err := a.Statistical(ctx, c.text, c.maxLen); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("Statistical(%q, %d): expected ErrInvalidInput, got %v", c.text, c.maxLen, err)
		}
		if _, err := a.BruteForce(ctx, c.text, c.maxLen); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("BruteForce(%q, %d): expected ErrInvalidInput, got %v", c.text, c.maxLen, err)
		}
	}
}

func TestBruteForceFindsKeyInFullResultSet(t *testing.T) {
	plain := loadSample(t)[:80]
	ct := encrypt(t, plain, "YO")

	full := KeyspaceSize(1) + KeyspaceSize(2)
	a := New(WithWorkers(4), WithTopK(full))
	got, err := a.BruteForce(context.Background(), ct, 2)
	if err != nil {
		t.Fatalf("BruteForce failed: %v", err)
	}
	if len(got) != full {
		t.Fatalf("expected %d candidates, got %d", full, len(got))
	}
	found := false
	for _, c := range got {
		if c.Key == "YO" && c.Text == plain {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected key YO in the full result set")
	}
}

func TestBruteForceRanksKeyFirst(t *testing.T) {
	plain := loadSample(t)[:80]
	ct := encrypt(t, plain, "YO")

	var mu sync.Mutex
	var reports []LengthReport
	a := New(WithWorkers(3), WithProgress(func(r LengthReport) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, r)
	}))
	got, err := a.BruteForce(context.Background(), ct, 2)
	if err != nil {
		t.Fatalf("BruteForce failed: %v", err)
	}
	if len(got) != DefaultTopK {
		t.Fatalf("expected %d candidates, got %d", DefaultTopK, len(got))
	}
	if got[0].Key != "YO" || got[0].Text != plain {
		t.Fatalf("expected YO first, got %q", got[0].Key)
	}
	if len(reports) != 2 || reports[0].Length != 1 || reports[1].Length != 2 {
		t.Fatalf("unexpected progress reports: %+v", reports)
	}
	if reports[1].Keys != 676 || !reports[1].Found || reports[1].Best.Key != "YO" {
		t.Fatalf("unexpected length 2 report: %+v", reports[1])
	}
}

func TestBruteForceRejectsOverflowingLength(t *testing.T) {
	a := New(WithWorkers(1))
	if _, err := a.BruteForce(context.Background(), "HOLA", MaxBruteForceLength+1); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := CheckBruteForceLength(MaxBruteForceLength); err != nil {
		t.Fatalf("expected length %d to be accepted, got %v", MaxBruteForceLength, err)
	}
	if size := KeyspaceSize(MaxBruteForceLength); size <= 0 || size/26 != KeyspaceSize(MaxBruteForceLength-1) {
		t.Fatalf("keyspace for length %d overflowed: %d", MaxBruteForceLength, size)
	}
}

func TestBruteForceStopsBetweenLengths(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lengths := 0
	a := New(WithWorkers(2), WithProgress(func(r LengthReport) {
		lengths++
		if r.Length == 1 {
			cancel()
		}
	}))
	got, err := a.BruteForce(ctx, strings.Repeat("ABCDEFG", 5), 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if lengths != 1 {
		t.Fatalf("expected to stop after length 1, ran %d lengths", lengths)
	}
	if len(got) == 0 {
		t.Fatalf("expected partial results from length 1")
	}
}

func TestRunBatchSurvivesPanickingUnit(t *testing.T) {
	var logged []string
	var mu sync.Mutex
	a := New(WithWorkers(2), WithLogger(func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		logged = append(logged, fmt.Sprintf(format, args...))
	}))
	results := make([]int, 4)
	units := make([]unit, 4)
	for i := range units {
		i := i
		units[i] = unit{name: fmt.Sprintf("u%d", i), run: func() {
			if i == 2 {
				panic("boom")
			}
			results[i] = i + 1
		}}
	}
	a.runBatch(units)
	if results[0] != 1 || results[1] != 2 || results[3] != 4 {
		t.Fatalf("expected healthy units to finish, got %v", results)
	}
	if results[2] != 0 {
		t.Fatalf("expected failed unit to leave no result")
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "u2") || !strings.Contains(logged[0], "boom") {
		t.Fatalf("unexpected log output: %v", logged)
	}
}

func TestDefaultWorkersAtLeastOne(t *testing.T) {
	if DefaultWorkers() < 1 {
		t.Fatalf("expected at least one worker")
	}
	if New(WithWorkers(0)).Workers() != DefaultWorkers() {
		t.Fatalf("expected zero workers to fall back to default")
	}
}
