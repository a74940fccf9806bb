// Package model defines shared data structures.
package model

import "time"

// Attack modes recorded in run history.
const (
	ModeStatistical = "statistical"
	ModeBruteForce  = "brute"
)

// Candidate is a scored key guess together with the plaintext it produces.
// Lower scores are more language-like.
type Candidate struct {
	Score float64
	Key   string
	Text  string
}

// Config defines attack settings after flags and config file are merged.
type Config struct {
	Mode        string
	Lang        string
	Workers     int
	MaxLen      int
	BruteMaxLen int
	Top         int
	Record      bool
}

// RunRecord captures a finished attack for the history store.
type RunRecord struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       string
	Lang       string
	MaxLen     int
	Workers    int
	TextLen    int
	DurationMs int64
}

// HistoryFilter narrows history listings.
type HistoryFilter struct {
	Mode string
	Last int
}

// RunSummary describes a recorded run and its best candidate.
type RunSummary struct {
	RunID      int64
	EndedAt    time.Time
	Mode       string
	Lang       string
	MaxLen     int
	Workers    int
	TextLen    int
	DurationMs int64
	BestKey    string
	BestScore  float64
	Candidates int
}
