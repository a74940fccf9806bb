// Package attack recovers Vigenère keys by column frequency analysis and by
// exhaustive search, spreading independent work units over a fixed pool.
package attack

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/model"
)

// Default key length bounds for each attack.
const (
	DefaultStatisticalMaxLen = 20
	DefaultBruteForceMaxLen  = 4
)

// LengthReport describes one finished key length of a brute-force run.
type LengthReport struct {
	Length  int
	Keys    int
	Elapsed time.Duration
	Best    model.Candidate
	Found   bool
}

// Attacker runs attacks with a fixed worker count and frequency table.
type Attacker struct {
	workers  int
	table    alphabet.Table
	topK     int
	progress func(LengthReport)
	logf     func(format string, args ...any)
}

// Option configures an Attacker.
type Option func(*Attacker)

// WithWorkers sets the pool size. Values below 1 select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(a *Attacker) {
		if n >= 1 {
			a.workers = n
		}
	}
}

// WithTable sets the reference letter frequencies.
func WithTable(t alphabet.Table) Option {
	return func(a *Attacker) { a.table = t }
}

// WithTopK sets how many candidates brute force keeps.
func WithTopK(k int) Option {
	return func(a *Attacker) {
		if k >= 1 {
			a.topK = k
		}
	}
}

// WithProgress registers a callback invoked after each brute-force length.
func WithProgress(fn func(LengthReport)) Option {
	return func(a *Attacker) { a.progress = fn }
}

// WithLogger registers a printf-style sink for work unit failures.
func WithLogger(fn func(format string, args ...any)) Option {
	return func(a *Attacker) { a.logf = fn }
}

// DefaultWorkers returns a quarter of the available CPUs, at least one.
func DefaultWorkers() int {
	n := runtime.NumCPU() / 4
	if n < 1 {
		n = 1
	}
	return n
}

// New returns an Attacker using the Spanish table and DefaultWorkers unless
// options say otherwise.
func New(opts ...Option) *Attacker {
	a := &Attacker{
		workers:  DefaultWorkers(),
		table:    alphabet.Spanish,
		topK:     DefaultTopK,
		progress: func(LengthReport) {},
		logf:     func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.progress == nil {
		a.progress = func(LengthReport) {}
	}
	if a.logf == nil {
		a.logf = func(string, ...any) {}
	}
	return a
}

// Workers returns the pool size.
func (a *Attacker) Workers() int {
	return a.workers
}

// Statistical derives one candidate per key length in [1, maxLen] and
// returns them sorted by score. Lengths longer than the text are omitted.
func (a *Attacker) Statistical(ctx context.Context, text string, maxLen int) ([]model.Candidate, error) {
	ct, err := prepare(text, maxLen)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slots := make([]*model.Candidate, maxLen)
	units := make([]unit, maxLen)
	for i := range units {
		i := i
		length := i + 1
		units[i] = unit{
			name: fmt.Sprintf("length %d", length),
			run: func() {
				if c, ok := BreakLength(ct, length, a.table); ok {
					slots[i] = &c
				}
			},
		}
	}
	a.runBatch(units)

	out := make([]model.Candidate, 0, maxLen)
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out, nil
}

// StatisticalLength breaks a single known key length.
func (a *Attacker) StatisticalLength(text string, length int) (model.Candidate, error) {
	ct, err := prepare(text, length)
	if err != nil {
		return model.Candidate{}, err
	}
	c, ok := BreakLength(ct, length, a.table)
	if !ok {
		return model.Candidate{}, fmt.Errorf("length %d over %d letters: %w", length, len(ct), model.ErrInfeasibleLength)
	}
	return c, nil
}

// BruteForce tries every key of length 1..maxLen, one length at a time, and
// returns the global top-K. A cancelled ctx stops the run between lengths
// and returns what was found so far together with ctx.Err().
func (a *Attacker) BruteForce(ctx context.Context, text string, maxLen int) ([]model.Candidate, error) {
	if err := CheckBruteForceLength(maxLen); err != nil {
		return nil, err
	}
	ct, err := prepare(text, maxLen)
	if err != nil {
		return nil, err
	}
	global := NewRanking(a.topK)
	groups := PartitionFirstLetters(a.workers)
	for length := 1; length <= maxLen; length++ {
		if err := ctx.Err(); err != nil {
			return global.Candidates(), err
		}
		start := time.Now()
		perLength := a.searchLength(ct, length, groups)
		global.Merge(perLength)

		report := LengthReport{
			Length:  length,
			Keys:    KeyspaceSize(length),
			Elapsed: time.Since(start),
		}
		report.Best, report.Found = perLength.Best()
		a.progress(report)
	}
	return global.Candidates(), nil
}

func (a *Attacker) searchLength(ct []int, length int, groups [][]int) *Ranking {
	locals := make([]*Ranking, len(groups))
	units := make([]unit, len(groups))
	for i, group := range groups {
		i := i
		ks := Keyspace{First: group, Length: length}
		units[i] = unit{
			name: fmt.Sprintf("length %d first %s", length, alphabet.FromIndices(group)),
			run: func() {
				locals[i] = SearchSlice(ct, ks, a.table, a.topK)
			},
		}
	}
	a.runBatch(units)

	merged := NewRanking(a.topK)
	for _, local := range locals {
		merged.Merge(local)
	}
	return merged
}

type unit struct {
	name string
	run  func()
}

// runBatch blocks until every unit has finished. A panicking unit is logged
// and leaves its result slot empty.
func (a *Attacker) runBatch(units []unit) {
	var g errgroup.Group
	g.SetLimit(a.workers)
	for _, u := range units {
		u := u
		g.Go(func() error {
			if err := safeRun(u); err != nil {
				a.logf("%v\n", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func safeRun(u unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("work unit %s: panic: %v", u.name, r)
		}
	}()
	u.run()
	return nil
}

func prepare(text string, maxLen int) ([]int, error) {
	if maxLen < 1 {
		return nil, fmt.Errorf("max key length %d: %w", maxLen, model.ErrInvalidInput)
	}
	norm := alphabet.Normalize(text)
	if norm == "" {
		return nil, fmt.Errorf("ciphertext has no letters: %w", model.ErrInvalidInput)
	}
	return alphabet.ToIndices(norm)
}
