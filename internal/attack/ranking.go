package attack

import (
	"sort"

	"github.com/verte-zerg/vigenere/internal/model"
)

// DefaultTopK is the number of candidates a Ranking keeps by default.
const DefaultTopK = 10

// Ranking is a bounded list of candidates sorted ascending by score.
// Equal scores keep insertion order. It is not safe for concurrent use.
type Ranking struct {
	capacity int
	items    []model.Candidate
}

// NewRanking returns an empty Ranking holding at most capacity candidates.
func NewRanking(capacity int) *Ranking {
	if capacity < 1 {
		capacity = DefaultTopK
	}
	return &Ranking{capacity: capacity, items: make([]model.Candidate, 0, capacity)}
}

// Accepts reports whether a candidate with this score would be inserted.
func (r *Ranking) Accepts(score float64) bool {
	if len(r.items) < r.capacity {
		return true
	}
	return score < r.items[len(r.items)-1].Score
}

// Add inserts c when there is room or when it beats the worst entry.
func (r *Ranking) Add(c model.Candidate) bool {
	if !r.Accepts(c.Score) {
		return false
	}
	if len(r.items) == r.capacity {
		r.items = r.items[:len(r.items)-1]
	}
	pos := sort.Search(len(r.items), func(i int) bool { return r.items[i].Score > c.Score })
	r.items = append(r.items, model.Candidate{})
	copy(r.items[pos+1:], r.items[pos:])
	r.items[pos] = c
	return true
}

// Merge folds every candidate of other into r, in other's order.
func (r *Ranking) Merge(other *Ranking) {
	if other == nil {
		return
	}
	for _, c := range other.items {
		r.Add(c)
	}
}

// Len returns the number of candidates held.
func (r *Ranking) Len() int {
	return len(r.items)
}

// Best returns the lowest-scoring candidate.
func (r *Ranking) Best() (model.Candidate, bool) {
	if len(r.items) == 0 {
		return model.Candidate{}, false
	}
	return r.items[0], true
}

// Candidates returns a copy of the ranked candidates.
func (r *Ranking) Candidates() []model.Candidate {
	out := make([]model.Candidate, len(r.items))
	copy(out, r.items)
	return out
}
