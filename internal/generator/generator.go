// Package generator builds random keys and sample texts.
package generator

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/vigenere/internal/alphabet"
)

// Generator produces randomized keys and letter samples.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Key returns a uniformly random key of the given length.
func (g *Generator) Key(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet.Letter(g.rnd.Intn(alphabet.Size))
	}
	return string(b)
}

// Sample draws n letters weighted by the table.
func (g *Generator) Sample(table alphabet.Table, n int) string {
	total := 0.0
	for _, w := range table {
		total += w
	}
	if n <= 0 || total <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := alphabet.Size - 1
		for j, w := range table {
			acc += w
			if r < acc {
				idx = j
				break
			}
		}
		b.WriteByte(alphabet.Letter(idx))
	}
	return b.String()
}

// Proportional returns n letters whose counts follow the table as closely as
// integer counts allow (largest remainder). Letters are grouped in alphabet
// order.
func Proportional(table alphabet.Table, n int) string {
	total := 0.0
	for _, w := range table {
		total += w
	}
	if n <= 0 || total <= 0 {
		return ""
	}
	type share struct {
		idx   int
		count int
		rem   float64
	}
	shares := make([]share, alphabet.Size)
	assigned := 0
	for i, w := range table {
		exact := w / total * float64(n)
		count := int(exact)
		shares[i] = share{idx: i, count: count, rem: exact - float64(count)}
		assigned += count
	}
	order := make([]share, len(shares))
	copy(order, shares)
	sort.SliceStable(order, func(i, j int) bool { return order[i].rem > order[j].rem })
	for i := 0; assigned < n; i++ {
		shares[order[i%len(order)].idx].count++
		assigned++
	}
	var b strings.Builder
	b.Grow(n)
	for _, s := range shares {
		b.WriteString(strings.Repeat(string(alphabet.Letter(s.idx)), s.count))
	}
	return b.String()
}
