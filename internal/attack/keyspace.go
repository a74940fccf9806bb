package attack

import "github.com/verte-zerg/vigenere/internal/alphabet"

// Keyspace is the set of keys of a fixed length whose first letter is one
// of First.
type Keyspace struct {
	First  []int
	Length int
}

// Size returns the number of keys in the keyspace.
func (ks Keyspace) Size() int {
	if ks.Length < 1 || len(ks.First) == 0 {
		return 0
	}
	return len(ks.First) * KeyspaceSize(ks.Length-1)
}

// Iterator returns a fresh iterator positioned before the first key.
func (ks Keyspace) Iterator() *KeyIterator {
	return &KeyIterator{ks: ks}
}

// KeyIterator walks a Keyspace in lexicographic order without
// materializing it.
type KeyIterator struct {
	ks       Keyspace
	key      []int
	firstPos int
	started  bool
	done     bool
}

// Next advances to the next key. The returned slice is reused by the
// following call; copy it to retain it.
func (it *KeyIterator) Next() ([]int, bool) {
	if it.done {
		return nil, false
	}
	if !it.started {
		it.started = true
		if it.ks.Length < 1 || len(it.ks.First) == 0 {
			it.done = true
			return nil, false
		}
		it.key = make([]int, it.ks.Length)
		it.key[0] = it.ks.First[0]
		return it.key, true
	}
	for pos := len(it.key) - 1; pos >= 1; pos-- {
		it.key[pos]++
		if it.key[pos] < alphabet.Size {
			return it.key, true
		}
		it.key[pos] = 0
	}
	it.firstPos++
	if it.firstPos >= len(it.ks.First) {
		it.done = true
		return nil, false
	}
	it.key[0] = it.ks.First[it.firstPos]
	return it.key, true
}

// PartitionFirstLetters splits the alphabet round-robin into n disjoint
// non-empty groups. n is clamped to [1, alphabet.Size].
func PartitionFirstLetters(n int) [][]int {
	if n < 1 {
		n = 1
	}
	if n > alphabet.Size {
		n = alphabet.Size
	}
	groups := make([][]int, n)
	for letter := 0; letter < alphabet.Size; letter++ {
		groups[letter%n] = append(groups[letter%n], letter)
	}
	return groups
}

// KeyspaceSize returns 26^length. It overflows past MaxBruteForceLength.
func KeyspaceSize(length int) int {
	size := 1
	for i := 0; i < length; i++ {
		size *= alphabet.Size
	}
	return size
}
