package attack

import (
	"fmt"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/cipher"
	"github.com/verte-zerg/vigenere/internal/model"
	"github.com/verte-zerg/vigenere/internal/score"
)

// BruteForceWarnLength is the key length above which exhaustive search
// becomes slow enough to warn about.
const BruteForceWarnLength = 5

// MaxBruteForceLength is the longest key length whose keyspace fits in an
// int64. BruteForce rejects longer lengths.
const MaxBruteForceLength = 13

// SearchSlice decodes ct under every key of ks and keeps the best k.
func SearchSlice(ct []int, ks Keyspace, table alphabet.Table, k int) *Ranking {
	ranking := NewRanking(k)
	plain := make([]int, len(ct))
	it := ks.Iterator()
	for key, ok := it.Next(); ok; key, ok = it.Next() {
		cipher.DecodeInto(plain, ct, key)
		s := score.ChiSquared(plain, table)
		if !ranking.Accepts(s) {
			continue
		}
		ranking.Add(model.Candidate{
			Score: s,
			Key:   alphabet.FromIndices(key),
			Text:  alphabet.FromIndices(plain),
		})
	}
	return ranking
}

// CheckBruteForceLength rejects key lengths outside [1, MaxBruteForceLength].
func CheckBruteForceLength(maxLen int) error {
	if maxLen < 1 || maxLen > MaxBruteForceLength {
		return fmt.Errorf("brute-force key length %d outside 1..%d: %w", maxLen, MaxBruteForceLength, model.ErrInvalidInput)
	}
	return nil
}
