package attack

import (
	"math"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/cipher"
	"github.com/verte-zerg/vigenere/internal/model"
	"github.com/verte-zerg/vigenere/internal/score"
)

// MinStatisticalLetters is the text length below which column frequency
// analysis is unreliable.
const MinStatisticalLetters = 15

// BreakLength guesses the key of a given length by solving each column as a
// Caesar shift. It reports false when the length leaves a column empty.
// The guess is only as good as the text's fit to the table.
func BreakLength(ct []int, length int, table alphabet.Table) (model.Candidate, bool) {
	if length < 1 || length > len(ct) {
		return model.Candidate{}, false
	}
	key := make([]int, length)
	column := make([]int, 0, len(ct)/length+1)
	shifted := make([]int, len(ct)/length+1)
	var shift [1]int
	for i := 0; i < length; i++ {
		column = column[:0]
		for j := i; j < len(ct); j += length {
			column = append(column, ct[j])
		}
		best := math.Inf(1)
		bestShift := 0
		for k := 0; k < alphabet.Size; k++ {
			shift[0] = k
			cipher.DecodeInto(shifted, column, shift[:])
			if s := score.ChiSquared(shifted[:len(column)], table); s < best {
				best = s
				bestShift = k
			}
		}
		key[i] = bestShift
	}
	plain := make([]int, len(ct))
	cipher.DecodeInto(plain, ct, key)
	return model.Candidate{
		Score: score.ChiSquared(plain, table),
		Key:   alphabet.FromIndices(key),
		Text:  alphabet.FromIndices(plain),
	}, true
}
