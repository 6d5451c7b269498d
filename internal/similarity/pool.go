package similarity

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySequence     = errors.New("empty token sequence")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// MeanPool averages token vectors element-wise across the sequence.
func MeanPool(tokens [][]float32) ([]float32, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptySequence
	}
	dim := len(tokens[0])
	sum := make([]float64, dim)
	for i, vec := range tokens {
		if len(vec) != dim {
			return nil, fmt.Errorf(
				"%w: token %d has %d components, want %d",
				ErrDimensionMismatch, i, len(vec), dim,
			)
		}
		for j, x := range vec {
			sum[j] += float64(x)
		}
	}
	n := float64(len(tokens))
	out := make([]float32, dim)
	for j := range sum {
		out[j] = float32(sum[j] / n)
	}
	return out, nil
}
