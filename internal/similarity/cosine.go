package similarity

import (
	"fmt"
	"math"
)

// eps bounds the norm product from below, matching torch's cosine_similarity,
// so a zero-magnitude vector scores 0 instead of NaN.
const eps = 1e-8

// Cosine returns dot(a,b) / (|a| * |b|) clamped to [-1, 1].
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Max(math.Sqrt(na)*math.Sqrt(nb), eps)
	return math.Max(-1, math.Min(1, dot/den)), nil
}
