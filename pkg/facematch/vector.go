// Package facematch holds the descriptor math used by registration and the
// matching engine.
package facematch

import "math"

// MaxDistance is returned for vectors that cannot be compared.
const MaxDistance = 2.0

// Normalize returns a unit-length copy of v. A zero vector is returned as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// CosineDistance returns 1 - cos(a, b) in [0, 2]. Vectors of different
// length are never close.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return MaxDistance
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	// clamp float error
	if d < 0 {
		return 0
	}
	if d > MaxDistance {
		return MaxDistance
	}
	return d
}

// Similarity converts a cosine distance to a similarity score.
func Similarity(distance float64) float64 {
	return 1 - distance
}
