package vector

import "math"

// Dot returns the dot product of two vectors of equal length, accumulated in float64.
// Vectors of different length yield 0.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|) clamped to [-1, 1].
// A zero-magnitude vector on either side, or a length mismatch, yields 0.
func CosineSimilarity(a, b []float32) float64 {
	return cosineWithNorm(a, b, L2Norm(a))
}

// cosineWithNorm is CosineSimilarity with the norm of a precomputed.
func cosineWithNorm(a, b []float32, normA float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normB := L2Norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := Dot(a, b) / (normA * normB)
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(-1, math.Min(1, sim))
}

// Scorer computes cosine similarity against a fixed query, reusing its norm.
type Scorer struct {
	query []float32
	norm  float64
}

// NewScorer returns a Scorer for query.
func NewScorer(query []float32) *Scorer {
	return &Scorer{query: query, norm: L2Norm(query)}
}

// Score returns the cosine similarity between the query and v.
func (s *Scorer) Score(v []float32) float64 {
	return cosineWithNorm(s.query, v, s.norm)
}
