package biometric

import "math"

// DefaultThreshold is the minimum similarity for a scan to count as a match.
const DefaultThreshold = 0.60

// Cosine returns the cosine similarity of a and b.
// Vectors of different length or with zero norm have similarity 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// BestMatch returns the index and score of the candidate most similar to query.
// Only candidates scoring strictly above zero are considered; if none do it
// returns -1 and 0.
func BestMatch(query []float64, candidates [][]float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if s := Cosine(query, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}
