package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// posterior exponentiates per-label log scores and normalizes them. It returns
// Neutral when every likelihood underflows to zero, when the total overflows, or
// when a score is NaN.
func posterior(logScores map[Label]float64) ClassificationResult {
	raw := make([]float64, len(Labels))
	for i, l := range Labels {
		s := logScores[l]
		if math.IsNaN(s) {
			return Neutral()
		}
		raw[i] = math.Exp(s)
	}
	total := floats.Sum(raw)
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return Neutral()
	}
	floats.Scale(1/total, raw)
	probs := make(map[Label]float64, len(Labels))
	for i, l := range Labels {
		probs[l] = raw[i]
	}
	return NewClassificationResult(probs)
}
