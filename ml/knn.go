package ml

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultK is the neighbour count used when none is configured.
const DefaultK = 3

type labeledSample struct {
	x     []float64
	label Label
}

// KNNStrategy keeps every sample it has been trained on and votes among the k
// nearest. Memory and classification cost grow with traffic; nothing is pruned.
type KNNStrategy struct {
	k       int
	samples []labeledSample
}

func NewKNNStrategy(k int) *KNNStrategy {
	if k <= 0 {
		k = DefaultK
	}
	return &KNNStrategy{k: k}
}

func (s *KNNStrategy) Name() string { return string(ModelKNN) }

func (s *KNNStrategy) Init(_ int, _ *rand.Rand) {
	s.samples = nil
}

func (s *KNNStrategy) Update(x []float64, label Label, _ *rand.Rand) {
	stored := make([]float64, len(x))
	copy(stored, x)
	s.samples = append(s.samples, labeledSample{x: stored, label: label})
}

// Classify returns votes/k for each label among the nearest neighbours. With
// fewer than k stored samples the shares sum to less than 1. Labels without
// votes are present with probability 0. Equal distances keep insertion order.
func (s *KNNStrategy) Classify(x []float64) ClassificationResult {
	if len(s.samples) == 0 {
		return Neutral()
	}
	type neighbour struct {
		distance float64
		label    Label
	}
	neighbours := make([]neighbour, len(s.samples))
	for i, sample := range s.samples {
		neighbours[i] = neighbour{distance: floats.Distance(x, sample.x, 2), label: sample.label}
	}
	sort.SliceStable(neighbours, func(i, j int) bool {
		return neighbours[i].distance < neighbours[j].distance
	})

	taken := s.k
	if taken > len(neighbours) {
		taken = len(neighbours)
	}
	votes := make(map[Label]float64, len(Labels))
	for _, n := range neighbours[:taken] {
		votes[n.label]++
	}
	for l := range votes {
		votes[l] /= float64(s.k)
	}
	return NewClassificationResult(votes)
}

// Len returns the number of stored samples.
func (s *KNNStrategy) Len() int {
	return len(s.samples)
}
