package ml

import (
	"math"
	"math/rand"
	"testing"
)

func TestNNLearnsSeparablePoints(t *testing.T) {
	s := NewNNStrategy(0)
	rng := rand.New(rand.NewSource(5))
	s.Init(2, rng)
	rejected := []float64{1, 0}
	accepted := []float64{0, 1}
	for i := 0; i < 2000; i++ {
		s.Update(rejected, LabelRejected, rng)
		s.Update(accepted, LabelAccepted, rng)
	}
	if p := s.Classify(rejected).Probability(LabelRejected); p <= 0.9 {
		t.Fatalf("expected P(400) > 0.9, got %v", p)
	}
	if p := s.Classify(accepted).Probability(LabelAccepted); p <= 0.9 {
		t.Fatalf("expected P(not-400) > 0.9, got %v", p)
	}
}

func TestNNOutputIsDistribution(t *testing.T) {
	s := NewNNStrategy(0.5)
	rng := rand.New(rand.NewSource(11))
	s.Init(3, rng)
	r := s.Classify([]float64{0.3, -2, 7})
	sum := r.Probability(LabelRejected) + r.Probability(LabelAccepted)
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("expected probabilities to sum to 1, got %v", sum)
	}
}

func TestNNInitIsReproducible(t *testing.T) {
	a, b := NewNNStrategy(0), NewNNStrategy(0)
	a.Init(4, rand.New(rand.NewSource(3)))
	b.Init(4, rand.New(rand.NewSource(3)))
	x := []float64{1, 2, 3, 4}
	if a.Classify(x).Probability(LabelRejected) != b.Classify(x).Probability(LabelRejected) {
		t.Fatal("expected identical seeds to give identical networks")
	}
}

func TestSoftmaxIsStable(t *testing.T) {
	out := softmax([]float64{1000, 1001})
	if math.IsNaN(out[0]) || math.IsNaN(out[1]) {
		t.Fatalf("softmax overflowed: %v", out)
	}
	if out[1] <= out[0] {
		t.Fatalf("expected larger logit to win: %v", out)
	}
}
