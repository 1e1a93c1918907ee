package ml

import (
	"math"
	"math/rand"
	"testing"
)

func trainTightClusters(s Strategy, rng *rand.Rand) {
	s.Init(1, rng)
	for i := 0; i < 50; i++ {
		s.Update([]float64{0}, LabelRejected, rng)
		s.Update([]float64{0.001}, LabelAccepted, rng)
	}
}

func TestFarQueryFallsBackToNeutral(t *testing.T) {
	for _, s := range []Strategy{NewGaussianStrategy(), NewKDEStrategy(0)} {
		trainTightClusters(s, rand.New(rand.NewSource(1)))
		r := s.Classify([]float64{1e6})
		if r.Probability(LabelRejected) != 0.5 || r.Probability(LabelAccepted) != 0.5 {
			t.Fatalf("%s: expected neutral split when both likelihoods vanish, got %v", s.Name(), r.Probabilities())
		}
	}
}

func TestPosterior(t *testing.T) {
	r := posterior(map[Label]float64{LabelRejected: math.Log(3), LabelAccepted: math.Log(1)})
	if math.Abs(r.Probability(LabelRejected)-0.75) > 1e-12 {
		t.Fatalf("expected 0.75, got %v", r.Probabilities())
	}

	// one class underflows, the other does not
	r = posterior(map[Label]float64{LabelRejected: -800, LabelAccepted: -1})
	if r.Probability(LabelAccepted) != 1 {
		t.Fatalf("expected all mass on not-400, got %v", r.Probabilities())
	}

	cases := map[string]map[Label]float64{
		"underflow": {LabelRejected: -800, LabelAccepted: -900},
		"overflow":  {LabelRejected: 800, LabelAccepted: 1},
		"nan":       {LabelRejected: math.NaN(), LabelAccepted: 0},
		"no mass":   {LabelRejected: math.Inf(-1), LabelAccepted: math.Inf(-1)},
	}
	for name, scores := range cases {
		if r := posterior(scores); r.Probability(LabelRejected) != 0.5 {
			t.Fatalf("%s: expected neutral split, got %v", name, r.Probabilities())
		}
	}
}
