package ml

import (
	"math"
	"math/rand"
	"testing"
)

func TestKDEConvergesOnSeparatedClusters(t *testing.T) {
	model := newTestModel(t, ModelKDE, 10, 3)
	trainClusters(t, model, 100)
	assertClustersSeparated(t, model)
}

func TestKDEReservoirNeverExceedsCap(t *testing.T) {
	const limit = 25
	s := NewKDEStrategy(limit)
	rng := rand.New(rand.NewSource(9))
	s.Init(2, rng)
	for i := 0; i < 1000; i++ {
		label := LabelRejected
		if i%3 == 0 {
			label = LabelAccepted
		}
		s.Update([]float64{float64(i), float64(-i)}, label, rng)
		if s.Stored(LabelRejected) > limit || s.Stored(LabelAccepted) > limit {
			t.Fatalf("reservoir exceeded cap after %d updates", i+1)
		}
	}
	if s.Stored(LabelRejected) != limit || s.Stored(LabelAccepted) != limit {
		t.Fatalf("expected full reservoirs, got %d and %d", s.Stored(LabelRejected), s.Stored(LabelAccepted))
	}
	if s.Seen(LabelAccepted)+s.Seen(LabelRejected) != 1000 {
		t.Fatalf("expected 1000 seen samples, got %d", s.Seen(LabelAccepted)+s.Seen(LabelRejected))
	}
}

func TestKDEMomentsTrackEverySample(t *testing.T) {
	s := NewKDEStrategy(2)
	rng := rand.New(rand.NewSource(1))
	s.Init(1, rng)
	for i := 1; i <= 100; i++ {
		s.Update([]float64{float64(i)}, LabelRejected, rng)
	}
	if got := s.classes[LabelRejected].moments.Mean(0); math.Abs(got-50.5) > 1e-9 {
		t.Fatalf("expected running mean over all samples 50.5, got %v", got)
	}
}

func TestKDEUnboundedKeepsEverything(t *testing.T) {
	s := NewKDEStrategy(0)
	rng := rand.New(rand.NewSource(1))
	s.Init(1, rng)
	for i := 0; i < 300; i++ {
		s.Update([]float64{float64(i)}, LabelAccepted, rng)
	}
	if s.Stored(LabelAccepted) != 300 {
		t.Fatalf("expected 300 stored samples, got %d", s.Stored(LabelAccepted))
	}
}

func TestKDEBandwidthHasFloor(t *testing.T) {
	s := NewKDEStrategy(0)
	rng := rand.New(rand.NewSource(1))
	s.Init(1, rng)
	for i := 0; i < 50; i++ {
		s.Update([]float64{1}, LabelRejected, rng)
	}
	h := s.classes[LabelRejected].bandwidth(1)
	if h[0] < kdeMinBandwidth {
		t.Fatalf("bandwidth below floor: %v", h[0])
	}
	r := s.Classify([]float64{1})
	if p := r.Probability(LabelRejected); math.IsNaN(p) || p != 1 {
		t.Fatalf("expected certain 400 with only 400 samples, got %v", r.Probabilities())
	}
}
