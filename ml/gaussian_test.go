package ml

import (
	"math"
	"math/rand"
	"testing"
)

func TestDensityWelfordMatchesTwoPass(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	d := newDensity(1)
	for _, v := range values {
		d.Update([]float64{v})
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	if math.Abs(d.Mean(0)-mean) > 1e-12 {
		t.Fatalf("expected mean %v, got %v", mean, d.Mean(0))
	}
	if want := ss / float64(len(values)-1); math.Abs(d.Variance(0)-want) > 1e-12 {
		t.Fatalf("expected variance %v, got %v", want, d.Variance(0))
	}
}

func TestDensityVarianceDefaultsAndFloor(t *testing.T) {
	d := newDensity(1)
	d.Update([]float64{3})
	if d.Variance(0) != 1 {
		t.Fatalf("expected variance 1 with one sample, got %v", d.Variance(0))
	}
	d.Update([]float64{3})
	if d.Variance(0) != varianceFloor {
		t.Fatalf("expected floored variance, got %v", d.Variance(0))
	}
}

func TestGaussianSymmetry(t *testing.T) {
	x := []float64{1, -2}
	y := []float64{3, 0.5}
	a := NewGaussianStrategy()
	b := NewGaussianStrategy()
	rng := rand.New(rand.NewSource(1))
	a.Init(2, rng)
	b.Init(2, rng)
	for i := 0; i < 7; i++ {
		a.Update(x, LabelRejected, rng)
		a.Update(y, LabelAccepted, rng)
		b.Update(x, LabelAccepted, rng)
		b.Update(y, LabelRejected, rng)
	}
	for _, q := range [][]float64{{0, 0}, {1, -2}, {2, -1}, {5, 5}} {
		ra, rb := a.Classify(q), b.Classify(q)
		if math.Abs(ra.Probability(LabelRejected)-rb.Probability(LabelAccepted)) > 1e-12 {
			t.Fatalf("query %v: expected mirrored results, got %v and %v", q, ra.Probabilities(), rb.Probabilities())
		}
	}
}

func TestGaussianConvergesOnSeparatedClusters(t *testing.T) {
	model := newTestModel(t, ModelGaussian, 10, 7)
	trainClusters(t, model, 100)
	assertClustersSeparated(t, model)
}

func TestGaussianDegenerateFallsBackToNeutral(t *testing.T) {
	g := NewGaussianStrategy()
	g.Init(1, rand.New(rand.NewSource(1)))
	r := g.Classify([]float64{0})
	if r.Probability(LabelRejected) != 0.5 {
		t.Fatalf("expected neutral split with no samples, got %v", r.Probabilities())
	}
	g.Update([]float64{0}, LabelRejected, nil)
	r = g.Classify([]float64{math.NaN()})
	if r.Probability(LabelRejected) != 0.5 {
		t.Fatalf("expected neutral split for NaN input, got %v", r.Probabilities())
	}
}

func assertClustersSeparated(t *testing.T, model *EndpointModel) {
	t.Helper()
	for _, q := range []float64{-10.5, -10, -9.5} {
		r, err := model.Classify(floatRequest(testEndpoint, q))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p := r.Probability(LabelRejected); p <= 0.95 {
			t.Fatalf("query %v: expected P(400) > 0.95, got %v", q, p)
		}
	}
	for _, q := range []float64{9.5, 10, 10.5} {
		r, err := model.Classify(floatRequest(testEndpoint, q))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p := r.Probability(LabelRejected); p >= 0.05 {
			t.Fatalf("query %v: expected P(400) < 0.05, got %v", q, p)
		}
	}
}
