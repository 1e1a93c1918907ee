package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const (
	kdeEpsilon      = 1e-6
	kdeMinBandwidth = 1e-3
)

var logSqrt2Pi = 0.5 * math.Log(2*math.Pi)

// kdeClass is the per-label state: the retained kernel centres plus running
// moments of every sample ever seen, used only for bandwidth selection.
type kdeClass struct {
	samples [][]float64
	seen    int
	moments *Density
}

func (c *kdeClass) add(x []float64, maxStored int, rng *rand.Rand) {
	c.seen++
	c.moments.Update(x)

	stored := make([]float64, len(x))
	copy(stored, x)
	if maxStored <= 0 || len(c.samples) < maxStored {
		c.samples = append(c.samples, stored)
		return
	}
	if j := rng.Intn(c.seen); j < maxStored {
		c.samples[j] = stored
	}
}

// bandwidth applies Scott's rule per dimension.
func (c *kdeClass) bandwidth(dimension int) []float64 {
	h := make([]float64, dimension)
	factor := math.Pow(float64(c.seen), -1.0/float64(dimension+4))
	for j := range h {
		sigma := math.Max(math.Sqrt(c.moments.Variance(j)), math.Sqrt(kdeEpsilon))
		h[j] = math.Max(sigma*factor, kdeMinBandwidth)
	}
	return h
}

// logLikelihood is the log of the mean Gaussian kernel over stored samples.
func (c *kdeClass) logLikelihood(x []float64) float64 {
	if len(c.samples) == 0 {
		return math.Inf(-1)
	}
	h := c.bandwidth(len(x))
	norm := 0.0
	for _, hj := range h {
		norm += math.Log(hj) + logSqrt2Pi
	}
	kernels := make([]float64, len(c.samples))
	for i, s := range c.samples {
		k := -norm
		for j, v := range x {
			z := (v - s[j]) / h[j]
			k -= 0.5 * z * z
		}
		kernels[i] = k
	}
	return floats.LogSumExp(kernels) - math.Log(float64(len(c.samples)))
}

// KDEStrategy estimates each label's density with Gaussian kernels. When
// maxStored is positive each label keeps a uniform reservoir of that many
// samples.
type KDEStrategy struct {
	maxStored int
	classes   map[Label]*kdeClass
}

func NewKDEStrategy(maxStored int) *KDEStrategy {
	return &KDEStrategy{maxStored: maxStored}
}

func (s *KDEStrategy) Name() string { return string(ModelKDE) }

func (s *KDEStrategy) Init(dimension int, _ *rand.Rand) {
	s.classes = make(map[Label]*kdeClass, len(Labels))
	for _, l := range Labels {
		s.classes[l] = &kdeClass{moments: newDensity(dimension)}
	}
}

func (s *KDEStrategy) Update(x []float64, label Label, rng *rand.Rand) {
	s.classes[label].add(x, s.maxStored, rng)
}

func (s *KDEStrategy) Classify(x []float64) ClassificationResult {
	scores := make(map[Label]float64, len(Labels))
	for _, l := range Labels {
		c := s.classes[l]
		scores[l] = math.Log(float64(c.seen)) + c.logLikelihood(x)
	}
	return posterior(scores)
}

// Stored returns how many samples are retained for l.
func (s *KDEStrategy) Stored(l Label) int {
	return len(s.classes[l].samples)
}

// Seen returns how many samples of l were ever observed.
func (s *KDEStrategy) Seen(l Label) int {
	return s.classes[l].seen
}
