package ml

import (
	"math"
	"math/rand"
)

// varianceFloor keeps per-dimension densities from collapsing to a spike.
const varianceFloor = 1e-6

// Density is a diagonal Gaussian maintained with Welford's online algorithm.
type Density struct {
	n    int
	mean []float64
	m2   []float64
}

func newDensity(dimension int) *Density {
	return &Density{mean: make([]float64, dimension), m2: make([]float64, dimension)}
}

func (d *Density) Update(x []float64) {
	d.n++
	for j, v := range x {
		delta := v - d.mean[j]
		d.mean[j] += delta / float64(d.n)
		d.m2[j] += delta * (v - d.mean[j])
	}
}

// Count returns how many samples the density has absorbed.
func (d *Density) Count() int {
	return d.n
}

// Variance returns the sample variance of dimension j, 1 until two samples are
// seen, floored at varianceFloor.
func (d *Density) Variance(j int) float64 {
	v := 1.0
	if d.n > 1 {
		v = d.m2[j] / float64(d.n-1)
	}
	return math.Max(v, varianceFloor)
}

func (d *Density) Mean(j int) float64 {
	return d.mean[j]
}

// LogLikelihood sums per-dimension log densities.
func (d *Density) LogLikelihood(x []float64) float64 {
	ll := 0.0
	for j, v := range x {
		variance := d.Variance(j)
		diff := v - d.mean[j]
		ll += -0.5*math.Log(2*math.Pi*variance) - diff*diff/(2*variance)
	}
	return ll
}

// GaussianStrategy models each label with its own diagonal Gaussian and combines
// them with the class counts as an unnormalized prior.
type GaussianStrategy struct {
	densities map[Label]*Density
}

func NewGaussianStrategy() *GaussianStrategy {
	return &GaussianStrategy{}
}

func (g *GaussianStrategy) Name() string { return string(ModelGaussian) }

func (g *GaussianStrategy) Init(dimension int, _ *rand.Rand) {
	g.densities = map[Label]*Density{
		LabelRejected: newDensity(dimension),
		LabelAccepted: newDensity(dimension),
	}
}

func (g *GaussianStrategy) Update(x []float64, label Label, _ *rand.Rand) {
	g.densities[label].Update(x)
}

func (g *GaussianStrategy) Classify(x []float64) ClassificationResult {
	scores := make(map[Label]float64, len(Labels))
	for _, l := range Labels {
		d := g.densities[l]
		scores[l] = math.Log(float64(d.Count())) + d.LogLikelihood(x)
	}
	return posterior(scores)
}
