package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const DefaultGLMLearningRate = 0.05

// GLMStrategy is online logistic regression on P(400).
type GLMStrategy struct {
	learningRate float64
	weights      []float64
	bias         float64
}

func NewGLMStrategy(learningRate float64) *GLMStrategy {
	if learningRate <= 0 {
		learningRate = DefaultGLMLearningRate
	}
	return &GLMStrategy{learningRate: learningRate}
}

func (s *GLMStrategy) Name() string { return string(ModelGLM) }

func (s *GLMStrategy) Init(dimension int, _ *rand.Rand) {
	s.weights = make([]float64, dimension)
	s.bias = 0
}

func (s *GLMStrategy) probability(x []float64) float64 {
	return sigmoid(floats.Dot(s.weights, x) + s.bias)
}

func (s *GLMStrategy) Classify(x []float64) ClassificationResult {
	p := s.probability(x)
	if math.IsNaN(p) {
		return Neutral()
	}
	return NewClassificationResult(map[Label]float64{LabelRejected: p, LabelAccepted: 1 - p})
}

// Update takes one gradient step on the log-loss.
func (s *GLMStrategy) Update(x []float64, label Label, _ *rand.Rand) {
	target := 0.0
	if label == LabelRejected {
		target = 1
	}
	grad := s.probability(x) - target
	floats.AddScaled(s.weights, -s.learningRate*grad, x)
	s.bias -= s.learningRate * grad
}
