package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	nnHiddenUnits         = 16
	nnInitRange           = 0.5
	DefaultNNLearningRate = 0.1
)

// NNStrategy is a one-hidden-layer network with sigmoid units and a softmax
// output over Labels, trained by one SGD step per sample.
type NNStrategy struct {
	learningRate float64
	wIn          *mat.Dense // dimension x hidden
	wOut         *mat.Dense // hidden x len(Labels)
}

func NewNNStrategy(learningRate float64) *NNStrategy {
	if learningRate <= 0 {
		learningRate = DefaultNNLearningRate
	}
	return &NNStrategy{learningRate: learningRate}
}

func (s *NNStrategy) Name() string { return string(ModelNN) }

func (s *NNStrategy) Init(dimension int, rng *rand.Rand) {
	s.wIn = randomDense(dimension, nnHiddenUnits, rng)
	s.wOut = randomDense(nnHiddenUnits, len(Labels), rng)
}

func randomDense(rows, cols int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * nnInitRange
	}
	return mat.NewDense(rows, cols, data)
}

func (s *NNStrategy) forward(x *mat.VecDense) (hidden, output *mat.VecDense) {
	hidden = mat.NewVecDense(nnHiddenUnits, nil)
	hidden.MulVec(s.wIn.T(), x)
	for i := 0; i < hidden.Len(); i++ {
		hidden.SetVec(i, sigmoid(hidden.AtVec(i)))
	}

	logits := mat.NewVecDense(len(Labels), nil)
	logits.MulVec(s.wOut.T(), hidden)
	return hidden, mat.NewVecDense(len(Labels), softmax(logits.RawVector().Data))
}

func (s *NNStrategy) Classify(x []float64) ClassificationResult {
	_, output := s.forward(mat.NewVecDense(len(x), copyVector(x)))
	probs := make(map[Label]float64, len(Labels))
	for i, l := range Labels {
		p := output.AtVec(i)
		if math.IsNaN(p) {
			return Neutral()
		}
		probs[l] = p
	}
	return NewClassificationResult(probs)
}

func (s *NNStrategy) Update(x []float64, label Label, _ *rand.Rand) {
	in := mat.NewVecDense(len(x), copyVector(x))
	hidden, output := s.forward(in)

	outErr := mat.NewVecDense(len(Labels), nil)
	for i, l := range Labels {
		target := 0.0
		if l == label {
			target = 1
		}
		outErr.SetVec(i, output.AtVec(i)-target)
	}

	hiddenErr := mat.NewVecDense(nnHiddenUnits, nil)
	hiddenErr.MulVec(s.wOut, outErr)
	for i := 0; i < nnHiddenUnits; i++ {
		h := hidden.AtVec(i)
		hiddenErr.SetVec(i, hiddenErr.AtVec(i)*h*(1-h))
	}

	s.wOut.RankOne(s.wOut, -s.learningRate, hidden, outErr)
	s.wIn.RankOne(s.wIn, -s.learningRate, in, hiddenErr)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// softmax subtracts the maximum logit before exponentiating.
func softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	maxLogit := floats.Max(logits)
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	floats.Scale(1/sum, out)
	return out
}

func copyVector(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}
