package ml

import (
	"fmt"
)

// ModelType names a learning strategy.
type ModelType string

const (
	ModelGaussian ModelType = "gaussian"
	ModelGLM      ModelType = "glm"
	ModelKDE      ModelType = "kde"
	ModelKNN      ModelType = "knn"
	ModelNN       ModelType = "nn"
)

// StrategyConfig holds the per-family knobs. Zero values select defaults.
type StrategyConfig struct {
	Type            ModelType
	K               int
	MaxStored       int
	NNLearningRate  float64
	GLMLearningRate float64
}

// NewStrategy builds a fresh, uninitialized strategy for cfg.Type.
func NewStrategy(cfg StrategyConfig) (Strategy, error) {
	switch cfg.Type {
	case ModelGaussian:
		return NewGaussianStrategy(), nil
	case ModelGLM:
		return NewGLMStrategy(cfg.GLMLearningRate), nil
	case ModelKDE:
		return NewKDEStrategy(cfg.MaxStored), nil
	case ModelKNN:
		return NewKNNStrategy(cfg.K), nil
	case ModelNN:
		return NewNNStrategy(cfg.NNLearningRate), nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", cfg.Type)
	}
}
