package ml

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"rejectlearn/monitoring"
)

var (
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrEndpointMismatch  = errors.New("endpoint mismatch")
)

// Strategy is the class-conditional part of an endpoint model. The shell calls
// it with vectors of the dimension passed to Init and never concurrently.
type Strategy interface {
	Name() string
	Init(dimension int, rng *rand.Rand)
	Classify(x []float64) ClassificationResult
	Update(x []float64, label Label, rng *rand.Rand)
}

// ModelState is the lifecycle stage of an endpoint model.
type ModelState int

const (
	StateUninitialized ModelState = iota
	StateWarmingUp
	StateActive
)

func (s ModelState) String() string {
	switch s {
	case StateWarmingUp:
		return "warming_up"
	case StateActive:
		return "active"
	default:
		return "uninitialized"
	}
}

// ModelOptions configures the shared lifecycle.
type ModelOptions struct {
	Warmup       int
	Accuracy     monitoring.AccuracyKind
	MetricWindow int
}

// EndpointModel learns the 400/not-400 split for a single endpoint. It owns
// warmup, the frozen feature dimension and accuracy bookkeeping, and delegates
// inference and training to its Strategy.
type EndpointModel struct {
	mu        sync.Mutex
	endpoint  Endpoint
	encoder   *Encoder
	strategy  Strategy
	rng       *rand.Rand
	warmup    int
	dimension int
	observed  int
	accuracy  monitoring.AccuracyTracker
	metrics   *monitoring.ModelMetrics
}

// NewEndpointModel creates a model for endpoint. dimension may be 0, in which
// case the first encoded request fixes it.
func NewEndpointModel(endpoint Endpoint, encoder *Encoder, strategy Strategy, dimension int, rng *rand.Rand, opts ModelOptions) (*EndpointModel, error) {
	if encoder == nil || strategy == nil || rng == nil {
		return nil, errors.New("encoder, strategy and rng are required")
	}
	if dimension < 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	if opts.Warmup < 0 {
		return nil, fmt.Errorf("invalid warmup %d", opts.Warmup)
	}
	tracker, err := monitoring.NewAccuracyTracker(opts.Accuracy, opts.MetricWindow)
	if err != nil {
		return nil, err
	}
	m := &EndpointModel{
		endpoint: endpoint,
		encoder:  encoder,
		strategy: strategy,
		rng:      rng,
		warmup:   opts.Warmup,
		accuracy: tracker,
		metrics:  monitoring.NewModelMetrics(opts.MetricWindow),
	}
	if dimension > 0 {
		m.initialize(dimension)
	}
	return m, nil
}

func (m *EndpointModel) Endpoint() Endpoint {
	return m.endpoint
}

func (m *EndpointModel) StrategyName() string {
	return m.strategy.Name()
}

// Classify predicts the outcome of req.
func (m *EndpointModel) Classify(req Request) (ClassificationResult, error) {
	if err := m.checkEndpoint(req.Endpoint); err != nil {
		return NoOpinion(), err
	}
	if !m.encoder.AreAllGenesSupported(req) {
		return NoOpinion(), nil
	}
	x, err := m.encoder.Encode(req)
	if err != nil {
		return NoOpinion(), err
	}
	if len(x) == 0 {
		return NoOpinion(), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkDimension(len(x)); err != nil {
		return NoOpinion(), err
	}
	if m.observed < m.warmup {
		return Neutral(), nil
	}
	return m.strategy.Classify(x), nil
}

// Update learns from the observed status code of req.
func (m *EndpointModel) Update(req Request, statusCode int) error {
	if err := m.checkEndpoint(req.Endpoint); err != nil {
		return err
	}
	actual := LabelFromStatus(statusCode)

	if !m.encoder.AreAllGenesSupported(req) {
		m.mu.Lock()
		m.record(m.coinFlip(), actual)
		m.mu.Unlock()
		return nil
	}
	x, err := m.encoder.Encode(req)
	if err != nil {
		return err
	}
	if len(x) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkDimension(len(x)); err != nil {
		return err
	}
	var predicted Label
	if m.observed < m.warmup {
		predicted = m.coinFlip()
	} else {
		predicted = m.strategy.Classify(x).Prediction()
	}
	m.record(predicted, actual)
	m.strategy.Update(x, actual, m.rng)
	m.observed++
	return nil
}

// EstimateAccuracy returns the configured accuracy estimate, or 0.5 until the
// first outcome has been recorded.
func (m *EndpointModel) EstimateAccuracy() float64 {
	if m.metrics.Len() == 0 {
		return neutralAccuracy
	}
	return m.accuracy.EstimateAccuracy()
}

// Metrics returns the windowed confusion counts.
func (m *EndpointModel) Metrics() monitoring.ConfusionCounts {
	return m.metrics.Counts()
}

// Observed returns the number of samples the strategy has trained on.
func (m *EndpointModel) Observed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observed
}

// Dimension returns the frozen feature dimension, 0 if not yet fixed.
func (m *EndpointModel) Dimension() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dimension
}

func (m *EndpointModel) State() ModelState {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.dimension == 0:
		return StateUninitialized
	case m.observed < m.warmup:
		return StateWarmingUp
	default:
		return StateActive
	}
}

func (m *EndpointModel) initialize(dimension int) {
	m.dimension = dimension
	m.strategy.Init(dimension, m.rng)
}

// checkDimension must be called with mu held.
func (m *EndpointModel) checkDimension(n int) error {
	if m.dimension == 0 {
		m.initialize(n)
		return nil
	}
	if n != m.dimension {
		return fmt.Errorf("%s: expected %d features, got %d: %w", m.endpoint, m.dimension, n, ErrDimensionMismatch)
	}
	return nil
}

func (m *EndpointModel) checkEndpoint(e Endpoint) error {
	if e != m.endpoint {
		return fmt.Errorf("model for %s asked to handle %s: %w", m.endpoint, e, ErrEndpointMismatch)
	}
	return nil
}

// coinFlip must be called with mu held.
func (m *EndpointModel) coinFlip() Label {
	if m.rng.Intn(2) == 0 {
		return LabelRejected
	}
	return LabelAccepted
}

func (m *EndpointModel) record(predicted, actual Label) {
	m.accuracy.UpdatePerformance(predicted == actual)
	m.metrics.Update(predicted == LabelRejected, actual == LabelRejected)
}
