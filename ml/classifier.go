package ml

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"sync"

	"go.uber.org/zap"

	"rejectlearn/monitoring"
)

// neutralAccuracy stands in for endpoints that have no model.
const neutralAccuracy = 0.5

// ClassifierConfig fixes the learning setup for a whole session.
type ClassifierConfig struct {
	Strategy StrategyConfig
	Encoder  EncoderMode
	Model    ModelOptions
	Seed     int64
}

// Classifier routes requests to one EndpointModel per endpoint, creating models
// on first sight. Endpoints whose parameters cannot be encoded are disabled for
// the rest of the session.
type Classifier struct {
	config  ClassifierConfig
	encoder *Encoder
	logger  *zap.SugaredLogger

	mu     sync.RWMutex
	models map[Endpoint]*EndpointModel
}

// NewClassifier validates config and returns an empty classifier.
func NewClassifier(config ClassifierConfig, logger *zap.SugaredLogger) (*Classifier, error) {
	encoder, err := NewEncoder(config.Encoder)
	if err != nil {
		return nil, err
	}
	if _, err := NewStrategy(config.Strategy); err != nil {
		return nil, err
	}
	if _, err := monitoring.NewAccuracyTracker(config.Model.Accuracy, config.Model.MetricWindow); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Classifier{
		config:  config,
		encoder: encoder,
		logger:  logger,
		models:  make(map[Endpoint]*EndpointModel),
	}, nil
}

// Classify predicts whether req will be rejected.
func (c *Classifier) Classify(req Request) (ClassificationResult, error) {
	m, err := c.modelFor(req)
	if err != nil || m == nil {
		return NoOpinion(), err
	}
	result, err := m.Classify(req)
	if err != nil {
		c.logger.Errorw("classify failed", "endpoint", req.Endpoint.String(), "error", err)
	}
	return result, err
}

// UpdateModel trains the endpoint's model with the observed status code.
func (c *Classifier) UpdateModel(req Request, statusCode int) error {
	m, err := c.modelFor(req)
	if err != nil || m == nil {
		return err
	}
	if err := m.Update(req, statusCode); err != nil {
		c.logger.Errorw("update failed", "endpoint", req.Endpoint.String(), "status", statusCode, "error", err)
		return err
	}
	return nil
}

// EstimateAccuracy returns the endpoint's accuracy, 0.5 when it has no model.
func (c *Classifier) EstimateAccuracy(endpoint Endpoint) float64 {
	c.mu.RLock()
	m := c.models[endpoint]
	c.mu.RUnlock()

	if m == nil {
		return neutralAccuracy
	}
	return m.EstimateAccuracy()
}

// EstimateOverallAccuracy averages every known endpoint, counting disabled ones
// as 0.5.
func (c *Classifier) EstimateOverallAccuracy() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.models) == 0 {
		return neutralAccuracy
	}
	sum := 0.0
	for _, m := range c.models {
		if m == nil {
			sum += neutralAccuracy
			continue
		}
		sum += m.EstimateAccuracy()
	}
	return sum / float64(len(c.models))
}

// Model returns the endpoint's model. ok is false for unseen and disabled
// endpoints.
func (c *Classifier) Model(endpoint Endpoint) (*EndpointModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m := c.models[endpoint]
	return m, m != nil
}

// EndpointSnapshot is a point-in-time view of one endpoint.
type EndpointSnapshot struct {
	Endpoint Endpoint                  `json:"endpoint"`
	Disabled bool                      `json:"disabled"`
	Strategy string                    `json:"strategy,omitempty"`
	State    string                    `json:"state"`
	Observed int                       `json:"observed"`
	Accuracy float64                   `json:"accuracy"`
	Metrics  monitoring.MetricsSummary `json:"metrics"`
}

// Snapshot lists every known endpoint ordered by method and path.
func (c *Classifier) Snapshot() []EndpointSnapshot {
	c.mu.RLock()
	entries := make(map[Endpoint]*EndpointModel, len(c.models))
	for e, m := range c.models {
		entries[e] = m
	}
	c.mu.RUnlock()

	out := make([]EndpointSnapshot, 0, len(entries))
	for e, m := range entries {
		out = append(out, describe(e, m))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Endpoint.String() < out[j].Endpoint.String()
	})
	return out
}

// Describe returns the snapshot for one endpoint. ok is false if it is unseen.
func (c *Classifier) Describe(endpoint Endpoint) (EndpointSnapshot, bool) {
	c.mu.RLock()
	m, ok := c.models[endpoint]
	c.mu.RUnlock()

	if !ok {
		return EndpointSnapshot{}, false
	}
	return describe(endpoint, m), true
}

func describe(e Endpoint, m *EndpointModel) EndpointSnapshot {
	if m == nil {
		return EndpointSnapshot{
			Endpoint: e,
			Disabled: true,
			State:    "disabled",
			Accuracy: neutralAccuracy,
		}
	}
	return EndpointSnapshot{
		Endpoint: e,
		Strategy: m.StrategyName(),
		State:    m.State().String(),
		Observed: m.Observed(),
		Accuracy: m.EstimateAccuracy(),
		Metrics:  m.Metrics().Summary(),
	}
}

// modelFor returns the model for req's endpoint, creating it under the write
// lock on first sight. It returns nil for disabled endpoints and for requests
// that carry no features yet.
func (c *Classifier) modelFor(req Request) (*EndpointModel, error) {
	c.mu.RLock()
	m, ok := c.models[req.Endpoint]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	supported := c.encoder.AreAllGenesSupported(req)
	var dimension int
	if supported {
		x, err := c.encoder.Encode(req)
		if err != nil {
			return nil, err
		}
		if len(x) == 0 {
			return nil, nil
		}
		dimension = len(x)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[req.Endpoint]; ok {
		return m, nil
	}
	if !supported {
		c.models[req.Endpoint] = nil
		c.logger.Infow("learning disabled for endpoint with unsupported parameters", "endpoint", req.Endpoint.String())
		return nil, nil
	}

	strategy, err := NewStrategy(c.config.Strategy)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(endpointSeed(c.config.Seed, req.Endpoint)))
	m, err = NewEndpointModel(req.Endpoint, c.encoder, strategy, dimension, rng, c.config.Model)
	if err != nil {
		return nil, err
	}
	c.models[req.Endpoint] = m
	c.logger.Infow("created endpoint model",
		"endpoint", req.Endpoint.String(),
		"strategy", strategy.Name(),
		"dimension", dimension,
		"warmup", c.config.Model.Warmup)
	return m, nil
}

// endpointSeed derives a per-endpoint seed so that each endpoint's random stream
// does not depend on the order endpoints are first seen.
func endpointSeed(seed int64, e Endpoint) int64 {
	h := fnv.New64a()
	h.Write([]byte(e.String()))
	return seed ^ int64(h.Sum64())
}
