package ml

import (
	"fmt"
	"math/rand"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DecisionMode selects how a classification becomes a reject/accept call.
type DecisionMode string

const (
	// DecisionProbability rejects with probability P(400).
	DecisionProbability DecisionMode = "probability"
	// DecisionThreshold rejects when P(400) reaches the threshold.
	DecisionThreshold DecisionMode = "threshold"
)

// RepairConfig configures a RepairGate.
type RepairConfig struct {
	Mode        DecisionMode
	Threshold   float64
	MinAccuracy float64
	MaxAttempts int
	CacheSize   int
}

// RepairGate decides whether a candidate should be repaired before it is sent,
// and caps the repair attempts spent on any single candidate.
type RepairGate struct {
	config   RepairConfig
	mu       sync.Mutex
	rng      *rand.Rand
	attempts *lru.Cache[string, int]
}

// NewRepairGate validates config. rng drives DecisionProbability.
func NewRepairGate(config RepairConfig, rng *rand.Rand) (*RepairGate, error) {
	switch config.Mode {
	case DecisionProbability, DecisionThreshold:
	default:
		return nil, fmt.Errorf("unsupported decision mode %q", config.Mode)
	}
	if config.Threshold < 0 || config.Threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0,1]", config.Threshold)
	}
	if config.MaxAttempts < 0 {
		return nil, fmt.Errorf("invalid max attempts %d", config.MaxAttempts)
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 4096
	}
	if rng == nil {
		return nil, fmt.Errorf("rng is required")
	}
	cache, err := lru.New[string, int](config.CacheSize)
	if err != nil {
		return nil, err
	}
	return &RepairGate{config: config, rng: rng, attempts: cache}, nil
}

// LikelyRejected reports whether result, coming from a model with the given
// accuracy, says the request should not be sent as is.
func (g *RepairGate) LikelyRejected(result ClassificationResult, accuracy float64) bool {
	if result.IsNoOpinion() || accuracy < g.config.MinAccuracy {
		return false
	}
	p := result.Probability(LabelRejected)
	if g.config.Mode == DecisionThreshold {
		return p >= g.config.Threshold
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < p
}

// TryRepair consumes one repair attempt for candidateID. It returns false once
// the candidate has used up its budget.
func (g *RepairGate) TryRepair(candidateID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	used, _ := g.attempts.Get(candidateID)
	if used >= g.config.MaxAttempts {
		return false
	}
	g.attempts.Add(candidateID, used+1)
	return true
}

// Forget drops the attempt count of candidateID.
func (g *RepairGate) Forget(candidateID string) {
	g.attempts.Remove(candidateID)
}
