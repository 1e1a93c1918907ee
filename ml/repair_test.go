package ml

import (
	"math/rand"
	"testing"
)

func newTestGate(t *testing.T, cfg RepairConfig) *RepairGate {
	t.Helper()
	gate, err := NewRepairGate(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return gate
}

func TestRepairGateThreshold(t *testing.T) {
	gate := newTestGate(t, RepairConfig{Mode: DecisionThreshold, Threshold: 0.7, MinAccuracy: 0.6, MaxAttempts: 2})
	likely := NewClassificationResult(map[Label]float64{LabelRejected: 0.8, LabelAccepted: 0.2})
	unlikely := NewClassificationResult(map[Label]float64{LabelRejected: 0.6, LabelAccepted: 0.4})

	if !gate.LikelyRejected(likely, 0.9) {
		t.Fatal("expected rejection above threshold")
	}
	if gate.LikelyRejected(unlikely, 0.9) {
		t.Fatal("expected no rejection below threshold")
	}
	if gate.LikelyRejected(likely, 0.5) {
		t.Fatal("expected gate to ignore an inaccurate model")
	}
	if gate.LikelyRejected(NoOpinion(), 1) {
		t.Fatal("expected no opinion never to reject")
	}
}

func TestRepairGateProbability(t *testing.T) {
	gate := newTestGate(t, RepairConfig{Mode: DecisionProbability})
	certain := NewClassificationResult(map[Label]float64{LabelRejected: 1})
	never := NewClassificationResult(map[Label]float64{LabelAccepted: 1})
	half := Neutral()

	rejected := 0
	for i := 0; i < 1000; i++ {
		if !gate.LikelyRejected(certain, 1) {
			t.Fatal("expected P(400)=1 to always reject")
		}
		if gate.LikelyRejected(never, 1) {
			t.Fatal("expected P(400)=0 never to reject")
		}
		if gate.LikelyRejected(half, 1) {
			rejected++
		}
	}
	if rejected < 400 || rejected > 600 {
		t.Fatalf("expected about half rejections, got %d", rejected)
	}
}

func TestRepairGateAttemptBudget(t *testing.T) {
	gate := newTestGate(t, RepairConfig{Mode: DecisionThreshold, Threshold: 0.5, MaxAttempts: 3})
	for i := 0; i < 3; i++ {
		if !gate.TryRepair("candidate-1") {
			t.Fatalf("expected attempt %d to be allowed", i+1)
		}
	}
	if gate.TryRepair("candidate-1") {
		t.Fatal("expected budget to be spent")
	}
	if !gate.TryRepair("candidate-2") {
		t.Fatal("expected independent budget per candidate")
	}
	gate.Forget("candidate-1")
	if !gate.TryRepair("candidate-1") {
		t.Fatal("expected budget to reset after Forget")
	}
}

func TestRepairGateCacheEvictsOldCandidates(t *testing.T) {
	gate := newTestGate(t, RepairConfig{Mode: DecisionThreshold, Threshold: 0.5, MaxAttempts: 1, CacheSize: 2})
	gate.TryRepair("a")
	gate.TryRepair("b")
	gate.TryRepair("c")
	if !gate.TryRepair("a") {
		t.Fatal("expected evicted candidate to start over")
	}
}

func TestNewRepairGateValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewRepairGate(RepairConfig{Mode: "vote"}, rng); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, err := NewRepairGate(RepairConfig{Mode: DecisionThreshold, Threshold: 2}, rng); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
	if _, err := NewRepairGate(RepairConfig{Mode: DecisionThreshold}, nil); err == nil {
		t.Fatal("expected error for missing rng")
	}
}
