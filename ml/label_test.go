package ml

import "testing"

func TestLabelFromStatus(t *testing.T) {
	if LabelFromStatus(400) != LabelRejected {
		t.Fatal("expected 400 to be rejected")
	}
	for _, code := range []int{200, 201, 401, 404, 500} {
		if LabelFromStatus(code) != LabelAccepted {
			t.Fatalf("expected %d to be accepted", code)
		}
	}
	if LabelRejected.String() != "400" || LabelAccepted.String() != "not-400" {
		t.Fatalf("unexpected label names: %s %s", LabelRejected, LabelAccepted)
	}
}

func TestPredictionTieFavoursRejected(t *testing.T) {
	if got := Neutral().Prediction(); got != LabelRejected {
		t.Fatalf("expected tie to go to 400, got %s", got)
	}
	r := NewClassificationResult(map[Label]float64{LabelRejected: 0.3, LabelAccepted: 0.7})
	if got := r.Prediction(); got != LabelAccepted {
		t.Fatalf("expected not-400, got %s", got)
	}
}

func TestClassificationResultIsImmutable(t *testing.T) {
	probs := map[Label]float64{LabelRejected: 1}
	r := NewClassificationResult(probs)
	probs[LabelRejected] = 0
	copied := r.Probabilities()
	copied[LabelRejected] = 0

	if r.Probability(LabelRejected) != 1 {
		t.Fatalf("result changed through external map: %v", r.Probabilities())
	}
	if _, ok := r.Probabilities()[LabelAccepted]; !ok {
		t.Fatal("expected missing label to be zero-filled")
	}
}

func TestNoOpinion(t *testing.T) {
	r := NoOpinion()
	if !r.IsNoOpinion() {
		t.Fatal("expected no opinion")
	}
	if Neutral().IsNoOpinion() {
		t.Fatal("neutral split is not a no-opinion result")
	}
	if r.Probability(LabelRejected) != 0.5 || r.Probability(LabelAccepted) != 0.5 {
		t.Fatalf("unexpected probabilities: %v", r.Probabilities())
	}
}
