package ml

import (
	"math/rand"
	"testing"
)

var testEndpoint = Endpoint{Method: "POST", Path: "/api/orders"}

func floatRequest(e Endpoint, values ...float64) Request {
	params := make([]Param, len(values))
	for i, v := range values {
		params[i] = Param{Name: "p" + string(rune('a'+i)), Value: FloatValue{V: v}}
	}
	return Request{Endpoint: e, Params: params}
}

func newTestModel(t *testing.T, modelType ModelType, warmup int, seed int64) *EndpointModel {
	t.Helper()
	encoder, err := NewEncoder(EncoderRaw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strategy, err := NewStrategy(StrategyConfig{Type: modelType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, err := NewEndpointModel(testEndpoint, encoder, strategy, 0, rand.New(rand.NewSource(seed)), ModelOptions{Warmup: warmup})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model
}

// trainClusters feeds two unit-variance 1-D clusters: 400 around -10 and
// not-400 around +10.
func trainClusters(t *testing.T, model *EndpointModel, perClass int) {
	t.Helper()
	noise := rand.New(rand.NewSource(42))
	for i := 0; i < perClass; i++ {
		if err := model.Update(floatRequest(testEndpoint, -10+noise.NormFloat64()), 400); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := model.Update(floatRequest(testEndpoint, 10+noise.NormFloat64()), 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
