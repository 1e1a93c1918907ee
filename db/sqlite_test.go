package db

import (
	"path/filepath"
	"reflect"
	"testing"

	"rejectlearn/ml"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	return journal
}

func TestJournalRoundTripsObservations(t *testing.T) {
	journal := openTestJournal(t)
	req := ml.Request{
		Endpoint: ml.Endpoint{Method: "POST", Path: "/api/orders"},
		Params: []ml.Param{
			{Name: "qty", Value: ml.IntValue{V: 3, Bounds: &ml.Bounds{Min: 1, Max: 100}}},
			{Name: "express", Value: ml.BoolValue{V: true}},
			{Name: "currency", Value: ml.EnumValue{Index: 1, Size: 3}},
			{Name: "limit", Value: ml.OptionalValue{Present: true, Inner: ml.NumericStringValue{Text: "10"}}},
			{Name: "body", Value: ml.ObjectValue{Fields: []ml.Param{{Name: "note", Value: ml.StringValue{V: "hi"}}}}},
			{Name: "ids", Value: ml.ArrayValue{Items: []ml.Value{ml.LongValue{V: 7}}}},
			{Name: "price", Value: ml.FloatValue{V: 9.99}},
		},
	}
	id, err := journal.Append(Observation{CandidateID: "c-1", Request: req, StatusCode: 400})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := journal.Append(Observation{Request: ml.Request{Endpoint: req.Endpoint}, StatusCode: 201}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	observations, err := journal.Observations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}
	first := observations[0]
	if first.ID != id || first.CandidateID != "c-1" || first.StatusCode != 400 {
		t.Fatalf("unexpected observation: %+v", first)
	}
	if !reflect.DeepEqual(first.Request, req) {
		t.Fatalf("request changed in storage:\nwant %+v\ngot  %+v", req, first.Request)
	}
	if observations[1].StatusCode != 201 || len(observations[1].Request.Params) != 0 {
		t.Fatalf("unexpected second observation: %+v", observations[1])
	}
}

func TestJournalEvaluations(t *testing.T) {
	journal := openTestJournal(t)
	if err := journal.SaveEvaluation(Evaluation{ModelName: "kde", Endpoint: "GET /a", Samples: 10, Accuracy: 0.7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	evaluations, err := journal.Evaluations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evaluations) != 1 || evaluations[0].ModelName != "kde" || evaluations[0].Accuracy != 0.7 {
		t.Fatalf("unexpected evaluations: %+v", evaluations)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestEncodeParamsRejectsUnknownValue(t *testing.T) {
	type custom struct{ ml.BoolValue }
	if _, err := encodeParams([]ml.Param{{Name: "x", Value: custom{}}}); err == nil {
		t.Fatal("expected error for unknown value type")
	}
}
