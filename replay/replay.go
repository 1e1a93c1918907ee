// Package replay streams recorded observations through a classifier in the
// order they were captured, as the fuzzer would have produced them.
package replay

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"rejectlearn/db"
	"rejectlearn/ml"
)

// EndpointReport summarizes one endpoint after a replay.
type EndpointReport struct {
	ml.EndpointSnapshot
	Samples       int `json:"samples"`
	Flagged       int `json:"flagged"`
	FlaggedIn400  int `json:"flagged_in_400"`
	RepairsGiven  int `json:"repairs_given"`
	RepairsDenied int `json:"repairs_denied"`
}

// Report is the outcome of a replay.
type Report struct {
	Model           string           `json:"model"`
	Total           int              `json:"total"`
	Flagged         int              `json:"flagged"`
	OverallAccuracy float64          `json:"overall_accuracy"`
	Duration        time.Duration    `json:"duration"`
	Endpoints       []EndpointReport `json:"endpoints"`
}

// Runner replays observations. The gate is optional; without it nothing is
// flagged.
type Runner struct {
	classifier *ml.Classifier
	gate       *ml.RepairGate
	model      string
	logger     *zap.SugaredLogger
}

func NewRunner(classifier *ml.Classifier, gate *ml.RepairGate, model string, logger *zap.SugaredLogger) (*Runner, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Runner{classifier: classifier, gate: gate, model: model, logger: logger}, nil
}

type tally struct {
	samples, flagged, flaggedIn400, repairsGiven, repairsDenied int
}

// Run classifies each observation before learning from it. A candidate whose
// observation was accepted gets its repair budget back. It stops between
// observations when ctx is cancelled and on the first contract error.
func (r *Runner) Run(ctx context.Context, observations []db.Observation) (*Report, error) {
	start := time.Now()
	tallies := make(map[ml.Endpoint]*tally)
	report := &Report{Model: r.model}

	for _, obs := range observations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		endpoint := obs.Request.Endpoint
		t, ok := tallies[endpoint]
		if !ok {
			t = &tally{}
			tallies[endpoint] = t
		}

		result, err := r.classifier.Classify(obs.Request)
		if err != nil {
			return nil, err
		}
		if r.gate != nil && r.gate.LikelyRejected(result, r.classifier.EstimateAccuracy(endpoint)) {
			t.flagged++
			report.Flagged++
			if ml.LabelFromStatus(obs.StatusCode) == ml.LabelRejected {
				t.flaggedIn400++
			}
			if obs.CandidateID != "" {
				if r.gate.TryRepair(obs.CandidateID) {
					t.repairsGiven++
				} else {
					t.repairsDenied++
				}
			}
		}

		if err := r.classifier.UpdateModel(obs.Request, obs.StatusCode); err != nil {
			return nil, err
		}
		if r.gate != nil && obs.CandidateID != "" && ml.LabelFromStatus(obs.StatusCode) == ml.LabelAccepted {
			r.gate.Forget(obs.CandidateID)
		}
		t.samples++
		report.Total++
	}

	for _, snap := range r.classifier.Snapshot() {
		t, ok := tallies[snap.Endpoint]
		if !ok {
			continue
		}
		report.Endpoints = append(report.Endpoints, EndpointReport{
			EndpointSnapshot: snap,
			Samples:          t.samples,
			Flagged:          t.flagged,
			FlaggedIn400:     t.flaggedIn400,
			RepairsGiven:     t.repairsGiven,
			RepairsDenied:    t.repairsDenied,
		})
	}
	report.OverallAccuracy = r.classifier.EstimateOverallAccuracy()
	report.Duration = time.Since(start)

	r.logger.Infow("replay finished",
		"model", r.model,
		"observations", report.Total,
		"endpoints", len(report.Endpoints),
		"flagged", report.Flagged,
		"overall_accuracy", report.OverallAccuracy,
		"duration", report.Duration)
	return report, nil
}

// Evaluations converts the report into journal rows: one per endpoint plus an
// overall row with an empty endpoint.
func (rep *Report) Evaluations() []db.Evaluation {
	now := time.Now().UTC()
	out := make([]db.Evaluation, 0, len(rep.Endpoints)+1)
	out = append(out, db.Evaluation{
		ModelName:   rep.Model,
		Samples:     rep.Total,
		Accuracy:    rep.OverallAccuracy,
		EvaluatedAt: now,
	})
	for _, e := range rep.Endpoints {
		out = append(out, db.Evaluation{
			ModelName:   rep.Model,
			Endpoint:    e.Endpoint.String(),
			Samples:     e.Samples,
			Accuracy:    e.Accuracy,
			Precision:   e.Metrics.Precision400,
			Recall:      e.Metrics.Recall400,
			F1:          e.Metrics.F1,
			MCC:         e.Metrics.MCC,
			EvaluatedAt: now,
		})
	}
	return out
}
