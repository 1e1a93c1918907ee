package ml

import "sort"

// Label is the binary outcome the classifiers learn.
type Label int

const (
	// LabelRejected is an HTTP 400 response.
	LabelRejected Label = iota
	// LabelAccepted is any status other than 400.
	LabelAccepted
)

// Labels lists every label in a fixed order.
var Labels = []Label{LabelRejected, LabelAccepted}

// LabelFromStatus maps an observed status code to a label.
func LabelFromStatus(statusCode int) Label {
	if statusCode == 400 {
		return LabelRejected
	}
	return LabelAccepted
}

func (l Label) String() string {
	if l == LabelRejected {
		return "400"
	}
	return "not-400"
}

// MarshalText lets labels be used as JSON map keys.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ClassificationResult maps each label to a probability. It is never mutated
// after construction.
type ClassificationResult struct {
	probabilities map[Label]float64
	noOpinion     bool
}

// NewClassificationResult copies probs into a result. Missing labels read as 0.
func NewClassificationResult(probs map[Label]float64) ClassificationResult {
	copied := make(map[Label]float64, len(Labels))
	for _, l := range Labels {
		copied[l] = probs[l]
	}
	return ClassificationResult{probabilities: copied}
}

// Neutral is the 50/50 split returned while a model warms up or when its
// numbers degenerate.
func Neutral() ClassificationResult {
	return NewClassificationResult(map[Label]float64{LabelRejected: 0.5, LabelAccepted: 0.5})
}

// NoOpinion is returned for requests the classifier cannot reason about.
func NoOpinion() ClassificationResult {
	r := Neutral()
	r.noOpinion = true
	return r
}

// IsNoOpinion reports whether the result carries no information.
func (r ClassificationResult) IsNoOpinion() bool {
	return r.noOpinion
}

// Probability returns the probability of l.
func (r ClassificationResult) Probability(l Label) float64 {
	return r.probabilities[l]
}

// Probabilities returns a copy of the label map.
func (r ClassificationResult) Probabilities() map[Label]float64 {
	out := make(map[Label]float64, len(r.probabilities))
	for l, p := range r.probabilities {
		out[l] = p
	}
	return out
}

// Prediction returns the most probable label. Ties go to LabelRejected so that
// an undecided classifier errs toward repairing the candidate.
func (r ClassificationResult) Prediction() Label {
	best := LabelRejected
	bestP := r.probabilities[LabelRejected]
	labels := make([]Label, 0, len(r.probabilities))
	for l := range r.probabilities {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	for _, l := range labels {
		if r.probabilities[l] > bestP {
			best, bestP = l, r.probabilities[l]
		}
	}
	return best
}
