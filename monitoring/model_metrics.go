package monitoring

import (
	"math"
	"sync"
)

// ConfusionCounts is a 2x2 confusion table where the positive class is "400".
type ConfusionCounts struct {
	TP    int `json:"tp"`
	FP    int `json:"fp"`
	FN    int `json:"fn"`
	TN    int `json:"tn"`
	Total int `json:"total"`
}

func (c ConfusionCounts) Accuracy() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(c.Total)
}

func (c ConfusionCounts) Precision400() float64 {
	return ratio(c.TP, c.TP+c.FP)
}

func (c ConfusionCounts) Recall400() float64 {
	return ratio(c.TP, c.TP+c.FN)
}

func (c ConfusionCounts) F1() float64 {
	p, r := c.Precision400(), c.Recall400()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// MCC is the Matthews correlation coefficient, 0 when any marginal is empty.
func (c ConfusionCounts) MCC() float64 {
	a := float64(c.TP + c.FP)
	b := float64(c.TP + c.FN)
	d := float64(c.TN + c.FP)
	e := float64(c.TN + c.FN)
	if a == 0 || b == 0 || d == 0 || e == 0 {
		return 0
	}
	num := float64(c.TP*c.TN) - float64(c.FP*c.FN)
	return num / math.Sqrt(a*b*d*e)
}

// Summary flattens the derived metrics for reporting.
func (c ConfusionCounts) Summary() MetricsSummary {
	return MetricsSummary{
		Counts:       c,
		Accuracy:     c.Accuracy(),
		Precision400: c.Precision400(),
		Recall400:    c.Recall400(),
		F1:           c.F1(),
		MCC:          c.MCC(),
	}
}

// MetricsSummary is the JSON form of a confusion table and its scalars.
type MetricsSummary struct {
	Counts       ConfusionCounts `json:"counts"`
	Accuracy     float64         `json:"accuracy"`
	Precision400 float64         `json:"precision_400"`
	Recall400    float64         `json:"recall_400"`
	F1           float64         `json:"f1"`
	MCC          float64         `json:"mcc"`
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

type outcome struct {
	predicted400 bool
	actual400    bool
}

// ModelMetrics keeps a sliding window of (predicted, actual) pairs.
type ModelMetrics struct {
	mu     sync.RWMutex
	window []outcome
	next   int
	size   int
}

// NewModelMetrics creates a window of the given size.
func NewModelMetrics(size int) *ModelMetrics {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &ModelMetrics{window: make([]outcome, size)}
}

// Update records one outcome, evicting the oldest once the window is full.
func (m *ModelMetrics) Update(predicted400, actual400 bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.window[m.next] = outcome{predicted400: predicted400, actual400: actual400}
	m.next = (m.next + 1) % len(m.window)
	if m.size < len(m.window) {
		m.size++
	}
}

// Len returns the number of outcomes in the window.
func (m *ModelMetrics) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Counts tallies the window.
func (m *ModelMetrics) Counts() ConfusionCounts {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var c ConfusionCounts
	start := m.next - m.size
	if start < 0 {
		start += len(m.window)
	}
	for i := 0; i < m.size; i++ {
		o := m.window[(start+i)%len(m.window)]
		switch {
		case o.predicted400 && o.actual400:
			c.TP++
		case o.predicted400 && !o.actual400:
			c.FP++
		case !o.predicted400 && o.actual400:
			c.FN++
		default:
			c.TN++
		}
	}
	c.Total = m.size
	return c
}
