package monitoring

import (
	"fmt"
	"sync"
)

// DefaultWindowSize is the number of recent outcomes kept by windowed trackers.
const DefaultWindowSize = 20

// AccuracyKind selects the accuracy estimator used by an endpoint model.
type AccuracyKind string

const (
	AccuracyFullHistory AccuracyKind = "full"
	AccuracyTimeWindow  AccuracyKind = "window"
)

// AccuracyTracker accumulates prediction outcomes and reports the fraction that
// were correct. An empty tracker reports 0.
type AccuracyTracker interface {
	UpdatePerformance(correct bool)
	EstimateAccuracy() float64
}

// NewAccuracyTracker builds the tracker for kind.
func NewAccuracyTracker(kind AccuracyKind, window int) (AccuracyTracker, error) {
	switch kind {
	case AccuracyFullHistory, "":
		return &FullHistoryAccuracy{}, nil
	case AccuracyTimeWindow:
		return NewTimeWindowAccuracy(window), nil
	default:
		return nil, fmt.Errorf("unsupported accuracy kind %q", kind)
	}
}

// FullHistoryAccuracy counts every outcome since creation.
type FullHistoryAccuracy struct {
	mu      sync.RWMutex
	correct int
	total   int
}

func (a *FullHistoryAccuracy) UpdatePerformance(correct bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if correct {
		a.correct++
	}
}

func (a *FullHistoryAccuracy) EstimateAccuracy() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}

// Total returns the number of recorded outcomes.
func (a *FullHistoryAccuracy) Total() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.total
}

// TimeWindowAccuracy keeps the most recent outcomes in a ring buffer. Before the
// window fills it reports over the outcomes seen so far.
type TimeWindowAccuracy struct {
	mu      sync.RWMutex
	window  []bool
	next    int
	size    int
	correct int
}

// NewTimeWindowAccuracy creates a tracker over the last size outcomes.
func NewTimeWindowAccuracy(size int) *TimeWindowAccuracy {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &TimeWindowAccuracy{window: make([]bool, size)}
}

func (a *TimeWindowAccuracy) UpdatePerformance(correct bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.size == len(a.window) {
		if a.window[a.next] {
			a.correct--
		}
	} else {
		a.size++
	}
	a.window[a.next] = correct
	if correct {
		a.correct++
	}
	a.next = (a.next + 1) % len(a.window)
}

func (a *TimeWindowAccuracy) EstimateAccuracy() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.size == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.size)
}

// Len returns how many outcomes the window currently holds.
func (a *TimeWindowAccuracy) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}
