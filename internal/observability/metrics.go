package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides in-memory counters for request handling and the report
// lifecycle. A nil receiver is a no-op so callers never guard.
type Metrics struct {
	mu               sync.Mutex
	requestCount     map[string]int64
	errorCount       map[string]int64
	intakeRejections map[string]int64
	transitions      map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:     make(map[string]int64),
		errorCount:       make(map[string]int64),
		intakeRejections: make(map[string]int64),
		transitions:      make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordIntakeRejection counts a report submission refused by the intake
// gate, labeled by rejection reason.
func (m *Metrics) RecordIntakeRejection(reason string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intakeRejections[reason]++
}

// RecordTransition counts a report moved to a terminal state.
func (m *Metrics) RecordTransition(state string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[state]++
}

// IntakeRejections returns the rejection count for a reason label.
func (m *Metrics) IntakeRejections(reason string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intakeRejections[reason]
}

// Transitions returns the transition count for a target state.
func (m *Metrics) Transitions(state string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitions[state]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
