package observability

import (
	"strconv"
	"sync"
	"time"
)

// RunOutcome labels how an assignment workflow run ended.
type RunOutcome string

const (
	RunOutcomeCompleted  RunOutcome = "completed"
	RunOutcomeAborted    RunOutcome = "aborted"
	RunOutcomeFailed     RunOutcome = "failed"
	RunOutcomeDuplicate  RunOutcome = "duplicate"
	RunOutcomeDegraded   RunOutcome = "degraded"
	RunOutcomeUnassigned RunOutcome = "unassigned"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	runCount     map[RunOutcome]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		runCount:     make(map[RunOutcome]int64),
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

// RecordRun increments workflow run outcome counters. A run may record more
// than one outcome (e.g. degraded and completed).
func (m *Metrics) RecordRun(outcome RunOutcome) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runCount[outcome]++
}

// RunCount reads a single outcome counter.
func (m *Metrics) RunCount(outcome RunOutcome) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCount[outcome]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
