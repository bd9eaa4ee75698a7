package metrics

import (
	"sync"
	"time"
)

// RecomputeMetrics tracks how often and how fast the dashboard recomputes.
type RecomputeMetrics struct {
	mu            sync.RWMutex
	total         int64
	byReason      map[string]int64
	lastDuration  time.Duration
	lastRows      int
	lastRecompute time.Time
	durations     *Histogram
}

// NewRecomputeMetrics creates an empty tracker.
func NewRecomputeMetrics() *RecomputeMetrics {
	return &RecomputeMetrics{
		byReason:  make(map[string]int64),
		durations: NewHistogram(1000),
	}
}

// Observe records one recompute.
func (m *RecomputeMetrics) Observe(reason string, d time.Duration, rows int) {
	m.durations.Record(d)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.byReason[reason]++
	m.lastDuration = d
	m.lastRows = rows
	m.lastRecompute = time.Now()
}

// Time runs fn and records its duration under reason. fn returns the row count.
func (m *RecomputeMetrics) Time(reason string, fn func() int) {
	start := time.Now()
	rows := fn()
	m.Observe(reason, time.Since(start), rows)
}

// RecomputeSnapshot is the JSON view served by the metrics endpoint.
type RecomputeSnapshot struct {
	Total          int64            `json:"total"`
	ByReason       map[string]int64 `json:"by_reason"`
	LastDurationMS float64          `json:"last_duration_ms"`
	LastRows       int              `json:"last_rows"`
	LastRecompute  time.Time        `json:"last_recompute"`
	Durations      Summary          `json:"durations"`
}

// Snapshot returns a copy of the current metrics.
func (m *RecomputeMetrics) Snapshot() RecomputeSnapshot {
	m.mu.RLock()
	byReason := make(map[string]int64, len(m.byReason))
	for k, v := range m.byReason {
		byReason[k] = v
	}
	snap := RecomputeSnapshot{
		Total:          m.total,
		ByReason:       byReason,
		LastDurationMS: float64(m.lastDuration.Microseconds()) / 1000.0,
		LastRows:       m.lastRows,
		LastRecompute:  m.lastRecompute,
	}
	m.mu.RUnlock()

	snap.Durations = m.durations.Summary()
	return snap
}
