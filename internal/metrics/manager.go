// Package metrics keeps in-process timings and outcome counts for tool calls
// and page selection. Nothing is persisted; the summary is logged at shutdown.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxSamples = 200 // for percentiles

// TimingMetric tracks timing statistics
type TimingMetric struct {
	Count     int64
	Total     time.Duration
	Min       time.Duration
	Max       time.Duration
	Last      time.Duration
	samples   []time.Duration
	sampleIdx int
}

// SuccessFailMetric counts successes and failures
type SuccessFailMetric struct {
	Success        int64
	Failures       int64
	FailureReasons map[string]int64
}

// OutcomeMetric counts named outcomes
type OutcomeMetric struct {
	Outcomes map[string]int64
	Last     string
}

// Snapshot is a point-in-time view of one metric path
type Snapshot struct {
	Path     string           `json:"path"`
	Count    int64            `json:"count,omitempty"`
	AvgMs    float64          `json:"avgMs,omitempty"`
	MaxMs    float64          `json:"maxMs,omitempty"`
	P95Ms    float64          `json:"p95Ms,omitempty"`
	Success  int64            `json:"success,omitempty"`
	Failures int64            `json:"failures,omitempty"`
	Reasons  map[string]int64 `json:"reasons,omitempty"`
	Outcomes map[string]int64 `json:"outcomes,omitempty"`
}

// Manager holds all metrics
type Manager struct {
	mu          sync.Mutex
	timings     map[string]*TimingMetric
	successFail map[string]*SuccessFailMetric
	outcomes    map[string]*OutcomeMetric
}

var (
	instance *Manager
	once     sync.Once
)

// GetInstance returns the process-wide manager
func GetInstance() *Manager {
	once.Do(func() {
		instance = NewManager()
	})
	return instance
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{
		timings:     make(map[string]*TimingMetric),
		successFail: make(map[string]*SuccessFailMetric),
		outcomes:    make(map[string]*OutcomeMetric),
	}
}

func buildPath(topic, function string) string {
	if function == "" {
		return topic
	}
	return topic + "/" + function
}

// RecordDuration records one timed operation
func (m *Manager) RecordDuration(topic, function string, d time.Duration) {
	path := buildPath(topic, function)

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timings[path]
	if !ok {
		t = &TimingMetric{Min: d, Max: d, samples: make([]time.Duration, 0, maxSamples)}
		m.timings[path] = t
	}
	t.Count++
	t.Total += d
	t.Last = d
	if d < t.Min {
		t.Min = d
	}
	if d > t.Max {
		t.Max = d
	}

	// ring buffer
	if len(t.samples) < maxSamples {
		t.samples = append(t.samples, d)
	} else {
		t.samples[t.sampleIdx] = d
		t.sampleIdx = (t.sampleIdx + 1) % maxSamples
	}
}

// RecordSuccess records a successful operation
func (m *Manager) RecordSuccess(topic, function string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successFailFor(buildPath(topic, function)).Success++
}

// RecordFailure records a failed operation with an optional reason
func (m *Manager) RecordFailure(topic, function, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sf := m.successFailFor(buildPath(topic, function))
	sf.Failures++
	if reason != "" {
		sf.FailureReasons[reason]++
	}
}

func (m *Manager) successFailFor(path string) *SuccessFailMetric {
	sf, ok := m.successFail[path]
	if !ok {
		sf = &SuccessFailMetric{FailureReasons: make(map[string]int64)}
		m.successFail[path] = sf
	}
	return sf
}

// RecordOutcome counts one occurrence of outcome
func (m *Manager) RecordOutcome(topic, function, outcome string) {
	path := buildPath(topic, function)

	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.outcomes[path]
	if !ok {
		o = &OutcomeMetric{Outcomes: make(map[string]int64)}
		m.outcomes[path] = o
	}
	o.Outcomes[outcome]++
	o.Last = outcome
}

// GetSnapshot returns one entry per path, sorted by path
func (m *Manager) GetSnapshot() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	byPath := make(map[string]*Snapshot)
	get := func(path string) *Snapshot {
		s, ok := byPath[path]
		if !ok {
			s = &Snapshot{Path: path}
			byPath[path] = s
		}
		return s
	}

	for path, t := range m.timings {
		s := get(path)
		s.Count = t.Count
		s.AvgMs = ms(t.Total) / float64(t.Count)
		s.MaxMs = ms(t.Max)
		s.P95Ms = percentile(t.samples, 95)
	}
	for path, sf := range m.successFail {
		s := get(path)
		s.Success = sf.Success
		s.Failures = sf.Failures
		if len(sf.FailureReasons) > 0 {
			s.Reasons = make(map[string]int64, len(sf.FailureReasons))
			for k, v := range sf.FailureReasons {
				s.Reasons[k] = v
			}
		}
	}
	for path, o := range m.outcomes {
		s := get(path)
		s.Outcomes = make(map[string]int64, len(o.Outcomes))
		for k, v := range o.Outcomes {
			s.Outcomes[k] = v
		}
	}

	out := make([]Snapshot, 0, len(byPath))
	for _, s := range byPath {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Summary renders the snapshot one line per path
func (m *Manager) Summary() []string {
	var lines []string
	for _, s := range m.GetSnapshot() {
		var parts []string
		if s.Count > 0 {
			parts = append(parts, fmt.Sprintf("n=%d avg=%.0fms p95=%.0fms max=%.0fms", s.Count, s.AvgMs, s.P95Ms, s.MaxMs))
		}
		if s.Success+s.Failures > 0 {
			parts = append(parts, fmt.Sprintf("ok=%d failed=%d", s.Success, s.Failures))
		}
		if len(s.Reasons) > 0 {
			parts = append(parts, "("+strings.Join(counts(s.Reasons), " ")+")")
		}
		parts = append(parts, counts(s.Outcomes)...)
		lines = append(lines, s.Path+": "+strings.Join(parts, " "))
	}
	return lines
}

// counts renders k=v pairs sorted by key
func counts(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return out
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func percentile(samples []time.Duration, p int) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted)*p + 99) / 100
	if idx > 0 {
		idx--
	}
	return ms(sorted[idx])
}
