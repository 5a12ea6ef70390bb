package metrics

import "time"

// Global functions for dot-import usage

// MetricDuration records a duration
func MetricDuration(topic, function string, duration time.Duration) {
	GetInstance().RecordDuration(topic, function, duration)
}

// MetricSince records the time elapsed since start
func MetricSince(topic, function string, start time.Time) {
	GetInstance().RecordDuration(topic, function, time.Since(start))
}

// MetricSuccess records a successful operation
func MetricSuccess(topic, operation string) {
	GetInstance().RecordSuccess(topic, operation)
}

// MetricFailWithReason records a failed operation
func MetricFailWithReason(topic, operation, reason string) {
	GetInstance().RecordFailure(topic, operation, reason)
}

// MetricOutcome records a specific outcome
func MetricOutcome(topic, operation, outcome string) {
	GetInstance().RecordOutcome(topic, operation, outcome)
}

// MetricSummary renders the process-wide metrics
func MetricSummary() []string {
	return GetInstance().Summary()
}
