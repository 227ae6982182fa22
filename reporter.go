package resultsink

import (
	"github.com/ethereum-optimism/infra/op-resultsink/metrics"
)

// MetricsReporter is responsible for reporting metrics from session results.
type MetricsReporter interface {
	ReportResults(sessionID string, result *SessionResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the session results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(sessionID string, result *SessionResult) {
	metrics.RecordSession(
		sessionID,
		string(result.Status),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Duration,
	)
}
