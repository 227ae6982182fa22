package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

const (
	MetricsNamespace = "resultsink"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "reports_total",
		Help:      "Count of call-phase test cases observed, by outcome",
	}, []string{
		"session_id",
		"outcome",
	})

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "submissions_total",
		Help:      "Count of reports submitted to the result sink",
	}, []string{
		"session_id",
	})

	submissionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "submission_errors_total",
		Help:      "Count of failed report submissions",
	}, []string{
		"session_id",
	})

	sessionResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "session_results",
		Help:      "Overall result of a reporting session",
	}, []string{
		"session_id",
		"result",
	})

	sessionTestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "session_test_total",
		Help:      "Total number of call-phase test cases in a session",
	}, []string{
		"session_id",
	})

	sessionTestPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "session_test_passed",
		Help:      "Number of passed test cases in a session",
	}, []string{
		"session_id",
	})

	sessionTestFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "session_test_failed",
		Help:      "Number of failed test cases in a session",
	}, []string{
		"session_id",
	})

	sessionDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "session_duration_seconds",
		Help:      "Wall-clock duration of a reporting session",
	}, []string{
		"session_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordReport counts one observed call-phase test case.
func RecordReport(sessionID string, outcome types.Outcome) {
	if Debug {
		log.Debug("metric inc",
			"m", "reports_total",
			"session_id", sessionID,
			"outcome", outcome)
	}
	reportsTotal.WithLabelValues(sessionID, string(outcome)).Inc()
}

// RecordSubmission counts one report handed to the sink client.
func RecordSubmission(sessionID string) {
	submissionsTotal.WithLabelValues(sessionID).Inc()
}

// RecordSubmissionError counts one failed submission.
func RecordSubmissionError(sessionID string, err error) {
	if err == nil {
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "submission_errors_total",
			"session_id", sessionID,
			"error", err)
	}
	submissionErrorsTotal.WithLabelValues(sessionID).Inc()
}

// RecordSession records the aggregate outcome of a reporting session.
func RecordSession(
	sessionID string,
	result string,
	total int,
	passed int,
	failed int,
	duration time.Duration,
) {
	sessionResults.WithLabelValues(sessionID, result).Set(1)
	sessionTestTotal.WithLabelValues(sessionID).Add(float64(total))
	sessionTestPassed.WithLabelValues(sessionID).Add(float64(passed))
	sessionTestFailed.WithLabelValues(sessionID).Add(float64(failed))
	sessionDuration.WithLabelValues(sessionID).Set(duration.Seconds())
}
