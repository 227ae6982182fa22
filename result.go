package resultsink

import (
	"fmt"
	"time"

	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

// SessionStats aggregates call-phase outcomes for a session.
type SessionStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// SessionResult captures everything observed during one reporting
// session, for the local summary and metrics.
type SessionResult struct {
	SessionID string
	Results   []types.CaseResult // call-phase cases, in completion order
	Stats     SessionStats
	Status    types.Outcome
	Duration  time.Duration
}

// NewSessionResult aggregates the observed call-phase cases.
func NewSessionResult(sessionID string, results []types.CaseResult, duration time.Duration) *SessionResult {
	stats := SessionStats{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case types.OutcomePass:
			stats.Passed++
		case types.OutcomeFail:
			stats.Failed++
		case types.OutcomeSkip:
			stats.Skipped++
		}
	}

	status := types.OutcomePass
	if stats.Failed > 0 {
		status = types.OutcomeFail
	} else if stats.Total > 0 && stats.Skipped == stats.Total {
		status = types.OutcomeSkip
	}

	return &SessionResult{
		SessionID: sessionID,
		Results:   results,
		Stats:     stats,
		Status:    status,
		Duration:  duration,
	}
}

// String returns a one-line summary of the session.
func (r *SessionResult) String() string {
	return fmt.Sprintf("Session %s: %d tests, %d passed, %d failed, %d skipped (%s) [%s]",
		r.SessionID, r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped,
		formatDuration(r.Duration), r.Status)
}
