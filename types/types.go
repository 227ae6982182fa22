package types

import (
	"fmt"
	"time"
)

// Outcome represents the classification of a completed test case.
// The set of outcomes is closed; the mapping from runner actions must
// never be extended silently.
type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
	OutcomeSkip Outcome = "SKIP"
)

// OutcomeFromAction maps a terminal test2json action to an Outcome.
// The mapping is total over {pass, fail, skip}. Any other action
// indicates a contract violation between this adapter and the host
// test runner (version mismatch or protocol drift) and is returned as
// an error rather than being swallowed.
func OutcomeFromAction(action string) (Outcome, error) {
	switch action {
	case "pass":
		return OutcomePass, nil
	case "fail":
		return OutcomeFail, nil
	case "skip":
		return OutcomeSkip, nil
	default:
		return "", fmt.Errorf("unrecognized test outcome action %q", action)
	}
}

// Phase identifies which part of a test case's execution just completed.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

// CaseResult is the finalized record for one completed test case phase.
// It is built once per completed phase, handed to the reporting hook,
// and then discarded; it has no persisted identity.
type CaseResult struct {
	NodeID   string // Unique identifier within the session, e.g. "pkg::TestName"
	Phase    Phase
	Outcome  Outcome
	Duration time.Duration
	Output   string // Captured log output
	FilePath string // Source file defining the test, may be empty
}

// DurationMillis returns the case duration as a whole number of
// milliseconds. Sub-millisecond remainders are truncated, so a
// duration of 0.0005s reports as 0. This is externally visible in
// submitted reports and must stay consistent.
func (r CaseResult) DurationMillis() int64 {
	return r.Duration.Milliseconds()
}

// TestReport is the payload submitted to the result sink for a single
// call-phase test case.
type TestReport struct {
	TestID         string            `json:"testId"`
	Outcome        Outcome           `json:"outcome"`
	DurationMillis int64             `json:"durationMs"`
	Log            string            `json:"log,omitempty"`
	FilePath       string            `json:"filePath,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
}
