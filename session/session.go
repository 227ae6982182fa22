// Package session holds the reporting state for one test run: a sink
// client created at session start, read by every per-test report, and
// closed exactly once at session end. The session is an explicit
// object passed to both hook entry points; there is no ambient global
// state.
package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/ethereum-optimism/infra/op-resultsink/logging"
	"github.com/ethereum-optimism/infra/op-resultsink/metrics"
	"github.com/ethereum-optimism/infra/op-resultsink/sink"
	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

// SinkClient is the collaborator performing the actual transmission.
// Retries, batching and failure surfacing are owned by the client, not
// by the session.
type SinkClient interface {
	Report(ctx context.Context, report types.TestReport) error
	Close() error
}

// Session is the session-scoped reporting state. It is created once at
// session start and read-only afterwards; per-test hooks never mutate
// it. Close tears it down exactly once.
type Session struct {
	id     string
	log    log.Logger
	client SinkClient // nil when reporting is disabled
	tags   map[string]string
	start  time.Time

	closed atomic.Bool
}

// Start begins a reporting session, attempting to construct a sink
// client from the ambient environment. A missing or partial sink
// configuration disables reporting rather than failing the session.
func Start(logger log.Logger, tags map[string]string) (*Session, error) {
	client, err := sink.FromEnv(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize result sink client: %w", err)
	}
	if client == nil {
		// Keep the interface field nil rather than holding a typed nil.
		return New(logger, nil, tags), nil
	}
	return New(logger, client, tags), nil
}

// New creates a session around an existing client. A nil client means
// reporting is disabled; diagnostic logging still happens.
func New(logger log.Logger, client SinkClient, tags map[string]string) *Session {
	id := uuid.New().String()
	s := &Session{
		id:     id,
		log:    logger.New("session_id", id),
		client: client,
		tags:   tags,
		start:  time.Now(),
	}
	if client == nil {
		s.log.Info("Result sink not configured, reporting disabled")
	} else {
		s.log.Info("Result sink reporting enabled")
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Enabled reports whether a sink client is present.
func (s *Session) Enabled() bool {
	return s.client != nil
}

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time {
	return s.start
}

// ReportCase is the per-test reporting hook. It observes a finalized
// case result: only call-phase completions are reported, setup and
// teardown completions are ignored. When a client is present, exactly
// one synchronous submission happens per call-phase case; submission
// failures are returned to the caller unwrapped in any retry policy.
// A diagnostic log line is emitted regardless of client presence.
func (s *Session) ReportCase(ctx context.Context, result types.CaseResult) error {
	if result.Phase != types.PhaseCall {
		return nil
	}

	s.log.Info("Test case finished",
		"node_id", result.NodeID,
		"duration", result.Duration,
		"outcome", result.Outcome,
		"file", result.FilePath)
	metrics.RecordReport(s.id, result.Outcome)

	if s.client == nil {
		return nil
	}

	report := types.TestReport{
		TestID:         result.NodeID,
		Outcome:        result.Outcome,
		DurationMillis: result.DurationMillis(),
		Log:            logging.Sanitize(result.Output),
		FilePath:       result.FilePath,
		Tags:           s.tags,
	}

	metrics.RecordSubmission(s.id)
	if err := s.client.Report(ctx, report); err != nil {
		metrics.RecordSubmissionError(s.id, err)
		return err
	}
	return nil
}

// Close ends the session, releasing the sink client exactly once. It
// runs even when prior reports errored; a close failure is surfaced,
// never swallowed. Sessions without a client close without any client
// call.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	if s.client == nil {
		s.log.Debug("Session closed, no sink client to release")
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close result sink client: %w", err)
	}
	s.log.Debug("Session closed")
	return nil
}
