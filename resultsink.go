// Package resultsink forwards test results from a host runner's event
// stream to a result sink collector. It owns the reporting session
// lifecycle: client acquisition at session start, one report per
// completed test case, client release at session end.
package resultsink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"

	"github.com/ethereum-optimism/infra/op-resultsink/exitcodes"
	"github.com/ethereum-optimism/infra/op-resultsink/session"
	"github.com/ethereum-optimism/infra/op-resultsink/srcpath"
	"github.com/ethereum-optimism/infra/op-resultsink/stream"
	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

// resultSink implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &resultSink{}

// resultSink is the reporting service: it consumes one event stream,
// reports through one session, and exits.
type resultSink struct {
	ctx       context.Context
	config    *Config
	version   string
	formatter ResultFormatter
	reporter  MetricsReporter
	result    *SessionResult

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*resultSink, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating result sink service",
		"input", config.Input,
		"workDir", config.WorkDir,
		"tagsConfig", config.TagsConfig)

	return &resultSink{
		ctx:              ctx,
		config:           config,
		version:          version,
		formatter:        NewConsoleResultFormatter(config.Log),
		reporter:         NewDefaultMetricsReporter(),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start consumes the configured event stream and reports every
// completed call-phase test case through a fresh session.
// Start implements the cliapp.Lifecycle interface.
func (r *resultSink) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if rec := recover(); rec != nil {
			r.config.Log.Error("Runtime error occurred", "error", rec)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	r.ctx = ctx
	r.running.Store(true)
	r.config.Log.Info("Starting op-resultsink", "input", r.config.Input)

	err := r.run(ctx)
	if err != nil {
		if IsTestFailureError(err) {
			r.config.Log.Warn("Session completed with test failures")
			return err
		}
		r.config.Log.Error("Runtime error during session", "error", err)
		return NewRuntimeError(err)
	}

	r.config.Log.Info("Session completed, exiting")
	go func() {
		r.shutdownCallback(nil)
	}()
	return nil
}

// run performs one complete reporting session over the input stream.
func (r *resultSink) run(ctx context.Context) error {
	input, closeInput, err := r.openInput()
	if err != nil {
		return err
	}
	defer closeInput()

	tagCfg, err := types.LoadTagConfig(r.config.TagsConfig)
	if err != nil {
		return err
	}

	sess, err := session.Start(r.config.Log, tagCfg.Tags)
	if err != nil {
		return err
	}

	var resolver stream.PathResolver
	if r.config.WorkDir != "" {
		resolver = srcpath.NewResolver(r.config.WorkDir, r.config.Log)
	}

	var observed []types.CaseResult
	parser := stream.NewParser(stream.Hooks{
		CaseStarted: func(nodeID string) {
			r.config.Log.Debug("Test case started", "node_id", nodeID)
		},
		CaseFinished: func(result types.CaseResult) error {
			if result.Phase == types.PhaseCall {
				observed = append(observed, result)
			}
			return sess.ReportCase(ctx, result)
		},
	}, r.config.Log, resolver)

	consumeErr := parser.Consume(input)

	// The session closes regardless of how consumption went; a
	// session-scoped client must not leak.
	closeErr := sess.Close()

	r.result = NewSessionResult(sess.ID(), observed, time.Since(sess.StartedAt()))
	if err := r.formatter.FormatResults(r.result); err != nil {
		r.config.Log.Error("Failed to format results", "error", err)
	}
	fmt.Println(r.result.String())
	r.reporter.ReportResults(sess.ID(), r.result)
	r.config.Log.Info("Session finished",
		"session_id", sess.ID(),
		"status", r.result.Status,
		"reported", sess.Enabled())

	if consumeErr != nil {
		return consumeErr
	}
	if closeErr != nil {
		return closeErr
	}
	if r.result.Status == types.OutcomeFail {
		return NewTestFailureError(r.result.String())
	}
	return nil
}

// openInput opens the configured event stream, "-" meaning stdin.
func (r *resultSink) openInput() (io.Reader, func(), error) {
	if r.config.Input == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(r.config.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input stream %s: %w", r.config.Input, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// Stop stops the op-resultsink service.
// Stop implements the cliapp.Lifecycle interface.
func (r *resultSink) Stop(ctx context.Context) error {
	r.config.Log.Info("Stopping op-resultsink")

	if !r.running.Load() {
		r.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}
	r.running.Store(false)

	r.config.Log.Info("op-resultsink stopped successfully")
	return nil
}

// Stopped returns true if the op-resultsink service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (r *resultSink) Stopped() bool {
	return !r.running.Load()
}

// Result returns the aggregated result of the last completed session.
func (r *resultSink) Result() *SessionResult {
	return r.result
}
