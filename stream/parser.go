// Package stream consumes go test -json event streams and finalizes
// one record per completed test case. It is the integration point with
// the host test runner: the runner's event stream drives a registered
// before/after callback pair, and the after callback receives the
// finalized result directly.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

// maxLineSize bounds a single test2json line. Test output lines are
// split by test2json itself, but generous headroom avoids scanner
// failures on long single-line dumps.
const maxLineSize = 1024 * 1024

// Hooks is the callback pair registered with the parser. CaseStarted
// fires when a test case begins; CaseFinished fires once per completed
// phase with the finalized result. A CaseFinished error aborts the
// stream.
type Hooks struct {
	CaseStarted  func(nodeID string)
	CaseFinished func(result types.CaseResult) error
}

// PathResolver maps a package import path and test function name to
// the source file defining the test. Implementations return an empty
// string when the file cannot be determined.
type PathResolver interface {
	TestFile(pkgPath, funcName string) string
}

// Parser tracks in-flight test cases across a test2json event stream.
type Parser struct {
	hooks    Hooks
	log      log.Logger
	resolver PathResolver

	cases map[string]*caseState
}

// caseState accumulates events for one in-flight test case.
type caseState struct {
	pkg    string
	name   string
	start  time.Time
	output strings.Builder
}

// NewParser creates a parser delivering finalized results to the given
// hooks. The resolver may be nil, in which case reported file paths
// are empty.
func NewParser(hooks Hooks, logger log.Logger, resolver PathResolver) *Parser {
	return &Parser{
		hooks:    hooks,
		log:      logger,
		resolver: resolver,
		cases:    make(map[string]*caseState),
	}
}

// Consume reads a test2json event stream to EOF, invoking the
// registered hooks as cases complete. Lines that are not valid JSON
// (e.g. build output) are skipped. An unrecognized terminal action is
// a contract violation with the host runner and aborts the stream.
func (p *Parser) Consume(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event TestEvent
		if err := json.Unmarshal(line, &event); err != nil {
			p.log.Debug("Skipping non-JSON stream line", "line", string(line))
			continue
		}

		if err := p.process(event); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read event stream: %w", err)
	}
	return nil
}

func (p *Parser) process(event TestEvent) error {
	switch event.Action {
	case ActionStart, ActionRun:
		p.startCase(event)
		return nil
	case ActionOutput:
		p.state(event).output.WriteString(event.Output)
		return nil
	case ActionPause, ActionCont, ActionBench:
		return nil
	default:
		return p.finalize(event)
	}
}

// startCase records the start time for a case and fires the before
// callback for test-level cases.
func (p *Parser) startCase(event TestEvent) {
	state := p.state(event)
	state.start = event.Time
	if event.Test != "" && p.hooks.CaseStarted != nil {
		p.hooks.CaseStarted(nodeID(event.Package, event.Test))
	}
}

// finalize classifies a terminal event and delivers the finalized
// result. Test-level completions are the case's call phase;
// package-level completions are the runner's own wrap-up and are
// delivered as teardown so downstream filtering can ignore them.
func (p *Parser) finalize(event TestEvent) error {
	outcome, err := types.OutcomeFromAction(event.Action)
	if err != nil {
		return fmt.Errorf("host runner contract violation: %w", err)
	}

	key := nodeID(event.Package, event.Test)
	state := p.state(event)
	delete(p.cases, key)

	phase := types.PhaseCall
	if event.Test == "" {
		phase = types.PhaseTeardown
	}

	result := types.CaseResult{
		NodeID:   key,
		Phase:    phase,
		Outcome:  outcome,
		Duration: caseDuration(state, event),
		Output:   state.output.String(),
		FilePath: p.filePath(event),
	}

	if p.hooks.CaseFinished == nil {
		return nil
	}
	return p.hooks.CaseFinished(result)
}

func (p *Parser) state(event TestEvent) *caseState {
	key := nodeID(event.Package, event.Test)
	state, ok := p.cases[key]
	if !ok {
		state = &caseState{pkg: event.Package, name: event.Test}
		p.cases[key] = state
	}
	return state
}

func (p *Parser) filePath(event TestEvent) string {
	if p.resolver == nil || event.Test == "" {
		return ""
	}
	// Subtests share the defining file of their root test function.
	rootName := event.Test
	if idx := strings.Index(rootName, "/"); idx != -1 {
		rootName = rootName[:idx]
	}
	return p.resolver.TestFile(event.Package, rootName)
}

// caseDuration prefers the start/end timestamp difference and falls
// back to the event's Elapsed field.
func caseDuration(state *caseState, event TestEvent) time.Duration {
	if !state.start.IsZero() && !event.Time.IsZero() {
		if d := event.Time.Sub(state.start); d >= 0 {
			return d
		}
	}
	if event.Elapsed > 0 {
		return time.Duration(event.Elapsed * float64(time.Second))
	}
	return 0
}

// nodeID builds the session-unique identifier for a test case.
func nodeID(pkg, test string) string {
	if test == "" {
		return pkg
	}
	return fmt.Sprintf("%s::%s", pkg, test)
}
