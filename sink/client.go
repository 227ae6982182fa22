// Package sink implements the client side of the result sink
// collector: environment-driven construction, synchronous report
// submission and session-scoped teardown.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

const (
	// reportPath is the collector endpoint for single test reports.
	reportPath = "/v1/test-results"

	// defaultTimeout bounds a single submission round trip.
	defaultTimeout = 30 * time.Second
)

// Client submits test reports to a result sink collector. Retries and
// batching policy belong here, not in the reporting hooks; the current
// implementation submits synchronously, one report per call.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	log          log.Logger
	tracer       trace.Tracer
	invocationID string

	closed atomic.Bool
}

// FromEnv attempts to construct a client from the ambient environment.
// It returns (nil, nil) when the environment carries no usable sink
// configuration; callers treat a nil client as reporting disabled.
// It never returns an error for "not configured".
func FromEnv(logger log.Logger) (*Client, error) {
	cfg, err := configFromEnv()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		logger.Debug("No result sink configured, reporting disabled")
		return nil, nil
	}
	return New(*cfg, logger), nil
}

// New constructs a client for the given collector configuration.
func New(cfg Config, logger log.Logger) *Client {
	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		log:          logger,
		tracer:       otel.Tracer("result sink"),
		invocationID: uuid.New().String(),
	}
}

// InvocationID identifies this client instance to the collector. All
// reports submitted through the client carry it.
func (c *Client) InvocationID() string {
	return c.invocationID
}

// Report synchronously submits a single test report to the collector.
// A non-2xx response is an error. The caller owns the decision of what
// a submission failure means for the session.
func (c *Client) Report(ctx context.Context, report types.TestReport) error {
	if c.closed.Load() {
		return fmt.Errorf("result sink client is closed")
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("report %s", report.TestID))
	defer span.End()

	payload, err := json.Marshal(struct {
		InvocationID string           `json:"invocationId"`
		Report       types.TestReport `json:"report"`
	}{
		InvocationID: c.invocationID,
		Report:       report,
	})
	if err != nil {
		return fmt.Errorf("failed to encode report for %s: %w", report.TestID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Address+reportPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build report request for %s: %w", report.TestID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ResultSink "+c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit report for %s: %w", report.TestID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("result sink rejected report for %s: status %d: %s", report.TestID, resp.StatusCode, string(body))
	}

	c.log.Debug("Report submitted", "test_id", report.TestID, "outcome", report.Outcome)
	return nil
}

// Close releases the client's transport. It is safe to call more than
// once; only the first call has any effect.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	c.log.Debug("Result sink client closed", "invocation_id", c.invocationID)
	return nil
}
