package sink

import (
	"encoding/json"
	"fmt"
	"os"
)

// Environment variables consulted when constructing a client. The
// context file takes precedence over the direct variables; both are
// optional.
const (
	EnvContextFile = "RESULT_SINK_CONTEXT"
	EnvAddress     = "RESULT_SINK_ADDRESS"
	EnvAuthToken   = "RESULT_SINK_AUTH_TOKEN"
)

// Config holds the connection parameters for the result sink collector.
type Config struct {
	// Address is the base URL of the collector, e.g. "http://127.0.0.1:62115".
	Address string `json:"address"`
	// AuthToken is sent with every submission.
	AuthToken string `json:"auth_token"`
}

// contextFile is the on-disk shape of the harness-provided context
// file pointed at by EnvContextFile.
type contextFile struct {
	ResultSink Config `json:"result_sink"`
}

// configFromEnv reads sink configuration from the ambient environment.
// A fully absent or partially present configuration yields (nil, nil):
// reporting is disabled, not broken. A context file that is set but
// unreadable or unparseable is an error, since that indicates a broken
// harness rather than a disabled environment.
func configFromEnv() (*Config, error) {
	if path := os.Getenv(EnvContextFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read result sink context file %s: %w", path, err)
		}
		var ctx contextFile
		if err := json.Unmarshal(data, &ctx); err != nil {
			return nil, fmt.Errorf("failed to parse result sink context file %s: %w", path, err)
		}
		if ctx.ResultSink.Address == "" || ctx.ResultSink.AuthToken == "" {
			return nil, nil
		}
		return &ctx.ResultSink, nil
	}

	cfg := Config{
		Address:   os.Getenv(EnvAddress),
		AuthToken: os.Getenv(EnvAuthToken),
	}
	if cfg.Address == "" || cfg.AuthToken == "" {
		return nil, nil
	}
	return &cfg, nil
}
