package resultsink

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-resultsink/flags"
)

// Config holds the application configuration
type Config struct {
	Input      string // Path to the event stream, "-" for stdin
	WorkDir    string // Module root for source path resolution, empty disables it
	TagsConfig string // Optional yaml file of static report tags
	Log        log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	input := ctx.String(flags.Input.Name)
	if input == "" {
		return nil, fmt.Errorf("input stream is required ('-' for stdin)")
	}

	return &Config{
		Input:      input,
		WorkDir:    ctx.String(flags.WorkDir.Name),
		TagsConfig: ctx.String(flags.TagsConfig.Name),
		Log:        log,
	}, nil
}
