package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_RESULTSINK"

var (
	Input = &cli.StringFlag{
		Name:    "input",
		Value:   "-",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "INPUT"),
		Usage:   "Path to the 'go test -json' event stream to consume ('-' for stdin)",
	}
	WorkDir = &cli.StringFlag{
		Name:    "workdir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "WORKDIR"),
		Usage:   "Module root of the tested code, used to resolve test source file paths. Leave empty to skip path resolution.",
	}
	TagsConfig = &cli.StringFlag{
		Name:    "tags-config",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TAGS_CONFIG"),
		Usage:   "Path to a yaml file of static tags attached to every submitted report (eg. 'tags.yaml')",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Input,
	WorkDir,
	TagsConfig,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
