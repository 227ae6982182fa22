package resultsink

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

// ResultFormatter is responsible for formatting and displaying session results.
type ResultFormatter interface {
	FormatResults(result *SessionResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
	}
}

// FormatResults renders the session's per-test outcomes as a table.
func (f *ConsoleResultFormatter) FormatResults(result *SessionResult) error {
	f.logger.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Test Reporting Session (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Test", "File", "Duration", "Outcome",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "File", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, r := range result.Results {
		t.AppendRow(table.Row{
			r.NodeID,
			r.FilePath,
			formatDuration(r.Duration),
			getResultString(r.Outcome),
		})
	}

	if result.Status == types.OutcomePass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else if result.Status == types.OutcomeSkip {
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d passed, %d failed, %d skipped", result.Stats.Passed, result.Stats.Failed, result.Stats.Skipped),
		formatDuration(result.Duration),
		getResultString(result.Status),
	})

	t.Render()
	return nil
}
