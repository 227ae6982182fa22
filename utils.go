package resultsink

import (
	"fmt"
	"time"

	"github.com/ethereum-optimism/infra/op-resultsink/types"
)

// getResultString returns a string representing the test outcome
func getResultString(outcome types.Outcome) string {
	switch outcome {
	case types.OutcomePass:
		return "✓ pass"
	case types.OutcomeSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
