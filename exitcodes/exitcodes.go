// Package exitcodes defines the standard exit codes used by op-resultsink.
package exitcodes

// Exit code constants used by op-resultsink
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every observed test passed and all reports were submitted
// * TestFailure (1): Used when the observed run contained failing tests
// * RuntimeErr (2): Used for runtime errors such as contract violations, broken
//   sink configuration or submission failures
const (
	Success     = 0 // All observed tests pass
	TestFailure = 1 // Observed test failures
	RuntimeErr  = 2 // Runtime errors
)
