// Package exitcodes defines the standard exit codes used by hhscan.
package exitcodes

// Exit code constants used by hhscan
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the command (or a coverage run's tests) succeeds
// * TestFailure (1): Used when a coverage run reports failing tests
// * RuntimeErr (2): Used for runtime errors such as bad configuration or panics
const (
	Success     = 0 // Command succeeded
	TestFailure = 1 // Coverage run had test failures
	RuntimeErr  = 2 // Runtime errors or misconfiguration
)
