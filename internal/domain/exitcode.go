package domain

// ExitCode represents the exit status of the checker.
type ExitCode int

const (
	// ExitClean indicates every check passed or was informational.
	ExitClean ExitCode = 0
	// ExitNeedsReview indicates at least one warning or error outcome.
	ExitNeedsReview ExitCode = 1
	// ExitError indicates the batch failed due to an error.
	ExitError ExitCode = 2
	// ExitInterrupted indicates the run was interrupted by a signal.
	ExitInterrupted ExitCode = 130
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
