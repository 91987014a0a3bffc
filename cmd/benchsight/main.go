package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Analysis produced
	ExitNoData  = 1 // Results directory absent or no epoch parsed
	ExitError   = 2 // Configuration or runtime error
)

// NoDataError indicates the invocation was well-formed but there was
// nothing to analyze: the results directory is missing or no epoch parsed
// across all challenges.
type NoDataError struct {
	Message string
}

func (e *NoDataError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var noDataErr *NoDataError
		if errors.As(err, &noDataErr) {
			os.Exit(ExitNoData)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
