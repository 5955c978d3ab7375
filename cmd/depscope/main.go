package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"depscope/internal/errors"
)

// errCheckFailed is returned when a --fail-on threshold is exceeded.
var errCheckFailed = stderrors.New("check failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad input, 3 for a failed --fail-on check and 1
// otherwise.
func exitCode(err error) int {
	switch {
	case errors.IsInvalidInput(err):
		return 2
	case stderrors.Is(err, errCheckFailed):
		return 3
	default:
		return 1
	}
}
