package git

import (
	"fmt"
	"strings"
)

// CommandError is returned when a git process exits non-zero or could not
// be started at all.
type CommandError struct {
	// Args are the arguments passed to git.
	Args []string

	// Stderr is the captured standard error of the process.
	Stderr string

	// ExitCode is the process exit code, or -1 if it never ran.
	ExitCode int

	// Err is the underlying exec error.
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}

	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
