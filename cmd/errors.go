package cmd

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitUsage      = 1
	ExitIncomplete = 2
	ExitFindings   = 3
)

// exitCoder is implemented by errors that select their own exit code.
type exitCoder interface {
	ExitCode() int
}

// InvalidTargetError reports a URL that cannot be scanned.
type InvalidTargetError struct {
	Input string
	Err   error
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: %v", e.Input, e.Err)
}

func (e *InvalidTargetError) Unwrap() error { return e.Err }

func (e *InvalidTargetError) ExitCode() int { return ExitUsage }

// ScanIncompleteError signals that at least one check ended in error.
type ScanIncompleteError struct {
	Errors int
	Total  int
}

func (e *ScanIncompleteError) Error() string {
	return fmt.Sprintf("scan incomplete: %d of %d checks ended in error", e.Errors, e.Total)
}

func (e *ScanIncompleteError) ExitCode() int { return ExitIncomplete }

// FindingsError signals failed checks when --fail-on-findings is set.
type FindingsError struct {
	Failures int
	Total    int
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%d of %d checks failed", e.Failures, e.Total)
}

func (e *FindingsError) ExitCode() int { return ExitFindings }

// exitCodeFor maps an error returned by a command onto a process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitUsage
}
