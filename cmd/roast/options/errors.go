// Package options holds the flag plumbing shared by the roast subcommands.
package options

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	exitCodeFailure = 1
	exitCodeUsage   = 2
)

type exitCoder interface {
	ExitCode() int
}

// UsageError marks an invalid invocation.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }
func (e *UsageError) ExitCode() int { return exitCodeUsage }

// Usage wraps err as a UsageError. A nil err stays nil.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// Usagef formats a UsageError.
func Usagef(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ExitCode maps err to a process exit status: 0 for nil, the code carried
// by err when it has one, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		if c := ec.ExitCode(); c != 0 {
			return c
		}
	}
	return exitCodeFailure
}

// NoArgs rejects positional arguments with a UsageError.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return Usagef("unknown argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
