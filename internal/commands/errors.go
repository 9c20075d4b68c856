package commands

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes shared by every command.
const (
	CodeOK       = 0
	CodeFailure  = 1
	CodeUsage    = 2
	CodeNotFound = 127
)

// ExitError carries a user-visible diagnostic and an exit code. The
// interpreter turns it into a pipeline stage's stderr.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Failf builds a generic failure (exit 1) prefixed with the command name.
func Failf(cmd, format string, args ...any) error {
	return &ExitError{Code: CodeFailure, Message: cmd + ": " + fmt.Sprintf(format, args...)}
}

// Usagef builds a usage error (exit 2) prefixed with the command name.
func Usagef(cmd, format string, args ...any) error {
	return &ExitError{Code: CodeUsage, Message: cmd + ": " + fmt.Sprintf(format, args...)}
}

// ErrNotFound builds the canonical missing-path diagnostic.
func ErrNotFound(cmd, path string) error {
	return &ExitError{Code: CodeFailure, Message: fmt.Sprintf("%s: %s: No such file or directory", cmd, path)}
}

// ErrIsDirectory reports a file operation applied to a folder.
func ErrIsDirectory(cmd, path string) error {
	return &ExitError{Code: CodeFailure, Message: fmt.Sprintf("%s: %s: Is a directory", cmd, path)}
}

// ErrNotDirectory reports a folder operation applied to a file.
func ErrNotDirectory(cmd, path string) error {
	return &ExitError{Code: CodeFailure, Message: fmt.Sprintf("%s: %s: Not a directory", cmd, path)}
}

// batch accumulates per-target diagnostics for commands that operate on
// several operands. The batch fails only when no target succeeded; with at
// least one success the diagnostics are still reported but the exit code
// stays zero.
type batch struct {
	msgs []string
	done int
}

func (b *batch) fail(err error) {
	b.msgs = append(b.msgs, err.Error())
}

func (b *batch) ok() { b.done++ }

func (b *batch) err() error {
	if len(b.msgs) == 0 {
		return nil
	}
	code := CodeFailure
	if b.done > 0 {
		code = CodeOK
	}
	return &ExitError{Code: code, Message: strings.Join(b.msgs, "\n")}
}

// ExitCode extracts the exit code from a command error.
func ExitCode(err error) int {
	if err == nil {
		return CodeOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return CodeFailure
}
