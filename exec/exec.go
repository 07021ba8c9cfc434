// Package exec runs external version-control commands.
// It provides a request/response Runner for one-shot
// commands and a Streamer for long-running commands
// whose output is consumed record by record.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes a command and returns its captured
// standard output. On non-zero exit the returned error
// is a *CommandError carrying the raw stderr text.
type Runner interface {
	Run(
		ctx context.Context,
		name string,
		arg ...string,
	) (string, error)
}

// CommandError is the failure of an external command.
// Error() returns the raw stderr text when present, so
// callers can match on the tool's own phrasing.
type CommandError struct {
	// Name is the executed program.
	Name string
	// Args are the program arguments.
	Args []string
	// Stderr is the captured standard error text.
	Stderr string
	// Err is the underlying process error.
	Err error
}

// Error returns the trimmed stderr text, falling back
// to a command/error description when stderr is empty.
func (e *CommandError) Error() string {
	if txt := strings.TrimSpace(e.Stderr); txt != "" {
		return txt
	}

	return fmt.Sprintf(
		"%s %s: %v",
		e.Name, strings.Join(e.Args, " "), e.Err,
	)
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// CLI runs commands with os/exec. Dir is the working
// directory; empty means the current directory.
type CLI struct {
	// Dir is the working directory for every command.
	Dir string
}

// Run executes the named command and returns its
// standard output.
func (c CLI) Run(
	ctx context.Context,
	name string,
	arg ...string,
) (string, error) {
	slog.Info(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
	)

	cmd := exec.CommandContext(ctx, name, arg...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Name:   name,
			Args:   arg,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return stdout.String(), nil
}
