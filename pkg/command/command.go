package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command is an external tool invocation. Args are passed to the process
// as-is; nothing is split or interpreted by a shell.
type Command struct {
	Name string
	Args []string

	// Env is appended to the current process environment
	Env []string
}

// String renders the command for logs
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of running a Command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int

	// Err is set when the process could not be started or was killed.
	// A process that ran and exited non-zero has Err == nil.
	Err error
}

// Success reports whether the command ran and exited with status 0
func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Reason returns the most useful failure text for logs
func (r Result) Reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Stderr != "":
		return r.Stderr
	case r.ExitCode != 0:
		return fmt.Sprintf("exit status %d", r.ExitCode)
	}
	return ""
}

// Runner executes commands
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands as local subprocesses
type ExecRunner struct{}

// NewExecRunner creates a new subprocess runner
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes cmd and waits for it to exit
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	if cmd.Name == "" {
		return Result{ExitCode: -1, Err: errors.New("no command specified")}
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.ExitCode = -1
		result.Err = fmt.Errorf("%s: %w", cmd, ctx.Err())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		result.Err = fmt.Errorf("failed to run %s: %w", cmd, err)
	}

	return result
}
