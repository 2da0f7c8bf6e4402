package slurm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// CommandResult captures the outcome of one subprocess invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands with a bounded timeout. A non-zero exit
// is reported through CommandResult; only transport failures (binary
// missing, timeout) are returned as errors.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*CommandResult, error)
}

type execRunner struct {
	timeout time.Duration
}

// NewRunner creates a Runner with the given per-command timeout.
func NewRunner(timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &execRunner{timeout: timeout}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("command timed out after %v: %s", r.timeout, name)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CommandResult{
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				ExitCode: exitErr.ExitCode(),
			}, nil
		}
		return nil, fmt.Errorf("command not found or failed to start: %s: %w", name, err)
	}

	return &CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}, nil
}
