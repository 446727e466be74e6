// Package verify drives the autodiscovery handshake that every installed
// tool must pass before it is exposed as usable.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrTimeout marks an invocation killed for exceeding its wall-clock budget.
var ErrTimeout = errors.New("invocation timed out")

// Invocation captures one child-process run of a tool artifact.
type Invocation struct {
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner invokes a tool artifact with a single argument and a hard timeout.
// The process error (if any) is returned alongside the captured output, since
// conforming tools may exit non-zero while still printing structured JSON.
type Runner interface {
	Run(ctx context.Context, script, arg string, timeout time.Duration) (*Invocation, error)
}

// ExecRunner runs artifacts under an interpreter ("python3" by default).
type ExecRunner struct {
	Interpreter string
}

func (r *ExecRunner) Run(ctx context.Context, script, arg string, timeout time.Duration) (*Invocation, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interp := r.Interpreter
	if interp == "" {
		interp = "python3"
	}

	cmd := exec.CommandContext(ctx, interp, script, arg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	inv := &Invocation{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	// CommandContext kills the child when the deadline passes; report that as
	// a timeout rather than the opaque "signal: killed" it surfaces as.
	if ctx.Err() == context.DeadlineExceeded {
		return inv, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
	return inv, err
}
