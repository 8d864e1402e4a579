package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// DefaultGracePeriod is the delay between SIGTERM and SIGKILL when a
// command does not set its own.
const DefaultGracePeriod = 10 * time.Second

// StderrLimit bounds the standard error kept in a Result. Aligners report
// progress on stderr for hours; the end is what explains a failure.
const StderrLimit = 64 << 10

// StartError reports a tool that never ran: the executable is missing or
// not executable, or its working directory is gone.
type StartError struct {
	Binary string
	Err    error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("process: cannot start %s: %v", e.Binary, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExitError reports a tool that ran to completion with a non-zero status.
type ExitError struct {
	Tool     string
	ExitCode int
	// Stderr holds the last lines the tool wrote to standard error.
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("process: %s exited with code %d", e.Tool, e.ExitCode)
	if i := strings.LastIndexByte(e.Stderr, '\n'); i >= 0 {
		return msg + ": " + e.Stderr[i+1:]
	}
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	return msg
}

// Run starts cmd in its own process group and waits for it. When ctx ends
// the group receives SIGTERM, then SIGKILL once the grace period is over.
//
// A failed run returns the partial Result together with a *StartError, an
// *ExitError, or an error wrapping ctx.Err() when the tool was killed.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = DefaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // tools and their arguments come from the configuration
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: StderrLimit}
	c.Stdout = tee(&stdout, cmd.Stdout)
	c.Stderr = tee(stderr, cmd.Stderr)

	// Tools such as malt-run are wrapper scripts around a JVM; the whole
	// group has to go.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		return result, nil
	case c.ProcessState == nil:
		return result, &StartError{Binary: cmd.Binary, Err: err}
	case ctx.Err() != nil:
		return result, fmt.Errorf("process: %s killed: %w", cmd.Name(), ctx.Err())
	default:
		return result, &ExitError{Tool: cmd.Name(), ExitCode: result.ExitCode, Stderr: result.StderrTail(5)}
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) Bytes() []byte { return b.buf }

func tee(w io.Writer, extra io.Writer) io.Writer {
	if extra == nil {
		return w
	}
	return io.MultiWriter(w, extra)
}

// mergeEnv appends extra to the current environment. No extra variables
// means the tool inherits the environment unchanged.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}
