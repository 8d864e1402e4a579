package process_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BioSina/MAPle/process"
)

func TestRunEcho(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out != "hello world" {
		t.Fatalf("expected 'hello world', got %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "cat",
		Stdin:  strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(result.Stdout)
	if out != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", out)
	}
}

func TestRunExitCode(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "exit 42"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
}

func TestRunFailureTypes(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{Binary: "/nonexistent/bin/malt-run"})
	var startErr *process.StartError
	if !errors.As(err, &startErr) {
		t.Fatalf("expected StartError for a missing executable, got %v", err)
	}

	_, err = process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo reading index >&2; echo cannot open nr.dmnd >&2; exit 2"},
	})
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Tool != "sh" || exitErr.ExitCode != 2 {
		t.Errorf("unexpected exit error %+v", exitErr)
	}
	if exitErr.Stderr != "reading index\ncannot open nr.dmnd" {
		t.Errorf("expected stderr tail, got %q", exitErr.Stderr)
	}
	if !strings.HasSuffix(err.Error(), ": cannot open nr.dmnd") {
		t.Errorf("expected last stderr line in message, got %q", err.Error())
	}
}

func TestRunKeepsStderrTail(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "head -c 100000 /dev/zero | tr '\\0' x >&2; echo done >&2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Stderr) != process.StderrLimit {
		t.Fatalf("expected stderr capped at %d bytes, got %d", process.StderrLimit, len(result.Stderr))
	}
	if !strings.HasSuffix(string(result.Stderr), "xdone\n") {
		t.Errorf("expected the end of stderr to be kept, got %q", string(result.Stderr[len(result.Stderr)-16:]))
	}
}

func TestRunStderr(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo oops >&2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stderr := strings.TrimSpace(string(result.Stderr))
	if stderr != "oops" {
		t.Fatalf("expected 'oops' on stderr, got %q", stderr)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", result.Duration)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRunTeeWriters(t *testing.T) {
	var out, errOut strings.Builder
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo to-out; echo to-err >&2"},
		Stdout: &out,
		Stderr: &errOut,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "to-out\n" || errOut.String() != "to-err\n" {
		t.Fatalf("expected output mirrored, got %q / %q", out.String(), errOut.String())
	}
	if string(result.Stdout) != "to-out\n" {
		t.Fatalf("expected stdout captured as well, got %q", string(result.Stdout))
	}
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	result, err := process.Run(context.Background(), process.Command{
		Binary: "pwd",
		Dir:    dir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(string(result.Stdout)), filepath.Base(dir)) {
		t.Fatalf("expected to run in %s, got %q", dir, string(result.Stdout))
	}
}

func TestStderrTail(t *testing.T) {
	r := &process.Result{Stderr: []byte("a\nb\nc\nd\n")}
	if got := r.StderrTail(2); got != "c\nd" {
		t.Fatalf("expected last two lines, got %q", got)
	}
	var nilResult *process.Result
	if nilResult.StderrTail(3) != "" {
		t.Fatal("nil result has no stderr")
	}
}

func TestCommandName(t *testing.T) {
	if got := (process.Command{Binary: "/opt/megan/tools/daa2rma"}).Name(); got != "daa2rma" {
		t.Fatalf("expected daa2rma, got %q", got)
	}
	if got := (process.Command{Binary: "diamond"}).Name(); got != "diamond" {
		t.Fatalf("expected diamond, got %q", got)
	}
}

func TestRunDuration(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sleep",
		Args:   []string{"0.1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duration < 50*time.Millisecond {
		t.Fatalf("duration too short: %v", result.Duration)
	}
}

func TestRunEnv(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $MY_TEST_VAR"},
		Env:    []string{"MY_TEST_VAR=hello123"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out != "hello123" {
		t.Fatalf("expected 'hello123', got %q", out)
	}
}
