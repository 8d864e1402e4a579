package process_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/process"
)

func TestRunnerSuccess(t *testing.T) {
	r := process.NewRunner(process.Config{}, nil)
	result, err := r.Run(context.Background(), process.Command{Binary: "echo", Args: []string{"ok"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Stdout) != "ok\n" {
		t.Fatalf("expected 'ok\\n', got %q", string(result.Stdout))
	}
}

func TestRunnerClassifiesFailures(t *testing.T) {
	tests := []struct {
		name  string
		cmd   process.Command
		cfg   process.Config
		code  errors.ErrorCode
		fatal bool
	}{
		{
			name: "non-zero exit",
			cmd:  process.Command{Binary: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}},
			code: errors.ErrCodeToolFailed,
		},
		{
			name:  "missing executable on PATH",
			cmd:   process.Command{Binary: "maple-no-such-tool"},
			code:  errors.ErrCodeToolNotFound,
			fatal: true,
		},
		{
			name:  "missing executable path",
			cmd:   process.Command{Binary: "/nonexistent/bin/diamond"},
			code:  errors.ErrCodeToolNotFound,
			fatal: true,
		},
		{
			name: "timeout",
			cmd:  process.Command{Binary: "sleep", Args: []string{"10"}, GracePeriod: 100 * time.Millisecond},
			cfg:  process.Config{Timeout: 100 * time.Millisecond},
			code: errors.ErrCodeToolTimeout,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := process.NewRunner(tc.cfg, nil)
			_, err := r.Run(context.Background(), tc.cmd)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.CodeOf(err); got != tc.code {
				t.Fatalf("expected %s, got %s (%v)", tc.code, got, err)
			}
			if errors.IsFatal(err) != tc.fatal {
				t.Fatalf("expected fatal=%v for %v", tc.fatal, err)
			}
		})
	}
}

func TestRunnerStderrDetail(t *testing.T) {
	r := process.NewRunner(process.Config{}, nil)
	_, err := r.Run(context.Background(), process.Command{Binary: "sh", Args: []string{"-c", "echo index corrupt >&2; exit 1"}})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Details["stderr"] != "index corrupt" {
		t.Fatalf("expected stderr tail in details, got %v", appErr.Details)
	}
	if appErr.Details["exit_code"] != 1 {
		t.Fatalf("expected exit code 1, got %v", appErr.Details["exit_code"])
	}
}

func TestRunnerRetriesTimeouts(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "attempted")
	script := filepath.Join(dir, "slow-once.sh")
	body := "#!/bin/sh\nif [ -f " + marker + " ]; then echo done; exit 0; fi\ntouch " + marker + "\nsleep 10\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	r := process.NewRunner(process.Config{
		Timeout:     300 * time.Millisecond,
		GracePeriod: 100 * time.Millisecond,
		Attempts:    2,
		Backoff:     time.Millisecond,
	}, nil)
	result, err := r.Run(context.Background(), process.Command{Binary: script})
	if err != nil {
		t.Fatalf("expected the second attempt to succeed, got %v", err)
	}
	if string(result.Stdout) != "done\n" {
		t.Fatalf("expected output of the second attempt, got %q", string(result.Stdout))
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r := process.NewRunner(process.Config{GracePeriod: 100 * time.Millisecond}, nil)
	_, err := r.Run(ctx, process.Command{Binary: "sleep", Args: []string{"10"}})
	if errors.CodeOf(err) != errors.ErrCodeCanceled {
		t.Fatalf("expected CANCELED, got %v", err)
	}
	if !errors.IsFatal(err) {
		t.Fatal("cancellation must abort the run")
	}
}
