package process

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/resilience"
)

// Config configures a Runner.
type Config struct {
	// Timeout bounds each attempt. Zero means no timeout.
	Timeout time.Duration
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration
	// Attempts is the number of tries for a command that timed out.
	Attempts int
	// Backoff is the delay before the first retry.
	Backoff time.Duration
}

// Runner executes external tools and classifies their failures into
// pipeline errors. It is safe for concurrent use.
type Runner struct {
	config Config
	log    *logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{config: cfg, log: log.WithComponent("process")}
}

// Run executes cmd, applying the per-attempt timeout and retrying timeouts.
// The returned error is an *errors.AppError:
//   - TOOL_NOT_FOUND (fatal) when the executable cannot be started
//   - TOOL_TIMEOUT when the attempt exceeded its time budget
//   - TOOL_FAILED for a non-zero exit
//   - CANCELED (fatal) when ctx was canceled
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && r.config.GracePeriod > 0 {
		cmd.GracePeriod = r.config.GracePeriod
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = r.config.Attempts
	if r.config.Backoff > 0 {
		retry.InitialBackoff = r.config.Backoff
	}
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		r.log.Warn("retrying tool", logger.Fields(
			logger.FieldTool, cmd.Name(),
			"attempt", attempt,
			"backoff", backoff.String(),
			logger.FieldError, err.Error(),
		))
	}

	var last *Result
	_, err := resilience.Retry(ctx, retry, func() (*Result, error) {
		res, err := r.attempt(ctx, cmd)
		last = res
		return res, err
	})
	if err != nil && ctx.Err() != nil && !errors.IsFatal(err) {
		err = errors.Canceled(ctx.Err())
	}
	return last, err
}

func (r *Runner) attempt(ctx context.Context, cmd Command) (*Result, error) {
	attemptCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	r.log.Debug("running tool", logger.Fields(logger.FieldTool, cmd.Name(), "args", cmd.Args, logger.FieldDir, cmd.Dir))
	res, err := Run(attemptCtx, cmd)
	if err == nil {
		return res, nil
	}
	return res, classify(ctx, attemptCtx, cmd, err)
}

func classify(parent, attemptCtx context.Context, cmd Command, err error) error {
	var startErr *StartError
	var exitErr *ExitError
	switch {
	case parent.Err() != nil:
		return errors.Canceled(parent.Err())
	case attemptCtx.Err() != nil:
		return errors.ToolTimeout(cmd.Name(), err)
	case stderrors.As(err, &startErr):
		return errors.ToolNotFound(cmd.Binary, err)
	case stderrors.As(err, &exitErr):
		appErr := errors.ToolFailed(cmd.Name(), exitErr.ExitCode, err)
		if exitErr.Stderr != "" {
			appErr.WithDetail("stderr", exitErr.Stderr)
		}
		return appErr
	}
	return errors.ToolFailed(cmd.Name(), -1, err)
}
