package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BioSina/MAPle/logger"
)

// App runs one finite task with uniform startup and shutdown handling.
//
// Example:
//
//	app := bootstrap.NewApp("maple", version.Get().String())
//	app.OnStop(func(ctx context.Context) error { return runLog.Close() })
//	err := app.RunTask(ctx, func(ctx context.Context) error {
//	    return orchestrator.Run(ctx)
//	})
type App struct {
	Name    string
	Version string
	Logger  *logger.Logger

	gracefulTimeout time.Duration
	signals         []os.Signal

	onStart []Hook
	onStop  []Hook
}

// NewApp creates an application named name.
func NewApp(name, version string, opts ...Option) *App {
	o := resolveOptions(opts)
	app := &App{
		Name:            name,
		Version:         version,
		Logger:          o.logger,
		gracefulTimeout: 15 * time.Second,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
	if app.Logger == nil {
		app.Logger = logger.GetGlobalLogger()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.signals != nil {
		app.signals = o.signals
	}
	return app
}

// RunTask runs the OnStart hooks, then task, then the OnStop hooks. An
// interrupt or termination signal cancels the context passed to task. The
// OnStop hooks run on every path, including a failed start. The task error
// wins over a stop error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	a.Logger.Debug("starting", logger.Fields("name", a.Name, "version", a.Version))

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := runHooks(taskCtx, a.onStart); err != nil {
		return stderrors.Join(fmt.Errorf("onStart hook failed: %w", err), a.stop())
	}

	if len(a.signals) > 0 {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, a.signals...)
		defer signal.Stop(sigCh)

		go func() {
			select {
			case sig := <-sigCh:
				a.Logger.Warn("received signal, canceling run", logger.Fields("signal", sig.String()))
				cancel()
			case <-taskCtx.Done():
			}
		}()
	}

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// stop runs the OnStop hooks in reverse registration order within the
// graceful timeout. Every hook runs; the first error is returned.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var first error
	for i := len(a.onStop) - 1; i >= 0; i-- {
		if err := a.onStop[i](ctx); err != nil {
			a.Logger.Error("onStop hook failed", logger.Fields(logger.FieldError, err.Error()))
			if first == nil {
				first = err
			}
		}
	}
	return first
}
