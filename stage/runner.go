package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/observability"
	"github.com/BioSina/MAPle/process"
	"github.com/BioSina/MAPle/runlog"
)

// Executor runs one external command. *process.Runner implements it.
type Executor interface {
	Run(ctx context.Context, cmd process.Command) (*process.Result, error)
}

// Stage statuses reported to metrics.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Invocation is one run of a stage for one sample.
type Invocation struct {
	Stage  Stage
	Sample string
	// Commands run in order; the first failure stops the invocation.
	Commands []process.Command
	// Outputs are glob patterns, relative to the run root, that must each
	// match at least one file once the commands succeeded.
	Outputs []string
	// References are index or database paths the commands read. A failure
	// whose stderr shows one of them could not be opened is fatal.
	References []string
	// Before runs after the output directory exists and before the
	// commands; After runs once they succeeded. Cleanup always runs.
	Before  func(ctx context.Context) error
	After   func() error
	Cleanup func()
}

// Options wires a Runner to its collaborators. Zero values are replaced
// by no-op implementations.
type Options struct {
	Executor Executor
	Dirs     *Dirs
	RunLog   *runlog.Log
	Metrics  *observability.PipelineMetrics
	Logger   *logger.Logger
}

// Runner executes stage invocations below one run root. It is safe for
// concurrent use by several samples.
type Runner struct {
	cfg     config.Config
	names   Names
	exec    Executor
	dirs    *Dirs
	runlog  *runlog.Log
	metrics *observability.PipelineMetrics
	log     *logger.Logger
}

// NewRunner creates a Runner writing below root.
func NewRunner(cfg config.Config, root string, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.RunLog == nil {
		opts.RunLog = runlog.Nop()
	}
	if opts.Dirs == nil {
		opts.Dirs = NewDirs(root, opts.RunLog)
	}
	if opts.Executor == nil {
		opts.Executor = process.NewRunner(process.Config{
			Timeout:     cfg.Runtime.StageTimeout,
			GracePeriod: cfg.Runtime.GracePeriod,
			Attempts:    cfg.Runtime.Attempts,
		}, opts.Logger)
	}
	return &Runner{
		cfg:     cfg,
		names:   NewNames(cfg.Naming),
		exec:    opts.Executor,
		dirs:    opts.Dirs,
		runlog:  opts.RunLog,
		metrics: opts.Metrics,
		log:     opts.Logger.WithComponent("stage"),
	}
}

// Dirs returns the directory guard of the run.
func (r *Runner) Dirs() *Dirs { return r.dirs }

// Names returns the file naming scheme.
func (r *Runner) Names() Names { return r.names }

// Path returns the absolute path of a file inside a stage directory.
func (r *Runner) Path(dir string, name ...string) string {
	return filepath.Join(append([]string{r.dirs.Root(), dir}, name...)...)
}

// Run executes inv. Failures are *errors.AppError values; fatal ones
// (missing directories, unreadable references, cancellation) must stop
// the run, the others only the sample or chain.
func (r *Runner) Run(ctx context.Context, inv Invocation) (err error) {
	st := inv.Stage
	if inv.Cleanup != nil {
		defer inv.Cleanup()
	}

	if st.InDir != "" {
		if info, statErr := os.Stat(r.dirs.Path(st.InDir)); statErr != nil || !info.IsDir() {
			return errors.DirectoryMissing(r.dirs.Path(st.InDir)).WithCause(statErr)
		}
	}
	if _, err := r.dirs.Ensure(st.OutDir, st.Relax); err != nil {
		return err
	}
	if st.SubDir != "" {
		sub := r.Path(st.OutDir, st.SubDir)
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return errors.DirectoryMissing(sub).WithCause(err)
		}
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanStage+"."+st.Name)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrStage, st.Name)
	observability.SetSpanAttribute(ctx, observability.AttrSample, inv.Sample)
	observability.SetSpanAttribute(ctx, observability.AttrTool, st.Tool)

	start := time.Now()
	r.metrics.StageStarted(ctx, st.Name)
	r.runlog.Record(runlog.Entry{
		Event:   runlog.EventStageStart,
		Message: "Started " + st.Name,
		Sample:  inv.Sample,
		Stage:   st.Name,
	})

	defer func() {
		elapsed := time.Since(start)
		if err != nil {
			observability.SetSpanError(ctx, err)
			r.metrics.RecordStage(ctx, st.Name, StatusFailed, elapsed)
			r.runlog.Record(runlog.Entry{
				Event:    runlog.EventStageFail,
				Message:  "Failed " + st.Name,
				Sample:   inv.Sample,
				Stage:    st.Name,
				Err:      err,
				Duration: elapsed,
				Fields:   map[string]any{"code": string(errors.CodeOf(err))},
			})
			return
		}
		r.metrics.RecordStage(ctx, st.Name, StatusOK, elapsed)
		r.runlog.Record(runlog.Entry{
			Event:    runlog.EventStageFinish,
			Message:  "Finished " + st.Name + " successfully",
			Sample:   inv.Sample,
			Stage:    st.Name,
			Duration: elapsed,
		})
	}()

	if inv.Before != nil {
		if err := inv.Before(ctx); err != nil {
			return asAppError(ctx, err)
		}
	}
	for _, cmd := range inv.Commands {
		if cmd.Dir == "" {
			cmd.Dir = r.dirs.Root()
		}
		r.log.Debug("running command", logger.Fields(
			logger.FieldSample, inv.Sample,
			logger.FieldStage, st.Name,
			"command", Describe(cmd),
		))
		res, err := r.exec.Run(ctx, cmd)
		if err != nil {
			return r.escalate(cmd, res, inv.References, err)
		}
	}
	if inv.After != nil {
		if err := inv.After(); err != nil {
			return asAppError(ctx, err)
		}
	}
	for _, pattern := range inv.Outputs {
		if !r.exists(pattern) {
			return errors.OutputMissing(st.Name, pattern)
		}
	}
	return nil
}

func (r *Runner) exists(pattern string) bool {
	matches, err := filepath.Glob(filepath.Join(r.dirs.Root(), pattern))
	return err == nil && len(matches) > 0
}

var unreadableMarkers = []string{
	"cannot open",
	"can't open",
	"error opening",
	"no such file",
}

// escalate turns a tool failure caused by an unreadable reference into a
// fatal error; every other failure is returned unchanged.
func (r *Runner) escalate(cmd process.Command, res *process.Result, refs []string, err error) error {
	if errors.CodeOf(err) != errors.ErrCodeToolFailed || len(refs) == 0 || res == nil {
		return err
	}
	stderr := res.StderrTail(20)
	lower := strings.ToLower(stderr)
	marked := false
	for _, m := range unreadableMarkers {
		if strings.Contains(lower, m) {
			marked = true
			break
		}
	}
	if !marked {
		return err
	}
	for _, ref := range refs {
		if ref != "" && strings.Contains(stderr, ref) {
			return errors.ReferenceUnreadable(cmd.Name(), ref, err).WithDetail("stderr", stderr)
		}
	}
	return err
}

func asAppError(ctx context.Context, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	if ctx.Err() != nil {
		return errors.Canceled(ctx.Err())
	}
	return errors.Internal(err)
}

// Describe renders a command line for logs.
func Describe(cmd process.Command) string {
	return fmt.Sprintf("%s %s", cmd.Binary, strings.Join(cmd.Args, " "))
}
