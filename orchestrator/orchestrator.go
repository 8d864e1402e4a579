package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/observability"
	"github.com/BioSina/MAPle/pipeline"
	"github.com/BioSina/MAPle/runlog"
	"github.com/BioSina/MAPle/sample"
	"github.com/BioSina/MAPle/stage"
	"github.com/BioSina/MAPle/version"
)

// Options wires an Orchestrator to its collaborators. Zero values are
// replaced by no-op implementations.
type Options struct {
	// RunID identifies the run; a random one is generated when empty.
	RunID    string
	RunLog   *runlog.Log
	Logger   *logger.Logger
	Metrics  *observability.PipelineMetrics
	Executor stage.Executor
}

// Orchestrator runs the pipeline for every sample of one input directory.
type Orchestrator struct {
	cfg     config.Config
	inDir   string
	outDir  string
	runID   string
	runlog  *runlog.Log
	log     *logger.Logger
	metrics *observability.PipelineMetrics
	exec    stage.Executor
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// New creates an Orchestrator reading raw reads from inDir and writing all
// stage directories below outDir.
func New(cfg config.Config, inDir, outDir string, opts Options) *Orchestrator {
	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}
	if opts.RunLog == nil {
		opts.RunLog = runlog.Nop()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Orchestrator{
		cfg:     cfg,
		inDir:   inDir,
		outDir:  outDir,
		runID:   opts.RunID,
		runlog:  opts.RunLog,
		log:     opts.Logger.WithComponent("orchestrator"),
		metrics: opts.Metrics,
		exec:    opts.Executor,
	}
}

// RunID returns the identifier of the run.
func (o *Orchestrator) RunID() string { return o.runID }

// Run stages the input, processes every sample and returns the summary.
// Breakpoints and sample failures are reported in the summary only; the
// error is non-nil only for fatal conditions, in which case the summary
// holds the outcomes reached before the run stopped.
func (o *Orchestrator) Run(ctx context.Context) (summary *Summary, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, o.runID)

	summary = &Summary{RunID: o.runID}
	fields := version.Get().Fields()
	fields["indir"] = o.inDir
	fields["outdir"] = o.outDir
	o.runlog.Record(runlog.Entry{
		Event:   runlog.EventRunStart,
		Message: fmt.Sprintf("Starting %s", o.cfg.Name),
		Fields:  fields,
	})

	runner := stage.NewRunner(o.cfg, o.outDir, stage.Options{
		Executor: o.exec,
		RunLog:   o.runlog,
		Metrics:  o.metrics,
		Logger:   o.log,
	})
	defer func() {
		summary.Directories = runner.Dirs().Created()
		summary.Duration = time.Since(start)
		if err != nil {
			observability.SetSpanError(ctx, err)
			o.runlog.Record(runlog.Entry{
				Event:    runlog.EventRunAbort,
				Message:  fmt.Sprintf("Aborted %s", o.cfg.Name),
				Err:      err,
				Duration: summary.Duration,
				Fields:   map[string]any{"code": string(errors.CodeOf(err))},
			})
			return
		}
		o.runlog.Record(runlog.Entry{
			Event:    runlog.EventRunFinish,
			Message:  fmt.Sprintf("Finished %s", o.cfg.Name),
			Duration: summary.Duration,
			Fields: map[string]any{
				"done":        summary.Count(StateDone),
				"breakpoints": summary.Count(StateBreakpoint),
				"failed":      summary.Count(StateFailed),
			},
		})
	}()

	samples, err := o.setup(ctx, runner)
	if err != nil {
		if !errors.IsFatal(err) {
			err = errors.SetupFailed("Setup failed.", err)
		}
		return summary, err
	}

	summary.Outcomes, err = o.process(ctx, runner, samples)
	return summary, err
}

func (o *Orchestrator) setup(ctx context.Context, runner *stage.Runner) ([]sample.Sample, error) {
	if info, err := os.Stat(o.inDir); err != nil || !info.IsDir() {
		return nil, errors.InputNotFound(o.inDir).WithCause(err)
	}
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return nil, errors.DirectoryMissing(o.outDir).WithCause(err)
	}

	o.runlog.Record(runlog.Entry{Event: runlog.EventSetupStart, Message: "Setup"})
	setupStart := time.Now()
	rawDir, err := runner.Dirs().Ensure(stage.RawDir, false)
	if err != nil {
		return nil, err
	}
	samples, err := sample.Setup(ctx, o.inDir, rawDir, o.cfg.Naming, o.cfg.KeepRaw)
	if err != nil {
		return nil, err
	}
	o.runlog.Record(runlog.Entry{
		Event:    runlog.EventSetupFinish,
		Message:  fmt.Sprintf("Setup finished with %d samples", len(samples)),
		Duration: time.Since(setupStart),
		Fields:   map[string]any{"samples": sample.Names(samples)},
	})
	o.log.Info("samples discovered", logger.Fields("count", len(samples), logger.FieldRunID, o.runID))
	return samples, nil
}

type job struct {
	index  int
	sample sample.Sample
}

// process runs the samples through a pool of SampleWorkers workers. A fatal
// outcome stops the pool; samples never started are reported as
// Discovered.
func (o *Orchestrator) process(ctx context.Context, runner *stage.Runner, samples []sample.Sample) ([]Outcome, error) {
	jobs := make([]job, len(samples))
	for i, s := range samples {
		jobs[i] = job{index: i, sample: s}
	}
	outcomes := make([]Outcome, len(samples))

	finished := 0
	_, err := pipeline.Collect(ctx, pipeline.Tap(
		pipeline.Parallel(pipeline.FromSlice(jobs), o.cfg.Runtime.SampleWorkers, func(ctx context.Context, j job) (Outcome, error) {
			out := o.processSample(ctx, runner, j.sample)
			outcomes[j.index] = out
			if errors.IsFatal(out.Err) {
				return out, out.Err
			}
			return out, nil
		}),
		func(_ context.Context, out Outcome) error {
			finished++
			o.log.Info("sample finished", logger.Fields(
				logger.FieldSample, out.Sample,
				logger.FieldState, out.State.String(),
				"progress", fmt.Sprintf("%d/%d", finished, len(samples)),
			))
			return nil
		},
	))

	for i, s := range samples {
		if outcomes[i].Sample == "" {
			outcomes[i] = Outcome{Sample: s.Name, State: StateDiscovered, Reason: "not started"}
		}
	}
	if err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			if ctx.Err() != nil {
				err = errors.Canceled(err)
			} else {
				err = errors.Internal(err)
			}
		}
		return outcomes, err
	}
	return outcomes, nil
}
