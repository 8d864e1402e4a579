// Command maple runs the MAPle metagenomic analysis pipeline over a
// directory of paired-end reads.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/BioSina/MAPle/bootstrap"
	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/observability"
	"github.com/BioSina/MAPle/orchestrator"
	"github.com/BioSina/MAPle/runlog"
	"github.com/BioSina/MAPle/version"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "maple: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "maple <indir> <outdir> <config>",
		Short: "Metagenomic Analysis PipeLine",
		Long: `maple runs paired-end reads through quality control, trimming and the
enabled analysis modules (basic, host filtering, 16S), writing one
directory per stage below <outdir> and a run log named after the
configuration's "name" key.`,
		Args:          cobra.ExactArgs(3),
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], args[1], args[2], cmd.OutOrStdout())
		},
	}
}

// run loads the configuration and runs the pipeline. Breakpoints and
// failed samples are not errors; they leave the exit code at 0.
func run(ctx context.Context, inDir, outDir, configPath string, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Logging)
	log := logger.WithComponent("maple")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.DirectoryMissing(outDir).WithCause(err)
	}
	runID := orchestrator.NewRunID()
	runLog, err := runlog.Open(filepath.Join(outDir, cfg.Name+".log"), runID)
	if err != nil {
		return errors.DirectoryMissing(outDir).WithCause(err)
	}

	info := version.Get()
	app := bootstrap.NewApp("maple", info.String(), bootstrap.WithLogger(log))
	app.OnStop(func(context.Context) error { return runLog.Close() })
	app.OnStart(func(ctx context.Context) error {
		telemetry := observability.DefaultConfig("maple")
		telemetry.ServiceVersion = info.Version
		telemetry.Endpoint = cfg.Telemetry.OTLPEndpoint
		telemetry.Insecure = cfg.Telemetry.Insecure
		shutdown, err := observability.Init(ctx, telemetry)
		if err != nil {
			return err
		}
		app.OnStop(bootstrap.Hook(shutdown))
		return nil
	})

	return app.RunTask(ctx, func(ctx context.Context) error {
		metrics, err := observability.NewPipelineMetrics(observability.Meter("maple"))
		if err != nil {
			return errors.Internal(err)
		}
		o := orchestrator.New(cfg, inDir, outDir, orchestrator.Options{
			RunID:   runID,
			RunLog:  runLog,
			Logger:  log,
			Metrics: metrics,
		})
		summary, err := o.Run(ctx)
		if summary != nil {
			report(stdout, summary)
		}
		return err
	})
}

func report(w io.Writer, s *orchestrator.Summary) {
	for _, o := range s.Outcomes {
		line := fmt.Sprintf("%-20s %s", o.Sample, o.State)
		if o.Reason != "" {
			line += ": " + o.Reason
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d done, %d breakpoints, %d failed in %s\n",
		s.Count(orchestrator.StateDone),
		s.Count(orchestrator.StateBreakpoint),
		s.Count(orchestrator.StateFailed),
		s.Duration.Round(time.Millisecond),
	)
}
