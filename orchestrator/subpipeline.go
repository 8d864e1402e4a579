package orchestrator

import (
	"context"

	"github.com/BioSina/MAPle/dag"
	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/stage"
)

// subpipelineSpan prefixes the span of every sub-pipeline stage.
const subpipelineSpan = "maple.subpipeline"

// Graph returns the sub-pipeline graph of sample s: one chain per enabled
// module, declared basic, host filtering, then 16S.
func (o *Orchestrator) Graph(runner *stage.Runner, s string) *dag.Graph {
	g := dag.New()
	node := func(st stage.Stage, fn func(ctx context.Context, s string) error) dag.Node {
		n := dag.Func(st.Name, func(ctx context.Context) error { return fn(ctx, s) })
		n = dag.WithLogging(n, o.log.WithFields(logger.Fields(logger.FieldSample, s)))
		return dag.WithTracing(n, subpipelineSpan)
	}

	mods := o.cfg.Modules
	if mods.Basic {
		g.Chain(
			node(stage.BasicAlign, runner.BasicAlign),
			node(stage.BasicMegan, runner.BasicMegan),
		)
	}
	if mods.FilterHost {
		g.Chain(
			node(stage.HostFilter, runner.HostFilter),
			node(stage.HostAlign, runner.HostAlign),
			node(stage.HostMegan, runner.HostMegan),
		)
	}
	if mods.SixteenS {
		g.Chain(
			node(stage.Select16S, runner.Select16S),
			node(stage.Align16S, runner.Align16S),
		)
	}
	return g
}

func (o *Orchestrator) subPipelines(ctx context.Context, runner *stage.Runner, s string) (*dag.Result, error) {
	engine := &dag.Engine{
		MaxParallel: o.cfg.Runtime.SubpipelineParallel,
		StopOn:      errors.IsFatal,
	}
	return engine.Execute(ctx, o.Graph(runner, s))
}
