package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/observability"
	"github.com/BioSina/MAPle/qc"
	"github.com/BioSina/MAPle/runlog"
	"github.com/BioSina/MAPle/sample"
	"github.com/BioSina/MAPle/stage"
)

var gateLabels = map[qc.Gate]string{
	qc.GateRaw:  "Raw",
	qc.GateTrim: "Trimmed",
}

// processSample moves s through both gates and the enabled sub-pipelines.
func (o *Orchestrator) processSample(ctx context.Context, runner *stage.Runner, s sample.Sample) (out Outcome) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanSample,
		trace.WithAttributes(attribute.String(observability.AttrSample, s.Name)))
	defer span.End()

	out = Outcome{Sample: s.Name, State: StateDiscovered}
	defer func() {
		out.Duration = time.Since(start)
		observability.SetSpanAttribute(ctx, observability.AttrState, out.State.String())
		if out.Err != nil {
			observability.SetSpanError(ctx, out.Err)
		}
		o.metrics.RecordSample(ctx, out.State.String())
		entry := runlog.Entry{
			Event:    runlog.EventSampleFinish,
			Message:  fmt.Sprintf("Finished sample %s: %s", s.Name, out.State),
			Sample:   s.Name,
			Duration: out.Duration,
			Err:      out.Err,
			Fields:   map[string]any{"state": out.State.String()},
		}
		if out.Reason != "" {
			entry.Fields["reason"] = out.Reason
		}
		o.runlog.Record(entry)
	}()

	if !s.Complete() {
		return out.fail(errors.IncompletePair(s.Name))
	}
	naming := o.cfg.Naming

	out.State = StateRawQC
	if err := runner.RawQC(ctx, s); err != nil {
		return out.fail(err)
	}
	raw, err := qc.Evaluate(runner.Path(stage.RawDir), s.Name, naming)
	if err != nil {
		return out.fail(err)
	}
	out.Raw = raw
	if d := qc.RawGate(raw, o.cfg.Thresholds.RawAbsolute); !d.Pass {
		return o.breakpoint(ctx, out, d)
	}
	o.qcPass(s.Name, qc.GateRaw, raw, "")

	out.State = StateTrimReady
	if err := runner.Trim(ctx, s); err != nil {
		return out.fail(err)
	}
	out.State = StateTrimmed
	if err := runner.TrimQC(ctx, s.Name); err != nil {
		return out.fail(err)
	}
	out.State = StateTrimQC
	trimmed, err := qc.Evaluate(runner.Path(stage.TrimmedDir), runner.Names().TrimmedPrefix(s.Name), naming)
	if err != nil {
		return out.fail(err)
	}
	out.Trimmed = trimmed
	d := qc.TrimGate(raw, trimmed, o.cfg.Thresholds.Raw2TrimLoss)
	if !d.Pass {
		return o.breakpoint(ctx, out, d)
	}
	o.qcPass(s.Name, qc.GateTrim, trimmed, fmt.Sprintf(", loss: %s", qc.FormatLoss(d.Value)))

	out.State = StateSubPipelinesReady
	if !o.cfg.Modules.Any() {
		out.State = StateDone
		return out
	}
	res, err := o.subPipelines(ctx, runner, s.Name)
	if res != nil {
		for _, name := range res.Order {
			out.Stages = append(out.Stages, res.NodeResults[name])
		}
	}
	if err != nil {
		return out.fail(err)
	}
	if failed := res.Failed(); len(failed) > 0 {
		out.State = StateFailed
		out.Err = failed[0].Error
		out.Reason = fmt.Sprintf("stage %s failed", failed[0].Name)
		if len(failed) > 1 {
			out.Reason = fmt.Sprintf("%d stages failed, first %s", len(failed), failed[0].Name)
		}
		return out
	}
	out.State = StateDone
	return out
}

func (out Outcome) fail(err error) Outcome {
	out.State = StateFailed
	out.Err = err
	out.Reason = err.Error()
	return out
}

func (o *Orchestrator) breakpoint(ctx context.Context, out Outcome, d qc.Decision) Outcome {
	out.State = StateBreakpoint
	out.Gate = d.Gate
	out.Reason = d.Reason
	o.metrics.RecordBreakpoint(ctx, string(d.Gate))
	o.runlog.Record(runlog.Entry{
		Event:   runlog.EventBreakpoint,
		Message: fmt.Sprintf("Breakpoint: %s QC for sample %s failed with a %s", gateLabels[d.Gate], out.Sample, d.Reason),
		Sample:  out.Sample,
		Fields: map[string]any{
			"gate":      string(d.Gate),
			"value":     d.Value,
			"threshold": d.Threshold,
		},
	})
	return out
}

func (o *Orchestrator) qcPass(name string, gate qc.Gate, m qc.Metric, extra string) {
	o.runlog.Record(runlog.Entry{
		Event: runlog.EventQCPass,
		Message: fmt.Sprintf("%s QC for sample: %s (based on %s). Minimal read length: %d, maximal read length: %d, number of reads: %d%s",
			gateLabels[gate], name, config.Mate2, m.MinLength, m.MaxLength, m.Reads, extra),
		Sample: name,
		Fields: map[string]any{"gate": string(gate)},
	})
}
