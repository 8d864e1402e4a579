package orchestrator

import (
	"time"

	"github.com/BioSina/MAPle/dag"
	"github.com/BioSina/MAPle/qc"
)

// State is the position of a sample in the pipeline.
type State int

const (
	StateDiscovered State = iota
	StateRawQC
	StateBreakpoint
	StateTrimReady
	StateTrimmed
	StateTrimQC
	StateSubPipelinesReady
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateDiscovered:        "discovered",
	StateRawQC:             "raw_qc",
	StateBreakpoint:        "breakpoint",
	StateTrimReady:         "trim_ready",
	StateTrimmed:           "trimmed",
	StateTrimQC:            "trim_qc",
	StateSubPipelinesReady: "subpipelines_ready",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further work happens for a sample in s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateBreakpoint || s == StateFailed
}

// Outcome is the result of processing one sample.
type Outcome struct {
	Sample string
	State  State
	// Gate is set for a breakpoint.
	Gate qc.Gate
	// Reason explains a breakpoint or failure.
	Reason string
	// Raw and Trimmed are the representative metrics of the QC stages that
	// ran; zero when the stage did not run.
	Raw     qc.Metric
	Trimmed qc.Metric
	// Stages lists the sub-pipeline stages in the order they finished.
	Stages   []dag.NodeResult
	Duration time.Duration
	Err      error
}

// Summary is the result of a run.
type Summary struct {
	RunID    string
	Outcomes []Outcome
	// Directories lists the stage directories created, in creation order.
	Directories []string
	Duration    time.Duration
}

// Count returns the number of samples that ended in state.
func (s *Summary) Count(state State) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}
