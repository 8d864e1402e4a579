package dag

import "time"

// Node statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Result holds the outcome of a graph execution.
type Result struct {
	NodeResults map[string]NodeResult
	// Order lists node names in the order they finished or were skipped.
	Order    []string
	Duration time.Duration
}

// NodeResult holds the outcome of a single node execution.
type NodeResult struct {
	Name     string
	Status   string // "completed" | "skipped" | "failed"
	Duration time.Duration
	Error    error
}

// Failed returns the failed nodes in finishing order.
func (r *Result) Failed() []NodeResult {
	var out []NodeResult
	for _, name := range r.Order {
		if nr := r.NodeResults[name]; nr.Status == StatusFailed {
			out = append(out, nr)
		}
	}
	return out
}
