package dag

import (
	"context"
	"sort"
	"time"
)

// Engine executes a graph in dependency order.
type Engine struct {
	// MaxParallel limits concurrently running nodes (0 = unlimited).
	MaxParallel int
	// StopOn reports whether a node error must stop the whole graph. Nodes
	// still running see their context canceled and nothing new starts.
	StopOn func(err error) bool
}

// Execute runs every node of g once all of its dependencies completed.
// Dependents of a failed node are skipped. The returned error is non-nil
// only when the graph is invalid, when StopOn matched a node error (that
// error is returned) or when ctx was canceled.
func (e *Engine) Execute(ctx context.Context, g *Graph) (*Result, error) {
	start := time.Now()
	if _, err := BuildLevels(g); err != nil {
		return nil, err
	}

	order := g.Order()
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}
	pending := make(map[string]int)
	dependents := make(map[string][]string)
	for _, edge := range g.Edges {
		pending[edge.To]++
		dependents[edge.From] = append(dependents[edge.From], edge.To)
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &Result{NodeResults: make(map[string]NodeResult, len(order))}
	record := func(nr NodeResult) {
		result.NodeResults[nr.Name] = nr
		result.Order = append(result.Order, nr.Name)
	}

	var ready []string
	for _, name := range order {
		if pending[name] == 0 {
			ready = append(ready, name)
		}
	}
	enqueue := func(name string) {
		i := sort.Search(len(ready), func(i int) bool { return rank[ready[i]] > rank[name] })
		ready = append(ready, "")
		copy(ready[i+1:], ready[i:])
		ready[i] = name
	}

	blocked := make(map[string]bool)
	var release func(name string, ok bool)
	release = func(name string, ok bool) {
		for _, dep := range dependents[name] {
			if !ok {
				blocked[dep] = true
			}
			pending[dep]--
			if pending[dep] > 0 {
				continue
			}
			if blocked[dep] {
				record(NodeResult{Name: dep, Status: StatusSkipped})
				release(dep, false)
				continue
			}
			enqueue(dep)
		}
	}

	done := make(chan NodeResult)
	limit := e.concurrency(len(order))
	running := 0
	var stopErr error
	for {
		for stopErr == nil && ctx.Err() == nil && running < limit && len(ready) > 0 {
			node := g.Nodes[ready[0]]
			ready = ready[1:]
			running++
			go func() { done <- e.executeNode(ctx, node) }()
		}
		if running == 0 {
			break
		}

		nr := <-done
		running--
		record(nr)
		if nr.Status == StatusFailed && stopErr == nil && e.StopOn != nil && e.StopOn(nr.Error) {
			stopErr = nr.Error
			cancel()
		}
		release(nr.Name, nr.Status == StatusCompleted)
	}

	// Nodes that never got to start.
	for _, name := range order {
		if _, ok := result.NodeResults[name]; !ok {
			record(NodeResult{Name: name, Status: StatusSkipped})
		}
	}
	result.Duration = time.Since(start)

	if stopErr != nil {
		return result, stopErr
	}
	if err := parent.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Engine) executeNode(ctx context.Context, node Node) NodeResult {
	start := time.Now()
	err := node.Run(ctx)
	duration := time.Since(start)

	if err != nil {
		return NodeResult{
			Name:     node.Name(),
			Status:   StatusFailed,
			Duration: duration,
			Error:    err,
		}
	}

	return NodeResult{
		Name:     node.Name(),
		Status:   StatusCompleted,
		Duration: duration,
	}
}

func (e *Engine) concurrency(nodes int) int {
	if e.MaxParallel <= 0 || e.MaxParallel > nodes {
		return nodes
	}
	return e.MaxParallel
}
