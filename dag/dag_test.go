package dag

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- test helpers ---

// trace records node starts in order.
type trace struct {
	mu    sync.Mutex
	names []string
}

func (tr *trace) node(name string, err error) Node {
	return Func(name, func(context.Context) error {
		tr.mu.Lock()
		tr.names = append(tr.names, name)
		tr.mu.Unlock()
		return err
	})
}

func (tr *trace) started() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.names...)
}

// --- Graph tests ---

func TestGraph_AddAndChain(t *testing.T) {
	g := New()
	g.Chain(Func("a", nil), Func("b", nil), Func("c", nil))
	g.Add(Func("d", nil), "a")

	if got := g.Order(); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	want := []Edge{{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "a", To: "d"}}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Fatalf("unexpected edges: %v", g.Edges)
	}
}

func TestGraph_OrderIncludesUndeclaredNodes(t *testing.T) {
	g := &Graph{Nodes: map[string]Node{"z": Func("z", nil), "y": Func("y", nil)}}
	g.Add(Func("x", nil))
	if got := g.Order(); !reflect.DeepEqual(got, []string{"x", "y", "z"}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

// --- BuildLevels tests ---

func TestBuildLevels_Linear(t *testing.T) {
	g := New()
	g.Chain(Func("a", nil), Func("b", nil), Func("c", nil))

	levels, err := BuildLevels(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if levels[0][0] != "a" || levels[1][0] != "b" || levels[2][0] != "c" {
		t.Fatalf("unexpected level order: %v", levels)
	}
}

func TestBuildLevels_Diamond(t *testing.T) {
	g := New()
	g.Add(Func("a", nil))
	g.Add(Func("b", nil), "a")
	g.Add(Func("c", nil), "a")
	g.Add(Func("d", nil), "b", "c")

	levels, err := BuildLevels(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"a"}, {"b", "c"}, {"d"}}
	if !reflect.DeepEqual(levels, want) {
		t.Fatalf("expected %v, got %v", want, levels)
	}
}

func TestBuildLevels_CycleDetection(t *testing.T) {
	g := &Graph{
		Nodes: map[string]Node{"a": Func("a", nil), "b": Func("b", nil)},
		Edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}},
	}
	if _, err := BuildLevels(g); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestBuildLevels_UnknownNode(t *testing.T) {
	g := New()
	g.Add(Func("a", nil), "unknown")
	if _, err := BuildLevels(g); err == nil {
		t.Fatal("expected error for unknown node")
	}
}

// --- Engine tests ---

func TestEngine_ChainsRunInDeclarationOrder(t *testing.T) {
	var tr trace
	g := New()
	g.Chain(tr.node("basic.align", nil), tr.node("basic.megan", nil))
	g.Chain(tr.node("16s.select", nil), tr.node("16s.align", nil))

	result, err := (&Engine{MaxParallel: 1}).Execute(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"basic.align", "basic.megan", "16s.select", "16s.align"}
	if got := tr.started(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, name := range want {
		if result.NodeResults[name].Status != StatusCompleted {
			t.Errorf("%s: status %s", name, result.NodeResults[name].Status)
		}
	}
	if !reflect.DeepEqual(result.Order, want) {
		t.Errorf("result order %v", result.Order)
	}
}

func TestEngine_FailureSkipsOnlyDependents(t *testing.T) {
	var tr trace
	boom := errors.New("boom")
	g := New()
	g.Chain(tr.node("a1", boom), tr.node("a2", nil), tr.node("a3", nil))
	g.Chain(tr.node("b1", nil), tr.node("b2", nil))

	result, err := (&Engine{MaxParallel: 1}).Execute(context.Background(), g)
	if err != nil {
		t.Fatalf("a failed node must not fail the graph: %v", err)
	}

	want := map[string]string{
		"a1": StatusFailed, "a2": StatusSkipped, "a3": StatusSkipped,
		"b1": StatusCompleted, "b2": StatusCompleted,
	}
	for name, status := range want {
		if got := result.NodeResults[name].Status; got != status {
			t.Errorf("%s: expected %s, got %s", name, status, got)
		}
	}
	if !errors.Is(result.NodeResults["a1"].Error, boom) {
		t.Errorf("error not recorded: %v", result.NodeResults["a1"].Error)
	}
	if failed := result.Failed(); len(failed) != 1 || failed[0].Name != "a1" {
		t.Errorf("Failed() = %v", failed)
	}
	if got := tr.started(); !reflect.DeepEqual(got, []string{"a1", "b1", "b2"}) {
		t.Errorf("started %v", got)
	}
}

func TestEngine_DiamondWaitsForAllDependencies(t *testing.T) {
	var tr trace
	g := New()
	g.Add(tr.node("a", nil))
	g.Add(tr.node("b", errors.New("b failed")), "a")
	g.Add(tr.node("c", nil), "a")
	g.Add(tr.node("d", nil), "b", "c")

	result, err := (&Engine{}).Execute(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NodeResults["c"].Status != StatusCompleted {
		t.Errorf("c: %s", result.NodeResults["c"].Status)
	}
	if result.NodeResults["d"].Status != StatusSkipped {
		t.Errorf("d must be skipped when b failed, got %s", result.NodeResults["d"].Status)
	}
}

func TestEngine_MaxParallel(t *testing.T) {
	var active, peak int32
	node := func(name string) Node {
		return Func(name, func(context.Context) error {
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			return nil
		})
	}
	g := New()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		g.Add(node(name))
	}

	if _, err := (&Engine{MaxParallel: 2}).Execute(context.Background(), g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent nodes, saw %d", peak)
	}
}

func TestEngine_StopOn(t *testing.T) {
	fatal := errors.New("fatal")
	var tr trace
	g := New()
	g.Chain(tr.node("a1", fatal), tr.node("a2", nil))
	g.Chain(tr.node("b1", nil), tr.node("b2", nil))

	engine := &Engine{MaxParallel: 1, StopOn: func(err error) bool { return errors.Is(err, fatal) }}
	result, err := engine.Execute(context.Background(), g)
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if got := tr.started(); !reflect.DeepEqual(got, []string{"a1"}) {
		t.Fatalf("nothing may start after a stopping error, started %v", got)
	}
	for _, name := range []string{"a2", "b1", "b2"} {
		if result.NodeResults[name].Status != StatusSkipped {
			t.Errorf("%s: expected skipped, got %s", name, result.NodeResults[name].Status)
		}
	}
}

func TestEngine_StopOnCancelsRunningNodes(t *testing.T) {
	fatal := errors.New("fatal")
	canceled := make(chan struct{})
	g := New()
	g.Add(Func("slow", func(ctx context.Context) error {
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	}))
	g.Add(Func("fatal", func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return fatal
	}))

	engine := &Engine{StopOn: func(err error) bool { return errors.Is(err, fatal) }}
	if _, err := engine.Execute(context.Background(), g); !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	select {
	case <-canceled:
	default:
		t.Fatal("running node was not canceled")
	}
}

func TestEngine_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := New()
	g.Chain(Func("a", func(context.Context) error {
		cancel()
		return nil
	}), Func("b", nil))

	result, err := (&Engine{}).Execute(ctx, g)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.NodeResults["b"].Status != StatusSkipped {
		t.Fatalf("expected b skipped, got %s", result.NodeResults["b"].Status)
	}
}

func TestEngine_InvalidGraph(t *testing.T) {
	g := New()
	g.Add(Func("a", nil), "missing")
	if _, err := (&Engine{}).Execute(context.Background(), g); err == nil {
		t.Fatal("expected error for invalid graph")
	}
}

func TestEngine_EmptyGraph(t *testing.T) {
	result, err := (&Engine{}).Execute(context.Background(), New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.NodeResults) != 0 {
		t.Fatalf("expected no results, got %v", result.NodeResults)
	}
}
