package dag

import (
	"fmt"
	"sort"
)

// Graph declares nodes and edges (dependency relationships).
type Graph struct {
	Nodes map[string]Node
	Edges []Edge

	// order remembers declaration order; it breaks ties when several
	// nodes are ready at once.
	order []string
}

// Edge represents a dependency: To depends on From.
type Edge struct {
	From string
	To   string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]Node)}
}

// Add declares node, depending on the already declared nodes named in after.
func (g *Graph) Add(node Node, after ...string) {
	if g.Nodes == nil {
		g.Nodes = make(map[string]Node)
	}
	if _, ok := g.Nodes[node.Name()]; !ok {
		g.order = append(g.order, node.Name())
	}
	g.Nodes[node.Name()] = node
	for _, from := range after {
		g.Edges = append(g.Edges, Edge{From: from, To: node.Name()})
	}
}

// Chain declares nodes so that each depends on the one before it.
func (g *Graph) Chain(nodes ...Node) {
	prev := ""
	for _, n := range nodes {
		if prev == "" {
			g.Add(n)
		} else {
			g.Add(n, prev)
		}
		prev = n.Name()
	}
}

// Order returns every node name: declared nodes first, in declaration
// order, then nodes put into Nodes directly, by name.
func (g *Graph) Order() []string {
	seen := make(map[string]bool, len(g.Nodes))
	out := make([]string, 0, len(g.Nodes))
	for _, name := range g.order {
		if _, ok := g.Nodes[name]; ok && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var rest []string
	for name := range g.Nodes {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Nodes within the same level do not depend on each other; each level is
// listed in Order. Returns an error if a cycle is detected.
func BuildLevels(g *Graph) ([][]string, error) {
	order := g.Order()
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	inDegree := make(map[string]int)
	dependents := make(map[string][]string) // from -> [to...]
	for name := range g.Nodes {
		inDegree[name] = 0
	}
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return nil, fmt.Errorf("dag: edge references unknown node %q", e.From)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return nil, fmt.Errorf("dag: edge references unknown node %q", e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var queue []string
	for _, name := range order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var levels [][]string
	visited := 0
	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return rank[next[i]] < rank[next[j]] })
		queue = next
	}

	if visited != len(g.Nodes) {
		return nil, fmt.Errorf("dag: cycle detected, processed %d of %d nodes", visited, len(g.Nodes))
	}
	return levels, nil
}
