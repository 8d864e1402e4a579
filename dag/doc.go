// Package dag runs stages in dependency order.
//
// A Graph holds named nodes and the edges between them. The Engine starts
// a node as soon as every node it depends on has completed, so independent
// chains make progress side by side while each chain stays strictly
// sequential. When a node fails, the nodes that depend on it, directly or
// not, are skipped; unrelated nodes keep running.
//
//	g := dag.New()
//	g.Chain(align, megan)
//	g.Chain(select16S, align16S)
//	res, err := (&dag.Engine{MaxParallel: 1}).Execute(ctx, g)
package dag
