// Package pipeline provides the pull-based work pool that drives samples
// through the quality gates.
//
// Pipelines are lazy: no work happens until values are pulled via Collect.
// Each stage pulls from the previous one on demand, so a pool of n workers
// never holds more than n samples in flight.
//
// # Operators
//
//   - FromSlice: source over a fixed list of items
//   - Parallel: apply fn with up to n workers, emitting results in input order
//   - Tap: side-effect per value without altering it
//   - Collect: pull everything into a slice
//
// # Usage
//
//	outcomes, err := pipeline.Collect(ctx,
//	    pipeline.Tap(
//	        pipeline.Parallel(pipeline.FromSlice(samples), workers, process),
//	        record,
//	    ),
//	)
//
// A worker error stops the pool: in-flight workers see their context
// canceled, no further items are started, and Collect returns the error
// together with every result emitted before it.
package pipeline
