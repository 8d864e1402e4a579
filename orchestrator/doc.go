// Package orchestrator drives every sample of a run through the MAPle
// pipeline.
//
// A sample moves through two quality gates before any alignment work:
//
//	Discovered -> RawQC -> TrimReady -> Trimmed -> TrimQC -> SubPipelinesReady -> Done
//
// Failing a gate stops the sample in Breakpoint; a failing tool stops it
// in Failed. Neither affects the other samples. Once both gates pass, the
// enabled sub-pipelines (basic, host filtering, 16S) run as independent
// chains of a dag.Graph, so a failure in one chain skips only the rest of
// that chain.
//
// Fatal errors (missing directories, unreadable reference databases,
// cancellation) stop the whole run; Run returns them together with the
// outcomes collected so far.
package orchestrator
