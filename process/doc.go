// Package process runs external tools as subprocesses.
//
// Run is the low-level primitive: it starts the command in its own process
// group, captures stdout and the tail of stderr, and on cancellation sends
// SIGTERM to the whole group before escalating to SIGKILL after the grace
// period. A tool that cannot be started yields a *StartError, one that
// exits non-zero an *ExitError.
//
// Runner adds what the pipeline needs on top: a per-attempt timeout,
// retries for timed-out tools, and classification of failures into
// errors.AppError codes (missing executable, timeout, non-zero exit,
// cancellation).
package process
