// Package stage runs the external tools of the pipeline.
//
// Every tool invocation goes through Runner.Run, which creates the stage's
// output directory, runs the commands with the configured timeout and
// retry policy, checks that the expected output exists and records the
// stage in the run log, the trace and the metrics. Commands are built by
// the argv builders in this package from the typed configuration; nothing
// is assembled by splitting strings.
//
// Output files follow a fixed naming scheme inside numbered directories
// below the run root, e.g. 01_trimmed/<sample>.trimmed.1.fastq and
// 02_basic_aligned/<sample>.1.daa for the default pair identifiers.
package stage
