// Package runlog writes the run log: one file per run holding a
// timestamped line for every pipeline event (setup, stage start and finish,
// quality gate outcomes, breakpoints).
//
// The log is opened once when the run starts, shared by all samples, and
// closed on every exit path. Lines are rendered by zerolog's ConsoleWriter
// without color, so the file stays readable in a pager:
//
//	2026-10-17T10:04:12Z INF stage started event=stage_start run_id=... sample=S1 stage=trim
package runlog
