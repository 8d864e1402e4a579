// Package logger provides structured console logging for the pipeline
// using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying sample and stage fields. The per-run
// event journal written next to the results lives in package runlog; this
// package covers operator-facing output on stdout/stderr.
//
// # Usage
//
//	log := logger.WithComponent("orchestrator")
//	log.Info("sample finished", logger.Fields(logger.FieldSample, "S1"))
package logger
