// Package observability provides OpenTelemetry tracing and pipeline metrics.
//
// Export is optional: Init returns a no-op shutdown when no OTLP endpoint
// is configured, and spans and instruments then go to the global no-op
// providers.
//
// Tracing:
//
//	shutdown, err := observability.Init(ctx, observability.DefaultConfig("maple"))
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "stage.trim")
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewPipelineMetrics(observability.Meter("maple"))
//	metrics.RecordStage(ctx, "trim", "ok", duration)
package observability
