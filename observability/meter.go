package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/BioSina/MAPle/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on exit.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// PipelineMetrics holds the instruments recorded while samples are processed.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	stageTotal    metric.Int64Counter
	stageDuration metric.Float64Histogram
	stageActive   metric.Int64UpDownCounter
	breakpoints   metric.Int64Counter
	samples       metric.Int64Counter
}

// NewPipelineMetrics creates metric instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	stageTotal, err := meter.Int64Counter("maple.stage.total",
		metric.WithDescription("Stage executions by stage and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating maple.stage.total counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("maple.stage.duration",
		metric.WithDescription("Duration of stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating maple.stage.duration histogram: %w", err)
	}

	stageActive, err := meter.Int64UpDownCounter("maple.stage.active",
		metric.WithDescription("Number of stages currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating maple.stage.active gauge: %w", err)
	}

	breakpoints, err := meter.Int64Counter("maple.breakpoint.total",
		metric.WithDescription("Samples stopped by a quality gate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating maple.breakpoint.total counter: %w", err)
	}

	samples, err := meter.Int64Counter("maple.sample.total",
		metric.WithDescription("Samples finished by terminal state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating maple.sample.total counter: %w", err)
	}

	return &PipelineMetrics{
		stageTotal:    stageTotal,
		stageDuration: stageDuration,
		stageActive:   stageActive,
		breakpoints:   breakpoints,
		samples:       samples,
	}, nil
}

// StageStarted increments the running stage count.
func (m *PipelineMetrics) StageStarted(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.stageActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}

// RecordStage decrements running stages and records a finished stage.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrStage, stage)))
	m.stageTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String("status", status),
	))
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrStage, stage),
	))
}

// RecordBreakpoint counts a sample stopped by gate.
func (m *PipelineMetrics) RecordBreakpoint(ctx context.Context, gate string) {
	if m == nil {
		return
	}
	m.breakpoints.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrGate, gate)))
}

// RecordSample counts a sample reaching a terminal state.
func (m *PipelineMetrics) RecordSample(ctx context.Context, state string) {
	if m == nil {
		return
	}
	m.samples.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrState, state)))
}
