package dag

import (
	"context"
	"time"

	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/observability"
)

// WithTracing wraps a Node with OpenTelemetry span creation.
// Each execution creates a span named "{prefix}.{nodeName}".
func WithTracing(node Node, prefix string) Node {
	return &tracingNode{inner: node, prefix: prefix}
}

type tracingNode struct {
	inner  Node
	prefix string
}

func (n *tracingNode) Name() string { return n.inner.Name() }

func (n *tracingNode) Run(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, n.prefix+"."+n.inner.Name())
	defer span.End()

	observability.SetSpanAttribute(ctx, "dag.node", n.inner.Name())

	err := n.inner.Run(ctx)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return err
}

// WithLogging wraps a Node with execution logging.
// Logs: node name, duration, and success/error status.
func WithLogging(node Node, log *logger.Logger) Node {
	return &loggingNode{inner: node, log: log}
}

type loggingNode struct {
	inner Node
	log   *logger.Logger
}

func (n *loggingNode) Name() string { return n.inner.Name() }

func (n *loggingNode) Run(ctx context.Context) error {
	start := time.Now()
	err := n.inner.Run(ctx)

	fields := logger.Fields("node", n.inner.Name(), logger.FieldDuration, time.Since(start).String())
	if err != nil {
		fields[logger.FieldError] = err.Error()
		n.log.Error("dag node failed", fields)
	} else {
		n.log.Debug("dag node completed", fields)
	}
	return err
}
