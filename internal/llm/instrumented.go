package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/metrics"
)

// Instrumented records metrics and logs around another Completer.
type Instrumented struct {
	provider string
	next     Completer
	metrics  *metrics.Metrics
}

// NewInstrumented wraps next. A nil metrics value only disables metrics.
func NewInstrumented(provider string, next Completer, m *metrics.Metrics) *Instrumented {
	return &Instrumented{provider: provider, next: next, metrics: m}
}

// Complete forwards to the wrapped completer.
func (c *Instrumented) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	start := time.Now()
	reply, err := c.next.Complete(ctx, messages)
	elapsed := time.Since(start)

	c.metrics.RecordCompletion(c.provider, err, elapsed)
	if err != nil {
		slog.Error("Completion failed",
			"provider", c.provider,
			"messages", len(messages),
			"duration", elapsed,
			"error", err,
		)
		return "", err
	}

	slog.Debug("Completion succeeded",
		"provider", c.provider,
		"messages", len(messages),
		"reply_length", len(reply),
		"duration", elapsed,
	)
	return reply, nil
}
