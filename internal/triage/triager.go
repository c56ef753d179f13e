package triage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/domain"
	"github.com/spec-kit/supportops/internal/observability"
)

// Result is the enrichment for one ticket.
type Result struct {
	Priority       domain.TicketPriority
	SuggestedReply string
	// Fallback is set when the model could not be used.
	Fallback bool
}

// DefaultResult is returned whenever enrichment fails.
func DefaultResult() Result {
	return Result{Priority: domain.DefaultPriority}
}

// Triager asks the generator for a priority and then a reply. It never fails.
type Triager struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewTriager wires a triager. A nil generator disables enrichment.
func NewTriager(generator Generator, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Triager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Triager{generator: generator, timeout: timeout, logger: logger, metrics: metrics}
}

// Triage classifies text and drafts a reply. Each model call is bounded by
// the configured timeout; any failure returns DefaultResult.
func (t *Triager) Triage(ctx context.Context, text string) Result {
	if t.generator == nil {
		t.metrics.RecordTriage(observability.TriageDisabled)
		return DefaultResult()
	}

	priority := Bounded(ctx, t.timeout, func(ctx context.Context) (string, error) {
		return t.generator.Generate(ctx, PriorityPrompt(text))
	})
	if priority.Err != nil {
		return t.fallback("priority", priority.Err)
	}

	reply := Bounded(ctx, t.timeout, func(ctx context.Context) (string, error) {
		return t.generator.Generate(ctx, ReplyPrompt(text))
	})
	if reply.Err != nil {
		return t.fallback("reply", reply.Err)
	}

	t.metrics.RecordTriage(observability.TriageOK)
	return Result{
		Priority:       domain.ParsePriority(priority.Value),
		SuggestedReply: reply.Value,
	}
}

func (t *Triager) fallback(step string, err error) Result {
	t.logger.Warn("ai triage failed, using defaults", zap.String("step", step), zap.Error(err))
	t.metrics.RecordTriage(observability.TriageFallback)
	res := DefaultResult()
	res.Fallback = true
	return res
}
