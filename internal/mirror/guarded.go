package mirror

import (
	"context"

	"github.com/perplexiplay/backend/internal/common/resilience"
)

// GuardedSink stops calling an unreachable mirror store for a while after
// repeated failures, so registrations do not each wait out a write timeout.
type GuardedSink struct {
	sink    Sink
	breaker *resilience.CircuitBreaker
}

var _ Sink = (*GuardedSink)(nil)

func NewGuardedSink(sink Sink, breaker *resilience.CircuitBreaker) *GuardedSink {
	return &GuardedSink{sink: sink, breaker: breaker}
}

func (g *GuardedSink) Save(ctx context.Context, doc Document) error {
	return g.breaker.Call(ctx, func(ctx context.Context) error {
		return g.sink.Save(ctx, doc)
	})
}
