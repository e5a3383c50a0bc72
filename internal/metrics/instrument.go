package metrics

import (
	"context"

	"fenrir/internal/common"
	"fenrir/internal/engine"
)

// instrumentedSink decorates an engine.OutboundSink with trade metrics,
// keeping internal/engine free of any import on internal/metrics.
type instrumentedSink struct {
	inner engine.OutboundSink
	m     *Metrics
}

// InstrumentSink wraps inner so every published TradeEvent increments
// TradesEmitted and observes MatchedQuantity before delegating to inner.
func InstrumentSink(inner engine.OutboundSink, m *Metrics) engine.OutboundSink {
	return &instrumentedSink{inner: inner, m: m}
}

func (s *instrumentedSink) Publish(ctx context.Context, event common.TradeEvent) error {
	s.m.TradesEmitted.WithLabelValues(event.Symbol).Inc()
	s.m.MatchedQuantity.Observe(float64(event.Quantity))
	return s.inner.Publish(ctx, event)
}
