package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"fenrir/internal/common"
)

// Bus wraps a NATS connection with the publish/subscribe shape the engine's
// transport adapters and the ledger's trade-event consumer need. It is the
// concrete carrier behind the matching engine's InboundSource/OutboundSink
// interfaces.
type Bus struct {
	conn *nats.Conn
}

// Connect dials the NATS server at url, logging on disconnect and
// reconnect (the client itself handles the retrying).
func Connect(url string) (*Bus, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("fenrir"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Bus{conn: conn}, nil
}

// Close closes the underlying NATS connection without draining it.
func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// PublishOrder publishes an already-validated wire order onto its symbol's
// inbound subject.
func (b *Bus) PublishOrder(order WireOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	return b.conn.Publish(InboundSubject(order.Symbol), payload)
}

// PublishTrade publishes a trade event onto its symbol's outbound subject.
func (b *Bus) PublishTrade(event common.TradeEvent) error {
	payload, err := json.Marshal(FromTradeEvent(event))
	if err != nil {
		return fmt.Errorf("marshal trade event: %w", err)
	}
	return b.conn.Publish(OutboundSubject(event.Symbol), payload)
}

// PublishError publishes an error report correlated to requestID onto a
// symbol's error subject.
func (b *Bus) PublishError(symbol, requestID string, cause error) error {
	payload, err := json.Marshal(WireError{RequestID: requestID, Message: cause.Error()})
	if err != nil {
		return fmt.Errorf("marshal error report: %w", err)
	}
	return b.conn.Publish(ErrorSubject(symbol), payload)
}

// SubscribeTrades invokes handler for every trade event published for symbol.
// Used by the ledger to apply balance/holding adjustments downstream of the
// matching core.
func (b *Bus) SubscribeTrades(symbol string, handler func(common.TradeEvent)) (*nats.Subscription, error) {
	return b.conn.Subscribe(OutboundSubject(symbol), func(msg *nats.Msg) {
		var wire WireTradeEvent
		if err := json.Unmarshal(msg.Data, &wire); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("error decoding trade event")
			return
		}
		handler(wire.ToTradeEvent())
	})
}

// InboundAdapter implements engine.InboundSource over NATS: it subscribes
// to every configured symbol's inbound subject and funnels decoded orders
// through a single channel, preserving the single-threaded consumption the
// matching engine requires -- the engine, not the bus, serializes matching.
type InboundAdapter struct {
	subs   []*nats.Subscription
	orders chan common.Order
	errs   chan error
}

// NewInboundAdapter subscribes to symbols' inbound subjects on bus.
func NewInboundAdapter(b *Bus, symbols []string) (*InboundAdapter, error) {
	adapter := &InboundAdapter{
		orders: make(chan common.Order, 256),
		errs:   make(chan error, 256),
	}

	for _, symbol := range symbols {
		sub, err := b.conn.Subscribe(InboundSubject(symbol), adapter.handle)
		if err != nil {
			adapter.unsubscribeAll()
			return nil, fmt.Errorf("subscribe inbound %s: %w", symbol, err)
		}
		adapter.subs = append(adapter.subs, sub)
	}

	return adapter, nil
}

func (a *InboundAdapter) handle(msg *nats.Msg) {
	var wire WireOrder
	if err := json.Unmarshal(msg.Data, &wire); err != nil {
		a.errs <- fmt.Errorf("%w: %v", ErrDecode, err)
		return
	}
	order, err := wire.ToOrder()
	if err != nil {
		a.errs <- err
		return
	}
	a.orders <- order
}

// Next blocks for the next decoded order, the next decode/validation
// failure, or ctx cancellation, whichever comes first.
func (a *InboundAdapter) Next(ctx context.Context) (common.Order, error) {
	select {
	case <-ctx.Done():
		return common.Order{}, ctx.Err()
	case err := <-a.errs:
		return common.Order{}, err
	case order := <-a.orders:
		return order, nil
	}
}

func (a *InboundAdapter) unsubscribeAll() {
	for _, sub := range a.subs {
		_ = sub.Unsubscribe()
	}
}

// Close unsubscribes from every symbol's inbound subject.
func (a *InboundAdapter) Close() {
	a.unsubscribeAll()
}

// OutboundAdapter implements engine.OutboundSink over NATS.
type OutboundAdapter struct {
	bus *Bus
}

// NewOutboundAdapter wraps bus as an engine.OutboundSink.
func NewOutboundAdapter(b *Bus) *OutboundAdapter {
	return &OutboundAdapter{bus: b}
}

func (a *OutboundAdapter) Publish(_ context.Context, event common.TradeEvent) error {
	return a.bus.PublishTrade(event)
}
