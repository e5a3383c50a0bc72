package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"fenrir/internal/common"
)

// ErrUnknownSymbol is returned when an order references a symbol the engine
// was not configured with.
var ErrUnknownSymbol = errors.New("unknown symbol")

// InboundSource decodes and hands over the next order from whatever
// transport carries it. Implementations live outside the core (see
// internal/bus).
type InboundSource interface {
	Next(ctx context.Context) (common.Order, error)
}

// OutboundSink publishes a trade event to whatever transport fans it out
// to downstream consumers. Implementations live outside the core.
type OutboundSink interface {
	Publish(ctx context.Context, event common.TradeEvent) error
}

// MatchingEngine owns one OrderBook per configured symbol and drives the
// single-threaded consume/match/emit loop.
type MatchingEngine struct {
	books    map[string]*OrderBook
	onReject func(symbol string)
}

// NewMatchingEngine creates one empty OrderBook per symbol. Symbols not in
// this set are unsupported; orders referencing them are dropped at Submit.
func NewMatchingEngine(symbols []string) *MatchingEngine {
	books := make(map[string]*OrderBook, len(symbols))
	for _, symbol := range symbols {
		books[symbol] = NewOrderBook(symbol)
	}
	return &MatchingEngine{books: books}
}

// Book returns the OrderBook for a symbol, if configured.
func (e *MatchingEngine) Book(symbol string) (*OrderBook, bool) {
	book, ok := e.books[symbol]
	return book, ok
}

// OnReject registers a callback invoked whenever Submit drops an order for
// an unconfigured symbol. Used by the composition root to feed metrics.
func (e *MatchingEngine) OnReject(f func(symbol string)) {
	e.onReject = f
}

// Submit dispatches a single order to its book and returns the trade events
// produced. This is the synchronous entry point Run loops over; it is also
// useful directly in tests.
func (e *MatchingEngine) Submit(order common.Order) ([]common.TradeEvent, error) {
	book, ok := e.books[order.Symbol]
	if !ok {
		if e.onReject != nil {
			e.onReject(order.Symbol)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, order.Symbol)
	}
	if order.Price != nil {
		return book.AddLimitOrder(order)
	}
	return book.AddMarketOrder(order)
}

// Run consumes inbound orders one at a time until ctx is cancelled or its
// deadline passes, then returns nil; errors from in are logged and never end
// the loop. Each order is matched to completion and every
// resulting trade event is published before the next order is read --
// there is no concurrent processing of the same book. Decode failures,
// unknown symbols and malformed orders are logged and skipped; the loop
// never halts on a single bad message.
func (e *MatchingEngine) Run(ctx context.Context, in InboundSource, out OutboundSink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		order, err := in.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			log.Error().Err(err).Msg("error decoding inbound order")
			continue
		}

		events, err := e.Submit(order)
		if err != nil {
			log.Error().
				Err(err).
				Str("symbol", order.Symbol).
				Str("user", order.User).
				Msg("error placing order")
			continue
		}

		for _, event := range events {
			if err := out.Publish(ctx, event); err != nil {
				log.Error().Err(err).Str("symbol", event.Symbol).Msg("error publishing trade event")
			}
		}
	}
}
