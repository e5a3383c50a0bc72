package engine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/common"
	"fenrir/internal/engine"
)

// fakeSource feeds a fixed slice of orders, then blocks until ctx is done.
type fakeSource struct {
	orders []common.Order
	idx    atomic.Int32
}

func (s *fakeSource) Next(ctx context.Context) (common.Order, error) {
	i := s.idx.Load()
	if int(i) < len(s.orders) {
		s.idx.Add(1)
		return s.orders[i], nil
	}
	<-ctx.Done()
	return common.Order{}, ctx.Err()
}

type recordingSink struct {
	mu     sync.Mutex
	events []common.TradeEvent
}

func (s *recordingSink) Publish(ctx context.Context, event common.TradeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) all() []common.TradeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]common.TradeEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestMatchingEngineSubmitUnknownSymbol(t *testing.T) {
	eng := engine.NewMatchingEngine([]string{"AAPL"})

	var rejected []string
	eng.OnReject(func(symbol string) { rejected = append(rejected, symbol) })

	_, err := eng.Submit(limitOrder("buyer", "MSFT", common.Buy, 100, 1))
	assert.ErrorIs(t, err, engine.ErrUnknownSymbol)
	assert.Equal(t, []string{"MSFT"}, rejected)
}

func TestMatchingEngineDispatchesByPricePresence(t *testing.T) {
	eng := engine.NewMatchingEngine([]string{"AAPL"})

	_, err := eng.Submit(limitOrder("seller", "AAPL", common.Sell, 100, 10))
	require.NoError(t, err)

	events, err := eng.Submit(marketOrder("buyer", "AAPL", common.Buy, 10))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.EqualValues(t, 100, events[0].Price)
}

func TestMatchingEngineRunProcessesOrdersInOrder(t *testing.T) {
	eng := engine.NewMatchingEngine([]string{"AAPL"})

	src := &fakeSource{orders: []common.Order{
		limitOrder("alice", "AAPL", common.Sell, 100, 10),
		limitOrder("bob", "AAPL", common.Buy, 100, 10),
	}}
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx, src, sink) }()

	// Give the loop a chance to drain both orders, then stop it.
	for src.idx.Load() < 2 {
	}
	cancel()
	err := <-done
	assert.NoError(t, err)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, "bob", events[0].Buyer)
	assert.Equal(t, "alice", events[0].Seller)
}

func TestMatchingEngineRunStopsOnContextCancel(t *testing.T) {
	eng := engine.NewMatchingEngine([]string{"AAPL"})
	src := &fakeSource{}
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Run(ctx, src, sink)
	assert.True(t, err == nil || errors.Is(err, context.Canceled))
}
