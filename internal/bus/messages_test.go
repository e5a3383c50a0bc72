package bus_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/common"
	"fenrir/internal/bus"
)

func TestWireOrderRoundTrip(t *testing.T) {
	p := int64(10050)
	original := common.Order{
		User:     "bob",
		Symbol:   "AAPL",
		Side:     common.Buy,
		Price:    &p,
		Quantity: 25,
		State:    common.Open,
	}

	wire := bus.FromOrder(original, "req-1")
	payload, err := json.Marshal(wire)
	require.NoError(t, err)

	var decoded bus.WireOrder
	require.NoError(t, json.Unmarshal(payload, &decoded))

	roundTripped, err := decoded.ToOrder()
	require.NoError(t, err)
	assert.Equal(t, original, roundTripped)
}

func TestWireOrderMarketHasNoPrice(t *testing.T) {
	order := common.Order{User: "bob", Symbol: "AAPL", Side: common.Sell, Quantity: 5, State: common.Open}
	wire := bus.FromOrder(order, "")

	payload, err := json.Marshal(wire)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), `"price"`)

	var decoded bus.WireOrder
	require.NoError(t, json.Unmarshal(payload, &decoded))
	roundTripped, err := decoded.ToOrder()
	require.NoError(t, err)
	assert.Nil(t, roundTripped.Price)
}

func TestWireOrderRejectsBadSide(t *testing.T) {
	wire := bus.WireOrder{User: "bob", Symbol: "AAPL", Side: "sideways", Type: "market", Quantity: 1}
	_, err := wire.ToOrder()
	assert.ErrorIs(t, err, bus.ErrMalformedOrder)
}

func TestWireOrderRejectsZeroQuantity(t *testing.T) {
	wire := bus.WireOrder{User: "bob", Symbol: "AAPL", Side: "buy", Type: "market", Quantity: 0}
	_, err := wire.ToOrder()
	assert.ErrorIs(t, err, bus.ErrMalformedOrder)
}

func TestWireTradeEventRoundTrip(t *testing.T) {
	original := common.TradeEvent{Buyer: "bob", Seller: "alice", Symbol: "AAPL", Quantity: 10, Price: 100}
	wire := bus.FromTradeEvent(original)

	payload, err := json.Marshal(wire)
	require.NoError(t, err)

	var decoded bus.WireTradeEvent
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, original, decoded.ToTradeEvent())
}
