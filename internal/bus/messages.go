package bus

import (
	"errors"
	"fmt"
	"strings"

	"fenrir/internal/common"
)

// ErrDecode is returned when an inbound payload cannot be decoded into a
// WireOrder.
var ErrDecode = errors.New("invalid order payload")

// ErrMalformedOrder is returned when a decoded payload fails domain
// validation: an unknown side/type, a limit order with no price, or a
// non-positive quantity.
var ErrMalformedOrder = errors.New("malformed order")

const (
	inboundSubjectPrefix  = "order.inbound."
	outboundSubjectPrefix = "trade.outbound."
	errorSubjectPrefix    = "order.error."
)

// InboundSubject is the NATS subject a symbol's orders are published to.
func InboundSubject(symbol string) string { return inboundSubjectPrefix + symbol }

// OutboundSubject is the NATS subject a symbol's trade events are published to.
func OutboundSubject(symbol string) string { return outboundSubjectPrefix + symbol }

// ErrorSubject is the NATS subject error reports for a symbol are published to.
func ErrorSubject(symbol string) string { return errorSubjectPrefix + symbol }

// WireOrder is the self-describing textual (JSON) record an Order is
// encoded as on the bus. Type selects a limit or market order: a limit order
// must carry Price, and a market order's Price is dropped on decode (FromOrder
// omits it). The record has no state field; decoded orders start Open.
type WireOrder struct {
	RequestID string `json:"request_id,omitempty"`
	User      string `json:"user"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Type      string `json:"type"`
	Price     *int64 `json:"price,omitempty"`
	Quantity  uint64 `json:"quantity"`
}

// ToOrder validates and converts the wire record into a common.Order. The
// resulting order always carries State Open.
func (w WireOrder) ToOrder() (common.Order, error) {
	var side common.Side
	switch strings.ToLower(w.Side) {
	case "buy":
		side = common.Buy
	case "sell":
		side = common.Sell
	default:
		return common.Order{}, fmt.Errorf("%w: invalid side %q", ErrMalformedOrder, w.Side)
	}

	orderType := strings.ToLower(w.Type)
	if orderType != "limit" && orderType != "market" {
		return common.Order{}, fmt.Errorf("%w: invalid type %q", ErrMalformedOrder, w.Type)
	}

	if w.Quantity == 0 {
		return common.Order{}, fmt.Errorf("%w: quantity must be positive", ErrMalformedOrder)
	}
	if orderType == "limit" && w.Price == nil {
		return common.Order{}, fmt.Errorf("%w: limit order missing price", ErrMalformedOrder)
	}

	price := w.Price
	if orderType == "market" {
		price = nil
	}

	return common.Order{
		User:     w.User,
		Symbol:   w.Symbol,
		Side:     side,
		Price:    price,
		Quantity: w.Quantity,
		State:    common.Open,
	}, nil
}

// FromOrder converts an order to its wire form for re-publication / logging.
func FromOrder(order common.Order, requestID string) WireOrder {
	side := "Buy"
	if order.Side == common.Sell {
		side = "Sell"
	}
	orderType := "Market"
	if order.Price != nil {
		orderType = "Limit"
	}
	return WireOrder{
		RequestID: requestID,
		User:      order.User,
		Symbol:    order.Symbol,
		Side:      side,
		Type:      orderType,
		Price:     order.Price,
		Quantity:  order.Quantity,
	}
}

// WireTradeEvent is the self-describing textual record a TradeEvent is
// encoded as on the outbound bus subject.
type WireTradeEvent struct {
	Buyer    string `json:"buyer"`
	Seller   string `json:"seller"`
	Symbol   string `json:"symbol"`
	Quantity uint64 `json:"quantity"`
	Price    int64  `json:"price"`
}

func (w WireTradeEvent) ToTradeEvent() common.TradeEvent {
	return common.TradeEvent{
		Buyer:    w.Buyer,
		Seller:   w.Seller,
		Symbol:   w.Symbol,
		Quantity: w.Quantity,
		Price:    w.Price,
	}
}

func FromTradeEvent(e common.TradeEvent) WireTradeEvent {
	return WireTradeEvent{
		Buyer:    e.Buyer,
		Seller:   e.Seller,
		Symbol:   e.Symbol,
		Quantity: e.Quantity,
		Price:    e.Price,
	}
}

// WireError reports a fault back to whoever submitted the order that
// triggered it, identified by RequestID.
type WireError struct {
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
}
