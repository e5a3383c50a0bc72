package common

import "fmt"

// TradeEvent is the immutable record of a single match. Price is always
// the resting maker order's price, never the taker's.
type TradeEvent struct {
	Buyer    string
	Seller   string
	Symbol   string
	Quantity uint64
	Price    int64
}

func (t TradeEvent) String() string {
	return fmt.Sprintf(
		"TradeEvent{buyer=%s seller=%s symbol=%s quantity=%d price=%d}",
		t.Buyer, t.Seller, t.Symbol, t.Quantity, t.Price,
	)
}
