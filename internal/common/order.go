package common

import "fmt"

// Order is the unit of trading intent handled by the matching core.
//
// Price is nil for a market order; present for a limit order. Prices are
// integers in minor units (e.g. cents) -- no floating point participates
// in a matching decision. Quantity is the order's remaining quantity and
// is mutated in place as the order fills.
type Order struct {
	User     string
	Symbol   string
	Side     Side
	Price    *int64
	Quantity uint64
	State    OrderState
}

// Type reports whether this order is a Limit or Market order, derived
// from price presence rather than stored redundantly on the order.
func (o Order) Type() OrderType {
	if o.Price == nil {
		return Market
	}
	return Limit
}

func (o Order) String() string {
	price := "market"
	if o.Price != nil {
		price = fmt.Sprintf("%d", *o.Price)
	}
	return fmt.Sprintf(
		"Order{user=%s symbol=%s side=%s price=%s quantity=%d state=%s}",
		o.User, o.Symbol, o.Side, price, o.Quantity, o.State,
	)
}
