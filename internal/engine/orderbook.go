package engine

import (
	"errors"
	"fmt"

	"github.com/tidwall/btree"

	"fenrir/internal/common"
)

var (
	// ErrMissingPrice is returned when a limit order arrives without a price.
	ErrMissingPrice = errors.New("limit order missing price")
	// ErrUnexpectedPrice is returned when a market order arrives carrying a price.
	ErrUnexpectedPrice = errors.New("market order must not carry a price")
	// ErrInvalidQuantity is returned for a non-positive order quantity.
	ErrInvalidQuantity = errors.New("order quantity must be positive")
	// ErrSymbolMismatch is returned when an order's symbol does not match the book it was handed to.
	ErrSymbolMismatch = errors.New("order symbol does not match book")
)

// PriceLevel holds every resting order at one price on one side of a book,
// in FIFO (time priority) order.
type PriceLevel struct {
	Price  int64
	Orders []*common.Order
}

type priceLevels = btree.BTreeG[*PriceLevel]

// OrderBook holds the resting limit orders for a single symbol and matches
// incoming orders against them in strict price-time priority.
type OrderBook struct {
	Symbol string

	// Bids is ordered highest price first; Asks is ordered lowest price first.
	// Both orderings make "best price" the tree's Min element.
	Bids *priceLevels
	Asks *priceLevels
}

// NewOrderBook returns an empty book for the given symbol.
func NewOrderBook(symbol string) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price > b.Price
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price
	})
	return &OrderBook{
		Symbol: symbol,
		Bids:   bids,
		Asks:   asks,
	}
}

// AddLimitOrder matches the incoming order against the opposite side of the
// book as far as it crosses, then rests any remaining quantity at order.Price
// on the same side.
func (book *OrderBook) AddLimitOrder(order common.Order) ([]common.TradeEvent, error) {
	if err := book.validate(order); err != nil {
		return nil, err
	}
	if order.Price == nil {
		return nil, ErrMissingPrice
	}
	price := *order.Price
	initialQty := order.Quantity

	var opposite *priceLevels
	var ascending bool
	switch order.Side {
	case common.Buy:
		opposite = book.Asks
		ascending = true
	case common.Sell:
		opposite = book.Bids
		ascending = false
	}

	crosses := false
	if top, ok := opposite.Min(); ok {
		if order.Side == common.Buy {
			crosses = top.Price <= price
		} else {
			crosses = top.Price >= price
		}
	}

	remaining := order.Quantity
	var events []common.TradeEvent
	if crosses {
		remaining, events = book.matchWalk(remaining, &price, opposite, ascending, order.Side, order.User)
	}

	if remaining > 0 {
		resting := order
		resting.Quantity = remaining
		if remaining == initialQty {
			resting.State = common.Open
		} else {
			resting.State = common.PartiallyFilled
		}

		var same *priceLevels
		switch order.Side {
		case common.Buy:
			same = book.Bids
		case common.Sell:
			same = book.Asks
		}
		insertOrder(same, price, resting)
	}

	return events, nil
}

// AddMarketOrder sweeps the opposite side of the book for up to order.Quantity.
// Any unfilled remainder is discarded; market orders never rest.
func (book *OrderBook) AddMarketOrder(order common.Order) ([]common.TradeEvent, error) {
	if err := book.validate(order); err != nil {
		return nil, err
	}
	if order.Price != nil {
		return nil, ErrUnexpectedPrice
	}

	var opposite *priceLevels
	var ascending bool
	switch order.Side {
	case common.Buy:
		opposite = book.Asks
		ascending = true
	case common.Sell:
		opposite = book.Bids
		ascending = false
	}

	_, events := book.matchWalk(order.Quantity, nil, opposite, ascending, order.Side, order.User)
	return events, nil
}

// matchWalk consumes up to toFill units from opposite, traversing price
// levels ascending (Buy taker vs asks) or descending (Sell taker vs bids).
// priceLimit is nil for market orders, which accept any price.
func (book *OrderBook) matchWalk(
	toFill uint64,
	priceLimit *int64,
	opposite *priceLevels,
	ascending bool,
	takerSide common.Side,
	takerUser string,
) (uint64, []common.TradeEvent) {
	var events []common.TradeEvent

	for toFill > 0 {
		level, ok := opposite.MinMut()
		if !ok {
			break
		}

		if priceLimit != nil {
			if ascending {
				if level.Price > *priceLimit {
					break
				}
			} else {
				if level.Price < *priceLimit {
					break
				}
			}
		}

		idx := 0
		for idx < len(level.Orders) && toFill > 0 {
			maker := level.Orders[idx]
			consumed := min(toFill, maker.Quantity)

			maker.Quantity -= consumed
			if maker.Quantity == 0 {
				maker.State = common.Filled
			} else {
				maker.State = common.PartiallyFilled
			}

			buyer, seller := tradeParties(maker, takerUser)
			events = append(events, common.TradeEvent{
				Buyer:    buyer,
				Seller:   seller,
				Symbol:   book.Symbol,
				Quantity: consumed,
				Price:    level.Price,
			})

			toFill -= consumed
			if maker.Quantity == 0 {
				idx++
			}
		}

		if idx > 0 {
			level.Orders = level.Orders[idx:]
		}
		if len(level.Orders) == 0 {
			opposite.Delete(level)
		}
	}

	return toFill, events
}

// tradeParties decides buyer/seller based on the maker's side, regardless of
// which side is the taker: a Buy maker is the buyer, a Sell maker the seller.
func tradeParties(maker *common.Order, takerUser string) (buyer, seller string) {
	if maker.Side == common.Buy {
		return maker.User, takerUser
	}
	return takerUser, maker.User
}

func insertOrder(levels *priceLevels, price int64, order common.Order) {
	level, ok := levels.GetMut(&PriceLevel{Price: price})
	if ok {
		level.Orders = append(level.Orders, &order)
		return
	}
	levels.Set(&PriceLevel{Price: price, Orders: []*common.Order{&order}})
}

func (book *OrderBook) validate(order common.Order) error {
	if order.Symbol != book.Symbol {
		return fmt.Errorf("%w: order symbol %q, book symbol %q", ErrSymbolMismatch, order.Symbol, book.Symbol)
	}
	if order.Quantity == 0 {
		return ErrInvalidQuantity
	}
	return nil
}
