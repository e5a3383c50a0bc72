package ledger

import (
	"fmt"

	"fenrir/internal/bus"
)

// Subscribe wires the ledger to every symbol's outbound trade subject, so
// each emitted TradeEvent is applied to the buyer's and seller's accounts
// as it crosses the bus. The ledger stays entirely outside the matching
// core.
func (l *Ledger) Subscribe(b *bus.Bus, symbols []string) error {
	for _, symbol := range symbols {
		if _, err := b.SubscribeTrades(symbol, l.ApplyTrade); err != nil {
			return fmt.Errorf("subscribe ledger to %s: %w", symbol, err)
		}
	}
	return nil
}
