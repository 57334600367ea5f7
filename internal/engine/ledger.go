package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Position is one user's signed quantity and cash balance in a single
// market. Cash moves opposite to quantity on every fill: buying debits
// cash and credits quantity, selling the reverse.
type Position struct {
	Qty  int64
	Cash decimal.Decimal
}

// Ledger is the per-market position/cash book, one Position per user,
// created lazily on first touch — no pre-registration required.
type Ledger struct {
	positions map[string]*Position
}

func NewLedger() *Ledger {
	return &Ledger{positions: make(map[string]*Position)}
}

// Get returns userID's position, creating a flat, zero-cash one if this is
// its first appearance in the market.
func (l *Ledger) Get(userID string) *Position {
	p, ok := l.positions[userID]
	if !ok {
		p = &Position{Cash: decimal.Zero}
		l.positions[userID] = p
	}
	return p
}

// Peek returns userID's position without creating an entry for it —
// used by read-only views (fan-out) so simply looking at the book doesn't
// leave a phantom zero position behind for every connected viewer.
func (l *Ledger) Peek(userID string) Position {
	if p, ok := l.positions[userID]; ok {
		return *p
	}
	return Position{Cash: decimal.Zero}
}

// WouldBreach reports whether adding a fill of qty on side to userID's
// current position would push |qty| beyond posLimit. Used both as the
// pre-trade check before an order enters the book and as the mid-match
// check re-run against the aggressor after every individual fill.
func (l *Ledger) WouldBreach(userID string, side Side, qty int64, posLimit int64) bool {
	p := l.Get(userID)
	proposed := p.Qty + int64(side)*qty
	if proposed < 0 {
		proposed = -proposed
	}
	return proposed > posLimit
}

// Apply debits/credits both sides of a fill: qty moves from seller to
// buyer, cash moves from buyer to seller at price.
func (l *Ledger) Apply(buyer, seller string, qty int64, price decimal.Decimal) {
	notional := price.Mul(decimal.NewFromInt(qty))

	b := l.Get(buyer)
	b.Qty += qty
	b.Cash = b.Cash.Sub(notional)

	s := l.Get(seller)
	s.Qty -= qty
	s.Cash = s.Cash.Add(notional)
}

// Validate reports whether every position still respects posLimit. Both
// PlaceLimit and TakeAtPrice check WouldBreach before every fill, so this
// should always hold; it exists as a post-hoc invariant check callers can
// run after a batch of fills rather than something the hot fill path needs.
func (l *Ledger) Validate(posLimit int64) error {
	for userID, p := range l.positions {
		qty := p.Qty
		if qty < 0 {
			qty = -qty
		}
		if qty > posLimit {
			return fmt.Errorf("position limit breach: user %s holds %d, limit %d", userID, p.Qty, posLimit)
		}
	}
	return nil
}
