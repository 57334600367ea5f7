package engine

import "github.com/shopspring/decimal"

// RejectReason names why PlaceLimit refused to accept an order.
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectMarketClosed RejectReason = "market_closed"
	RejectPosLimit     RejectReason = "pos_limit"
	RejectBadQty       RejectReason = "bad_qty"
)

// crosses reports whether an incoming order at price on side would match
// against a resting order at oppBest.
func crosses(side Side, price, oppBest decimal.Decimal) bool {
	if side == Buy {
		return !price.LessThan(oppBest)
	}
	return !price.GreaterThan(oppBest)
}

// PlaceLimit submits a new limit order: snap the price, pre-check the
// aggressor's position limit against the full requested quantity, walk the
// opposite side while it crosses (re-checking the aggressor's limit after
// every individual fill), then rest whatever quantity remains.
//
// Returns the order's ID (0 if rejected) and a RejectReason (empty
// on success). A mid-match limit breach is not a reject: the order keeps
// whatever it already filled and simply stops matching further — the
// caller still gets back a valid order ID.
func (m *Market) PlaceLimit(userID string, side Side, price decimal.Decimal, qty int64) (int64, RejectReason) {
	if !m.Open {
		return 0, RejectMarketClosed
	}
	if qty <= 0 {
		return 0, RejectBadQty
	}

	snapped := Snap(price, m.TickSize)
	if m.Ledger.WouldBreach(userID, side, qty, m.PosLimit) {
		return 0, RejectPosLimit
	}

	m.nextOrderID++
	order := &Order{
		ID:     m.nextOrderID,
		UserID: userID,
		Side:   side,
		Price:  snapped,
		Qty:    qty,
		Leaves: qty,
		Ts:     m.now(),
	}

	opp := side.Opposite()

matchLoop:
	for order.Leaves > 0 {
		oppBest, ok := m.Book.BestPrice(opp)
		if !ok || !crosses(side, snapped, oppBest) {
			break
		}
		lv, ok := m.Book.LevelAt(opp, oppBest)
		if !ok {
			break
		}
		for len(lv.orders) > 0 && order.Leaves > 0 {
			maker := lv.orders[0]
			fillQty := min64(order.Leaves, maker.Leaves)

			if m.Ledger.WouldBreach(userID, side, fillQty, m.PosLimit) {
				break matchLoop
			}

			buyer, seller := resolveBuyerSeller(side, order.UserID, maker.UserID)
			m.Ledger.Apply(buyer, seller, fillQty, oppBest)
			order.Leaves -= fillQty
			maker.Leaves -= fillQty
			m.recordTrade(buyer, seller, fillQty, oppBest)

			if maker.Leaves == 0 {
				lv.orders = lv.orders[1:]
			}
		}
		if len(lv.orders) == 0 {
			m.Book.dropLevelIfEmpty(opp, oppBest)
		}
	}

	if order.Leaves > 0 {
		m.Book.rest(side, order)
	}
	return order.ID, RejectNone
}

// TakeAtPrice is the one-shot "click to take" variant: match only against
// resting orders already sitting at exactly price, up to maxQty, never
// resting an unfilled remainder. Returns the quantity actually filled, so
// a caller can tell how much of the click executed, not just whether it
// succeeded.
func (m *Market) TakeAtPrice(userID string, side Side, price decimal.Decimal, maxQty int64) int64 {
	if !m.Open || maxQty <= 0 {
		return 0
	}
	snapped := Snap(price, m.TickSize)
	opp := side.Opposite()

	lv, ok := m.Book.LevelAt(opp, snapped)
	if !ok {
		return 0
	}

	var filled int64
	remaining := maxQty
	for remaining > 0 && len(lv.orders) > 0 {
		maker := lv.orders[0]
		fillQty := min64(remaining, maker.Leaves)

		if m.Ledger.WouldBreach(userID, side, fillQty, m.PosLimit) {
			break
		}

		buyer, seller := resolveBuyerSeller(side, userID, maker.UserID)
		m.Ledger.Apply(buyer, seller, fillQty, snapped)
		maker.Leaves -= fillQty
		remaining -= fillQty
		filled += fillQty
		m.recordTrade(buyer, seller, fillQty, snapped)

		if maker.Leaves == 0 {
			lv.orders = lv.orders[1:]
		}
	}
	if len(lv.orders) == 0 {
		m.Book.dropLevelIfEmpty(opp, snapped)
	}
	return filled
}

// CancelAtPrice removes userID's resting quantity at side/price, returning
// how much was pulled. Works even on a closed or settled market — a
// resting order shouldn't become permanently stuck once trading halts —
// and is a no-op on an absent price.
func (m *Market) CancelAtPrice(userID string, side Side, price decimal.Decimal) int64 {
	return m.Book.CancelAtPrice(side, Snap(price, m.TickSize), userID)
}

func resolveBuyerSeller(side Side, aggressor, resting string) (buyer, seller string) {
	if side == Buy {
		return aggressor, resting
	}
	return resting, aggressor
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
