package engine

import "github.com/shopspring/decimal"

// Side is the direction of an order. Signed so that ledger deltas fall out
// of a plain multiplication instead of a branch.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Opposite returns the contra side used when walking the book for a match.
func (s Side) Opposite() Side {
	return -s
}

// ParseSide accepts the wire strings "buy"/"sell" (case sensitive, matching
// every other field in the command envelope).
func ParseSide(s string) (Side, bool) {
	switch s {
	case "buy":
		return Buy, true
	case "sell":
		return Sell, true
	default:
		return 0, false
	}
}

// Order is a single resting or incoming limit order. Price is always a
// tick-snapped value by the time an Order is constructed — Market.PlaceLimit
// snaps before allocating one.
type Order struct {
	ID     int64
	UserID string
	Side   Side
	Price  decimal.Decimal
	Qty    int64
	Leaves int64
	Ts     int64
}

// Filled reports the quantity already matched off this order.
func (o *Order) Filled() int64 {
	return o.Qty - o.Leaves
}
