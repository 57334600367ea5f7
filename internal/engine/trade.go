package engine

import "github.com/shopspring/decimal"

// Trade is one completed fill, reported to a market's tape and to its
// OnTrade callback for fan-out.
type Trade struct {
	Ts     int64
	Symbol string
	Price  decimal.Decimal
	Qty    int64
	Buyer  string
	Seller string
}

// UserStat accumulates a single user's fill history in one market: total
// quantity and notional bought/sold, enough to derive a VWAP without
// storing every individual trade per user.
type UserStat struct {
	BuyQty       int64
	BuyNotional  decimal.Decimal
	SellQty      int64
	SellNotional decimal.Decimal
}

func newUserStat() *UserStat {
	return &UserStat{BuyNotional: decimal.Zero, SellNotional: decimal.Zero}
}

// AvgBuyPrice returns the VWAP of this user's buys, zero if none.
func (u *UserStat) AvgBuyPrice() decimal.Decimal {
	if u.BuyQty == 0 {
		return decimal.Zero
	}
	return u.BuyNotional.Div(decimal.NewFromInt(u.BuyQty))
}

// AvgSellPrice returns the VWAP of this user's sells, zero if none.
func (u *UserStat) AvgSellPrice() decimal.Decimal {
	if u.SellQty == 0 {
		return decimal.Zero
	}
	return u.SellNotional.Div(decimal.NewFromInt(u.SellQty))
}

func (u *UserStat) record(side Side, qty int64, price decimal.Decimal) {
	notional := price.Mul(decimal.NewFromInt(qty))
	if side == Buy {
		u.BuyQty += qty
		u.BuyNotional = u.BuyNotional.Add(notional)
		return
	}
	u.SellQty += qty
	u.SellNotional = u.SellNotional.Add(notional)
}
