package engine

import "github.com/shopspring/decimal"

const tapeCapacity = 1000

// Market is one tradable symbol inside a session: its book, its ledger, its
// trade tape, and per-user fill statistics. Scoped to live inside a single
// session rather than a process-wide registry; no margin, leverage, or
// funding bookkeeping since positions here carry only qty and cash.
type Market struct {
	Symbol           string
	TickSize         decimal.Decimal
	PosLimit         int64
	ClickSizeDefault int64

	Open       bool
	Settlement *decimal.Decimal

	Book      *Book
	Ledger    *Ledger
	Tape      *Ring[Trade]
	UserStats map[string]*UserStat

	LastPrice decimal.Decimal

	nextOrderID int64

	// OnTrade fires synchronously after every fill is recorded. The session
	// that owns this market wires it to its own broadcast path at creation
	// time — see internal/session/session.go.
	OnTrade func(Trade)

	now func() int64
}

// NewMarket constructs an open market with an empty book and ledger.
// now supplies the clock used to timestamp orders and trades — injected so
// tests can pin time instead of reaching for a wall clock.
func NewMarket(symbol string, tickSize decimal.Decimal, posLimit, clickSizeDefault int64, now func() int64) *Market {
	return &Market{
		Symbol:           symbol,
		TickSize:         tickSize,
		PosLimit:         posLimit,
		ClickSizeDefault: clickSizeDefault,
		Open:             true,
		Book:             NewBook(),
		Ledger:           NewLedger(),
		Tape:             NewRing[Trade](tapeCapacity),
		UserStats:        make(map[string]*UserStat),
		LastPrice:        decimal.Zero,
		now:              now,
	}
}

func (m *Market) statsFor(userID string) *UserStat {
	s, ok := m.UserStats[userID]
	if !ok {
		s = newUserStat()
		m.UserStats[userID] = s
	}
	return s
}

// recordTrade appends to the tape, updates LastPrice and both sides'
// UserStats, then invokes OnTrade if wired.
func (m *Market) recordTrade(buyer, seller string, qty int64, price decimal.Decimal) {
	t := Trade{
		Ts:     m.now(),
		Symbol: m.Symbol,
		Price:  price,
		Qty:    qty,
		Buyer:  buyer,
		Seller: seller,
	}
	m.Tape.Push(t)
	m.LastPrice = price
	m.statsFor(buyer).record(Buy, qty, price)
	m.statsFor(seller).record(Sell, qty, price)
	if m.OnTrade != nil {
		m.OnTrade(t)
	}
}

// SetOpen flips the trading-halt flag. A no-op once the market has been
// settled: settlement is terminal, so a later admin_toggle_market can't
// resurrect a settled market's Open flag.
func (m *Market) SetOpen(open bool) {
	if m.Settlement != nil {
		return
	}
	m.Open = open
}

// Settle fixes a final settlement price and permanently closes the market
// to new order placement. Resting orders can still be cancelled.
func (m *Market) Settle(price decimal.Decimal) {
	snapped := Snap(price, m.TickSize)
	m.Settlement = &snapped
	m.Open = false
}

// ImpliedPrice is the mark used for unrealized PnL: settlement price if
// settled, else the two-sided mid if both a bid and an ask are resting,
// else whichever single side is resting, else zero. LastPrice is not
// consulted.
func (m *Market) ImpliedPrice() decimal.Decimal {
	if m.Settlement != nil {
		return *m.Settlement
	}
	bid, okBid := m.Book.BestPrice(Buy)
	ask, okAsk := m.Book.BestPrice(Sell)
	if okBid && okAsk {
		return bid.Add(ask).Div(decimal.NewFromInt(2))
	}
	if okBid {
		return bid
	}
	if okAsk {
		return ask
	}
	return decimal.Zero
}
