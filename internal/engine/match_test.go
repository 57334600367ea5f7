package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newTestMarket(posLimit int64) *Market {
	var ts int64
	clock := func() int64 { ts++; return ts }
	return NewMarket("A", px("0.1"), posLimit, 1, clock)
}

func assertQtyCash(t *testing.T, m *Market, user string, qty int64, cash string) {
	t.Helper()
	p := m.Ledger.Get(user)
	if p.Qty != qty {
		t.Errorf("%s.qty = %d, want %d", user, p.Qty, qty)
	}
	if !p.Cash.Equal(px(cash)) {
		t.Errorf("%s.cash = %s, want %s", user, p.Cash, cash)
	}
}

func TestSimpleCross(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Sell, px("10.0"), 5)
	id, reason := m.PlaceLimit("u2", Buy, px("10.0"), 5)
	if reason != RejectNone || id == 0 {
		t.Fatalf("place rejected: %v", reason)
	}

	if _, ok := m.Book.BestPrice(Buy); ok {
		t.Error("expected empty bid book")
	}
	if _, ok := m.Book.BestPrice(Sell); ok {
		t.Error("expected empty ask book")
	}
	assertQtyCash(t, m, "u1", -5, "50")
	assertQtyCash(t, m, "u2", 5, "-50")
	if m.Tape.Len() != 1 {
		t.Fatalf("tape len = %d, want 1", m.Tape.Len())
	}
	tr := m.Tape.Recent(1)[0]
	if tr.Buyer != "u2" || tr.Seller != "u1" || tr.Qty != 5 || !tr.Price.Equal(px("10.0")) {
		t.Errorf("unexpected trade: %+v", tr)
	}
}

func TestPartialRest(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Sell, px("10.0"), 10)
	m.PlaceLimit("u2", Buy, px("10.0"), 4)

	lv, ok := m.Book.LevelAt(Sell, px("10.0"))
	if !ok || len(lv.orders) != 1 || lv.orders[0].Leaves != 6 {
		t.Fatalf("expected 6 leaves resting on the ask, got %+v", lv)
	}
	assertQtyCash(t, m, "u2", 4, "-40")
}

func TestPriceTimePriority(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Sell, px("10.0"), 3)
	m.PlaceLimit("u3", Sell, px("10.0"), 4)
	m.PlaceLimit("u2", Buy, px("10.0"), 5)

	trades := m.Tape.Recent(2)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Seller != "u1" || trades[0].Qty != 3 {
		t.Errorf("first trade = %+v, want seller u1 qty 3", trades[0])
	}
	if trades[1].Seller != "u3" || trades[1].Qty != 2 {
		t.Errorf("second trade = %+v, want seller u3 qty 2", trades[1])
	}

	lv, ok := m.Book.LevelAt(Sell, px("10.0"))
	if !ok || len(lv.orders) != 1 || lv.orders[0].UserID != "u3" || lv.orders[0].Leaves != 2 {
		t.Fatalf("expected u3's remaining 2 resting, got %+v", lv)
	}
}

func TestMultiLevelSweep(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Sell, px("10.0"), 2)
	m.PlaceLimit("u1", Sell, px("10.1"), 3)
	m.PlaceLimit("u2", Buy, px("10.1"), 4)

	trades := m.Tape.Recent(2)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if !trades[0].Price.Equal(px("10.0")) || trades[0].Qty != 2 {
		t.Errorf("first trade = %+v, want price 10.0 qty 2", trades[0])
	}
	if !trades[1].Price.Equal(px("10.1")) || trades[1].Qty != 2 {
		t.Errorf("second trade = %+v, want price 10.1 qty 2", trades[1])
	}

	lv, ok := m.Book.LevelAt(Sell, px("10.1"))
	if !ok || len(lv.orders) != 1 || lv.orders[0].Leaves != 1 {
		t.Fatalf("expected 1 remaining at 10.1, got %+v", lv)
	}
}

func TestPositionLimitPreCheck(t *testing.T) {
	m := newTestMarket(5)
	// prime a full book on the ask side so a match would be possible if
	// the pre-check didn't stop it first.
	m.PlaceLimit("maker", Sell, px("10.0"), 5)
	m.Ledger.Get("u2").Qty = 3

	id, reason := m.PlaceLimit("u2", Buy, px("10.0"), 5)
	if reason != RejectPosLimit || id != 0 {
		t.Fatalf("got (%d, %v), want (0, pos_limit)", id, reason)
	}
	assertQtyCash(t, m, "u2", 3, "0")
}

// TestMidMatchLimitTruncation exercises the per-fill re-check via
// TakeAtPrice rather than PlaceLimit: PlaceLimit's own upfront pre-check
// gates on the *entire* requested qty, so by construction a placeLimit
// call that survives the pre-check can never subsequently breach the same
// limit mid-match -- the per-fill check only has teeth on a path with no
// aggregate pre-check, which is exactly what TakeAtPrice is (see
// DESIGN.md).
func TestMidMatchLimitTruncation(t *testing.T) {
	m := newTestMarket(10)
	m.PlaceLimit("maker1", Sell, px("10.0"), 4)
	m.PlaceLimit("maker2", Sell, px("10.0"), 4)
	m.PlaceLimit("maker3", Sell, px("10.0"), 4)
	m.Ledger.Get("u2").Qty = 3

	filled := m.TakeAtPrice("u2", Buy, px("10.0"), 10)
	if filled != 4 {
		t.Fatalf("filled = %d, want 4 (breach stops matching after the first fill)", filled)
	}
	assertQtyCash(t, m, "u2", 7, "-40")

	lv, ok := m.Book.LevelAt(Sell, px("10.0"))
	if !ok || len(lv.orders) != 2 {
		t.Fatalf("expected maker2 and maker3 still resting, got %+v", lv)
	}
}

func TestClickTake(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Sell, px("10.0"), 3)

	filled := m.TakeAtPrice("u2", Buy, px("10.0"), 5)
	if filled != 3 {
		t.Fatalf("filled = %d, want 3", filled)
	}
	if _, ok := m.Book.LevelAt(Sell, px("10.0")); ok {
		t.Fatal("expected the level to be fully drained and removed")
	}
	assertQtyCash(t, m, "u2", 3, "-30")
}

func TestTickSnapOnPlacement(t *testing.T) {
	m := newTestMarket(100)
	id, reason := m.PlaceLimit("u1", Buy, px("10.04"), 1)
	if reason != RejectNone || id == 0 {
		t.Fatalf("place rejected: %v", reason)
	}
	if _, ok := m.Book.LevelAt(Buy, px("10.0")); !ok {
		t.Fatal("expected the order to rest at the snapped price 10.0")
	}
}

func TestCancelAtPriceRemovesBothOrders(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Buy, px("9.9"), 5)
	m.PlaceLimit("u1", Buy, px("9.9"), 3)

	removed := m.CancelAtPrice("u1", Buy, px("9.9"))
	if removed != 8 {
		t.Fatalf("removed = %d, want 8", removed)
	}
	if _, ok := m.Book.LevelAt(Buy, px("9.9")); ok {
		t.Fatal("expected the level to be deleted")
	}
}

func TestSettledMarketBlocksPlacementButNotCancel(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Buy, px("9.9"), 5)
	m.Settle(px("10.0"))

	id, reason := m.PlaceLimit("u1", Buy, px("10.0"), 1)
	if reason != RejectMarketClosed || id != 0 {
		t.Fatalf("got (%d, %v), want (0, market_closed)", id, reason)
	}

	removed := m.CancelAtPrice("u1", Buy, px("9.9"))
	if removed != 5 {
		t.Fatalf("cancel after settlement removed %d, want 5", removed)
	}
}

func TestTradePriceIsAlwaysMakerPrice(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Sell, px("10.0"), 5)
	m.PlaceLimit("u2", Buy, px("10.5"), 5)

	tr := m.Tape.Recent(1)[0]
	if !tr.Price.Equal(px("10.0")) {
		t.Errorf("trade price = %s, want maker price 10.0", tr.Price)
	}
}

func TestLedgerZeroSum(t *testing.T) {
	m := newTestMarket(100)
	m.PlaceLimit("u1", Sell, px("10.0"), 5)
	m.PlaceLimit("u2", Buy, px("10.0"), 5)

	total := decimal.Zero
	var qtySum int64
	for _, p := range m.Ledger.positions {
		total = total.Add(p.Cash)
		qtySum += p.Qty
	}
	if qtySum != 0 {
		t.Errorf("qty sum = %d, want 0", qtySum)
	}
	if !total.IsZero() {
		t.Errorf("cash sum = %s, want 0", total)
	}
}
