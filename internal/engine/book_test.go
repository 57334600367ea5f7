package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func px(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBookBestPriceEmpty(t *testing.T) {
	b := NewBook()
	if _, ok := b.BestPrice(Buy); ok {
		t.Fatal("expected no best bid on an empty book")
	}
	if _, ok := b.BestPrice(Sell); ok {
		t.Fatal("expected no best ask on an empty book")
	}
}

func TestBookBestPricePicksExtremes(t *testing.T) {
	b := NewBook()
	b.rest(Buy, &Order{ID: 1, UserID: "u1", Side: Buy, Price: px("10.0"), Leaves: 1})
	b.rest(Buy, &Order{ID: 2, UserID: "u1", Side: Buy, Price: px("10.2"), Leaves: 1})
	b.rest(Sell, &Order{ID: 3, UserID: "u2", Side: Sell, Price: px("10.5"), Leaves: 1})
	b.rest(Sell, &Order{ID: 4, UserID: "u2", Side: Sell, Price: px("10.3"), Leaves: 1})

	bid, ok := b.BestPrice(Buy)
	if !ok || !bid.Equal(px("10.2")) {
		t.Errorf("best bid = %v, %v; want 10.2, true", bid, ok)
	}
	ask, ok := b.BestPrice(Sell)
	if !ok || !ask.Equal(px("10.3")) {
		t.Errorf("best ask = %v, %v; want 10.3, true", ask, ok)
	}
}

func TestBookEmptyLevelRemoved(t *testing.T) {
	b := NewBook()
	o := &Order{ID: 1, UserID: "u1", Side: Buy, Price: px("10.0"), Leaves: 5}
	b.rest(Buy, o)
	// Drain the order the way the matching loop does: zero its leaves and
	// pop it off the level before asking the book to drop the level.
	o.Leaves = 0
	lv, _ := b.LevelAt(Buy, px("10.0"))
	lv.orders = lv.orders[1:]
	b.dropLevelIfEmpty(Buy, px("10.0"))

	if _, ok := b.LevelAt(Buy, px("10.0")); ok {
		t.Fatal("expected the drained level to be removed from the book")
	}
	if _, ok := b.BestPrice(Buy); ok {
		t.Fatal("expected no best bid once the only level is drained")
	}
}

func TestCancelAtPriceIdempotent(t *testing.T) {
	b := NewBook()
	b.rest(Buy, &Order{ID: 1, UserID: "u1", Side: Buy, Price: px("9.9"), Leaves: 5})
	b.rest(Buy, &Order{ID: 2, UserID: "u1", Side: Buy, Price: px("9.9"), Leaves: 3})
	b.rest(Buy, &Order{ID: 3, UserID: "u2", Side: Buy, Price: px("9.9"), Leaves: 2})

	removed := b.CancelAtPrice(Buy, px("9.9"), "u1")
	if removed != 8 {
		t.Fatalf("first cancel removed %d, want 8", removed)
	}
	lv, ok := b.LevelAt(Buy, px("9.9"))
	if !ok || len(lv.orders) != 1 {
		t.Fatalf("expected u2's order to remain resting alone")
	}

	removed = b.CancelAtPrice(Buy, px("9.9"), "u1")
	if removed != 0 {
		t.Fatalf("second cancel removed %d, want 0", removed)
	}
}
