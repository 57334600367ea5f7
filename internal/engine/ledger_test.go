package engine

import "testing"

func TestLedgerPeekDoesNotCreateEntry(t *testing.T) {
	l := NewLedger()
	_ = l.Peek("ghost")
	if _, ok := l.positions["ghost"]; ok {
		t.Fatal("Peek must not create a ledger entry for an unseen user")
	}
}

func TestLedgerGetIsLazyAndStable(t *testing.T) {
	l := NewLedger()
	p1 := l.Get("u1")
	p1.Qty = 7
	p2 := l.Get("u1")
	if p2.Qty != 7 {
		t.Fatalf("second Get returned a different position, qty = %d", p2.Qty)
	}
}

func TestWouldBreachSymmetric(t *testing.T) {
	l := NewLedger()
	l.Get("u1").Qty = -3

	if l.WouldBreach("u1", Sell, 2, 5) {
		t.Error("|-3-2|=5 should not breach a limit of 5")
	}
	if !l.WouldBreach("u1", Sell, 3, 5) {
		t.Error("|-3-3|=6 should breach a limit of 5")
	}
}

func TestApplyIsZeroSum(t *testing.T) {
	l := NewLedger()
	l.Apply("buyer", "seller", 5, px("10.0"))

	b, s := l.Get("buyer"), l.Get("seller")
	if b.Qty != 5 || s.Qty != -5 {
		t.Fatalf("qty deltas = (%d, %d), want (5, -5)", b.Qty, s.Qty)
	}
	if !b.Cash.Add(s.Cash).IsZero() {
		t.Fatalf("cash deltas do not sum to zero: %s + %s", b.Cash, s.Cash)
	}
}

func TestLedgerValidateCatchesBreach(t *testing.T) {
	l := NewLedger()
	l.Get("u1").Qty = 5
	if err := l.Validate(10); err != nil {
		t.Fatalf("expected no error within limit, got %v", err)
	}

	l.Get("u1").Qty = 11
	if err := l.Validate(10); err == nil {
		t.Fatal("expected an error once a position exceeds the limit")
	}
}
