package engine

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// level holds every resting order at one price, oldest first (FIFO).
type level struct {
	price  decimal.Decimal
	orders []*Order
}

// maxPriceHeap orders bid prices highest-first.
type maxPriceHeap []decimal.Decimal

func (h maxPriceHeap) Len() int            { return len(h) }
func (h maxPriceHeap) Less(i, j int) bool  { return h[i].GreaterThan(h[j]) }
func (h maxPriceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxPriceHeap) Push(x interface{}) { *h = append(*h, x.(decimal.Decimal)) }
func (h *maxPriceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
func (h maxPriceHeap) Peek() decimal.Decimal { return h[0] }

// minPriceHeap orders ask prices lowest-first.
type minPriceHeap []decimal.Decimal

func (h minPriceHeap) Len() int            { return len(h) }
func (h minPriceHeap) Less(i, j int) bool  { return h[i].LessThan(h[j]) }
func (h minPriceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minPriceHeap) Push(x interface{}) { *h = append(*h, x.(decimal.Decimal)) }
func (h *minPriceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
func (h minPriceHeap) Peek() decimal.Decimal { return h[0] }

// Book is a single symbol's resting orders, price-time priority on each
// side. Price keys are normalized via priceKey so equal prices always land
// in the same map bucket regardless of decimal.Decimal internal scale.
type Book struct {
	bids    map[string]*level
	asks    map[string]*level
	bidHeap maxPriceHeap
	askHeap minPriceHeap
}

func NewBook() *Book {
	return &Book{
		bids: make(map[string]*level),
		asks: make(map[string]*level),
	}
}

func (b *Book) levelsFor(side Side) map[string]*level {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// BestPrice returns the best (highest bid / lowest ask) resting price on
// side, if any orders rest there.
func (b *Book) BestPrice(side Side) (decimal.Decimal, bool) {
	if side == Buy {
		for b.bidHeap.Len() > 0 {
			top := b.bidHeap.Peek()
			if _, ok := b.bids[priceKey(top)]; ok {
				return top, true
			}
			heap.Pop(&b.bidHeap)
		}
		return decimal.Zero, false
	}
	for b.askHeap.Len() > 0 {
		top := b.askHeap.Peek()
		if _, ok := b.asks[priceKey(top)]; ok {
			return top, true
		}
		heap.Pop(&b.askHeap)
	}
	return decimal.Zero, false
}

// LevelAt returns the resting level at price on side, if one exists.
func (b *Book) LevelAt(side Side, price decimal.Decimal) (*level, bool) {
	lv, ok := b.levelsFor(side)[priceKey(price)]
	return lv, ok
}

// rest appends o to its side's book, creating the price level (and pushing
// it onto the heap) if this is the first order at that price.
func (b *Book) rest(side Side, o *Order) {
	levels := b.levelsFor(side)
	key := priceKey(o.Price)
	lv, ok := levels[key]
	if !ok {
		lv = &level{price: o.Price}
		levels[key] = lv
		if side == Buy {
			heap.Push(&b.bidHeap, o.Price)
		} else {
			heap.Push(&b.askHeap, o.Price)
		}
	}
	lv.orders = append(lv.orders, o)
}

// dropLevelIfEmpty removes a fully-drained level from the book. The stale
// entry is left on the heap and lazily skipped by BestPrice — cheaper than
// a linear heap removal for a level that is, by definition, already gone.
func (b *Book) dropLevelIfEmpty(side Side, price decimal.Decimal) {
	lv, ok := b.LevelAt(side, price)
	if !ok || len(lv.orders) > 0 {
		return
	}
	delete(b.levelsFor(side), priceKey(price))
}

// CancelAtPrice removes every resting order owned by userID at the given
// side/price. Returns the total quantity removed. Cancelling a price with
// no matching orders is a no-op.
func (b *Book) CancelAtPrice(side Side, price decimal.Decimal, userID string) int64 {
	lv, ok := b.LevelAt(side, price)
	if !ok {
		return 0
	}
	var removedQty int64
	kept := lv.orders[:0]
	for _, o := range lv.orders {
		if o.UserID == userID {
			removedQty += o.Leaves
			continue
		}
		kept = append(kept, o)
	}
	lv.orders = kept
	b.dropLevelIfEmpty(side, price)
	return removedQty
}

// MineAtPrice sums the resting quantity owned by userID at side/price —
// the "my" field in a book_snapshot level. Depth at any one price is small
// at this system's scale, so a linear scan over the level needs nothing
// fancier.
func (b *Book) MineAtPrice(side Side, price decimal.Decimal, userID string) int64 {
	lv, ok := b.LevelAt(side, price)
	if !ok {
		return 0
	}
	var sum int64
	for _, o := range lv.orders {
		if o.UserID == userID {
			sum += o.Leaves
		}
	}
	return sum
}

// Snapshot returns up to depth price levels on side, best price first, each
// as (price, total resting qty).
func (b *Book) Snapshot(side Side, depth int) []PriceLevel {
	levels := b.levelsFor(side)
	out := make([]PriceLevel, 0, len(levels))
	for _, lv := range levels {
		if len(lv.orders) == 0 {
			continue
		}
		var qty int64
		for _, o := range lv.orders {
			qty += o.Leaves
		}
		out = append(out, PriceLevel{Price: lv.price, Qty: qty})
	}
	sortLevels(out, side)
	if len(out) > depth {
		out = out[:depth]
	}
	return out
}

// PriceLevel is an aggregated, read-only view of one side of the book at
// one price.
type PriceLevel struct {
	Price decimal.Decimal
	Qty   int64
}

func sortLevels(levels []PriceLevel, side Side) {
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0; j-- {
			better := levels[j].Price.GreaterThan(levels[j-1].Price)
			if side == Sell {
				better = levels[j].Price.LessThan(levels[j-1].Price)
			}
			if !better {
				break
			}
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}
