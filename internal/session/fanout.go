package session

import (
	"github.com/shopspring/decimal"

	"github.com/foundrysim/tradefloor/internal/engine"
)

const bookDepth = 200

func (s *Session) marketsMeta() []MarketMeta {
	out := make([]MarketMeta, 0, len(s.symbols))
	for _, sym := range s.symbols {
		m := s.markets[sym]

		var settlement *string
		if m.Settlement != nil {
			v := m.Settlement.String()
			settlement = &v
		}
		var bestBid, bestAsk *string
		if p, ok := m.Book.BestPrice(engine.Buy); ok {
			v := p.String()
			bestBid = &v
		}
		if p, ok := m.Book.BestPrice(engine.Sell); ok {
			v := p.String()
			bestAsk = &v
		}

		out = append(out, MarketMeta{
			Symbol:     sym,
			Open:       m.Open,
			Settlement: settlement,
			PosLimit:   m.PosLimit,
			ClickSize:  m.ClickSizeDefault,
			BestBid:    bestBid,
			BestAsk:    bestAsk,
			TickSize:   m.TickSize.String(),
		})
	}
	return out
}

// broadcastMarketsMeta pushes the room-wide markets_meta message — used
// after any admin lifecycle change (§4.F: "admin meta changes" trigger
// this in addition to the full per-viewer fan-out).
func (s *Session) broadcastMarketsMeta() {
	msg := MarketsMetaMsg{Type: "markets_meta", Markets: s.marketsMeta()}
	s.broadcastToRoom(msg)
}

func (s *Session) broadcastTrade(t engine.Trade) {
	s.broadcastToRoom(TradeMsg{
		Type:   "trade",
		Ts:     t.Ts,
		Symbol: t.Symbol,
		Price:  t.Price.String(),
		Qty:    t.Qty,
	})
}

func (s *Session) broadcastEvent(e Event) {
	s.broadcastToRoom(EventMsg{Type: "event", Ts: e.Ts, Text: e.Text})
}

func (s *Session) broadcastToRoom(v interface{}) {
	for _, sender := range s.viewers {
		sender.Send(v)
	}
}

// fanoutAll recomputes and pushes every connected viewer's personalized
// bundle. Run after every state-changing command.
func (s *Session) fanoutAll() {
	meta := s.marketsMeta()
	events := s.events.Recent(200)
	for connID, sender := range s.viewers {
		s.fanoutOne(connID, sender, meta, events)
	}
}

func (s *Session) fanoutOne(connID string, sender Sender, meta []MarketMeta, events []Event) {
	sender.Send(MarketsMetaMsg{Type: "markets_meta", Markets: meta})
	sender.Send(EventsMsg{Type: "events", Events: events})

	name := s.usernames[connID]
	if name == "" && s.isAdmin(connID) {
		name = "Admin"
	}

	total := decimal.Zero
	for _, sym := range s.symbols {
		m := s.markets[sym]

		bidLevels := m.Book.Snapshot(engine.Buy, bookDepth)
		askLevels := m.Book.Snapshot(engine.Sell, bookDepth)
		sender.Send(BookSnapshotMsg{
			Type:   "book_snapshot",
			Symbol: sym,
			Bids:   levelViews(m, engine.Buy, bidLevels, connID),
			Asks:   levelViews(m, engine.Sell, askLevels, connID),
		})

		pos := m.Ledger.Peek(connID)
		sender.Send(PositionMsg{
			Type:   "position",
			Symbol: sym,
			Qty:    pos.Qty,
			Cash:   pos.Cash.String(),
			Name:   name,
		})

		stat := m.UserStats[connID]
		avgBuy, avgSell := decimal.Zero, decimal.Zero
		var buyVol, sellVol int64
		if stat != nil {
			avgBuy = stat.AvgBuyPrice()
			avgSell = stat.AvgSellPrice()
			buyVol = stat.BuyQty
			sellVol = stat.SellQty
		}
		sender.Send(UserSummaryMsg{
			Type:    "user_summary",
			Symbol:  sym,
			AvgBuy:  avgBuy.String(),
			AvgSell: avgSell.String(),
			BuyVol:  buyVol,
			SellVol: sellVol,
		})

		implied := m.ImpliedPrice()
		total = total.Add(pos.Cash.Add(implied.Mul(decimal.NewFromInt(pos.Qty))))
	}

	sender.Send(PnlImpliedMsg{Type: "pnl_implied", Total: total.String()})
}

func levelViews(m *engine.Market, side engine.Side, levels []engine.PriceLevel, viewerID string) []LevelView {
	out := make([]LevelView, len(levels))
	for i, lv := range levels {
		out[i] = LevelView{
			Price: lv.Price.String(),
			Size:  lv.Qty,
			Mine:  m.Book.MineAtPrice(side, lv.Price, viewerID),
		}
	}
	return out
}
