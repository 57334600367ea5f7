package session

import (
	"github.com/shopspring/decimal"

	"github.com/foundrysim/tradefloor/internal/engine"
)

// AdminJoinCmd marks a connection as admin for a just-created-or-existing
// session and acks it. Market creation already happened synchronously in
// the registry (see registry.go) before this command is submitted — this
// command only needs to assign the role and reply, both of which must
// happen inside the session's serialized worker.
type AdminJoinCmd struct {
	Sender Sender
}

func (c *AdminJoinCmd) apply(s *Session, connID string) {
	s.roles[connID] = RoleAdmin
	c.Sender.Send(AdminAck{Type: "admin_ack", Ok: true, Code: s.Code, Markets: s.marketsMeta()})
	s.fanoutAll()
}

// PlayerJoinCmd marks a connection as a player with a sanitized display
// name and acks it.
type PlayerJoinCmd struct {
	Sender Sender
	Name   string
}

func (c *PlayerJoinCmd) apply(s *Session, connID string) {
	name := sanitizePlayerName(c.Name, connID)
	s.roles[connID] = RolePlayer
	s.usernames[connID] = name
	c.Sender.Send(JoinAck{Type: "join_ack", Ok: true, Code: s.Code, Name: name, Markets: s.marketsMeta()})
	s.fanoutAll()
}

// PlaceOrderCmd is place_order. Side, price, and qty shape are already
// checked by the transport layer before this command is even constructed
// (a malformed payload never reaches the session); market existence and
// open-ness can only be checked here, since that state lives on the
// session's worker. Business-level position-limit rejects get an ack.
type PlaceOrderCmd struct {
	Symbol string
	Side   engine.Side
	Price  decimal.Decimal
	Qty    int64
}

func (c *PlaceOrderCmd) apply(s *Session, connID string) {
	m, ok := s.markets[c.Symbol]
	if !ok || !m.Open {
		return
	}

	_, reason := m.PlaceLimit(connID, c.Side, c.Price, c.Qty)
	if reason != engine.RejectNone {
		if sender, ok := s.viewers[connID]; ok {
			sender.Send(OrderReject{Type: "order_reject", Symbol: c.Symbol, Reason: string(reason)})
		}
		return
	}
	s.fanoutAll()
}

// CancelAtPriceCmd is cancel_at_price. The market need not be open.
type CancelAtPriceCmd struct {
	Symbol string
	Side   engine.Side
	Price  decimal.Decimal
}

func (c *CancelAtPriceCmd) apply(s *Session, connID string) {
	m, ok := s.markets[c.Symbol]
	if !ok {
		return
	}
	m.CancelAtPrice(connID, c.Side, c.Price)
	s.fanoutAll()
}

// ClickTradeCmd is click_trade. maxQty is coerced by the transport layer
// to max(1, floor(input)) before this command is constructed.
type ClickTradeCmd struct {
	Symbol string
	Side   engine.Side
	Price  decimal.Decimal
	MaxQty int64
}

func (c *ClickTradeCmd) apply(s *Session, connID string) {
	m, ok := s.markets[c.Symbol]
	if !ok || !m.Open {
		return
	}
	m.TakeAtPrice(connID, c.Side, c.Price, c.MaxQty)
	s.fanoutAll()
}

// AdminToggleMarketCmd is admin_toggle_market.
type AdminToggleMarketCmd struct {
	Symbol string
	Open   bool
}

func (c *AdminToggleMarketCmd) apply(s *Session, connID string) {
	if !s.isAdmin(connID) {
		return
	}
	m, ok := s.markets[c.Symbol]
	if !ok {
		return
	}
	m.SetOpen(c.Open)
	s.broadcastMarketsMeta()
	s.fanoutAll()
}

// AdminToggleAllCmd is admin_toggle_all.
type AdminToggleAllCmd struct {
	Open bool
}

func (c *AdminToggleAllCmd) apply(s *Session, connID string) {
	if !s.isAdmin(connID) {
		return
	}
	for _, m := range s.markets {
		m.SetOpen(c.Open)
	}
	s.broadcastMarketsMeta()
	s.fanoutAll()
}

// AdminSettleCmd is admin_settle.
type AdminSettleCmd struct {
	Symbol string
	Price  decimal.Decimal
}

func (c *AdminSettleCmd) apply(s *Session, connID string) {
	if !s.isAdmin(connID) {
		return
	}
	m, ok := s.markets[c.Symbol]
	if !ok {
		return
	}
	m.Settle(c.Price)
	s.broadcastMarketsMeta()
	s.fanoutAll()
}

// AdminSettleAllCmd is admin_settle_all.
type AdminSettleAllCmd struct {
	PriceMap map[string]decimal.Decimal
}

func (c *AdminSettleAllCmd) apply(s *Session, connID string) {
	if !s.isAdmin(connID) {
		return
	}
	for sym, px := range c.PriceMap {
		if m, ok := s.markets[sym]; ok {
			m.Settle(px)
		}
	}
	s.broadcastMarketsMeta()
	s.fanoutAll()
}

// AdminAddEventCmd is admin_add_event.
type AdminAddEventCmd struct {
	Text string
}

func (c *AdminAddEventCmd) apply(s *Session, connID string) {
	if !s.isAdmin(connID) {
		return
	}
	e := Event{Ts: s.now(), Text: sanitizeEventText(c.Text)}
	s.events.Push(e)
	s.broadcastEvent(e)
	s.fanoutAll()
}
