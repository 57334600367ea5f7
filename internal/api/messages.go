package api

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"github.com/foundrysim/tradefloor/internal/engine"
	"github.com/foundrysim/tradefloor/internal/session"
)

// inboundEnvelope peeks at just the discriminator field; the rest of the
// payload is re-decoded into the type-specific struct below once the type
// is known. The wire format is flat — fields sit alongside "type" rather
// than nested under a separate data blob.
type inboundEnvelope struct {
	Type string `json:"type"`
}

type marketDefWire struct {
	Symbol   string   `json:"symbol"`
	TickSize *float64 `json:"tickSize,omitempty"`
	PosLimit *int64   `json:"posLimit,omitempty"`
}

type adminCreateGameWire struct {
	Code          string          `json:"code"`
	AdminPassword string          `json:"adminPassword"`
	Markets       []marketDefWire `json:"markets"`
}

type playerJoinWire struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type placeOrderWire struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
	Qty    float64 `json:"qty"`
}

type cancelAtPriceWire struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
}

type clickTradeWire struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
	MaxQty float64 `json:"maxQty"`
}

type adminToggleMarketWire struct {
	Symbol string `json:"symbol"`
	Open   bool   `json:"open"`
}

type adminToggleAllWire struct {
	Open bool `json:"open"`
}

type adminSettleWire struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type adminSettleAllWire struct {
	PriceMap map[string]float64 `json:"priceMap"`
}

type adminAddEventWire struct {
	Text string `json:"text"`
}

// dispatch decodes one inbound frame and either routes it into the
// registry (admin_create_game / player_join, which establish the
// session binding a client needs for everything else) or submits a
// Command to the already-bound session. Shape validation (a malformed
// or unparseable payload is silently dropped) happens here; the business
// checks that need a consistent read of session state (market
// exists/open, role) happen inside the Command's apply(), which only ever
// runs on that session's single worker goroutine.
func (c *Client) dispatch(raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.Type {
	case "admin_create_game":
		var w adminCreateGameWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		defs := make([]session.MarketDef, 0, len(w.Markets))
		for _, md := range w.Markets {
			def := session.MarketDef{Symbol: md.Symbol}
			if md.TickSize != nil {
				def.TickSize = decimal.NewFromFloat(*md.TickSize)
			}
			if md.PosLimit != nil {
				def.PosLimit = *md.PosLimit
			}
			defs = append(defs, def)
		}
		sess := c.registry.AdminCreateGame(w.Code, w.AdminPassword, defs, c.id, c)
		if sess != nil {
			c.bind(sess)
		}

	case "player_join":
		var w playerJoinWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		sess := c.registry.PlayerJoin(w.Code, w.Name, c.id, c)
		if sess != nil {
			c.bind(sess)
		}

	case "place_order":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w placeOrderWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		side, ok := engine.ParseSide(w.Side)
		qty := int64(w.Qty)
		if !ok || w.Price <= 0 || qty <= 0 {
			return
		}
		sess.Submit(c.id, &session.PlaceOrderCmd{
			Symbol: w.Symbol,
			Side:   side,
			Price:  decimal.NewFromFloat(w.Price),
			Qty:    qty,
		})

	case "cancel_at_price":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w cancelAtPriceWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		side, ok := engine.ParseSide(w.Side)
		if !ok {
			return
		}
		sess.Submit(c.id, &session.CancelAtPriceCmd{
			Symbol: w.Symbol,
			Side:   side,
			Price:  decimal.NewFromFloat(w.Price),
		})

	case "click_trade":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w clickTradeWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		side, ok := engine.ParseSide(w.Side)
		if !ok {
			return
		}
		maxQty := int64(math.Floor(w.MaxQty))
		if maxQty < 1 {
			maxQty = 1
		}
		sess.Submit(c.id, &session.ClickTradeCmd{
			Symbol: w.Symbol,
			Side:   side,
			Price:  decimal.NewFromFloat(w.Price),
			MaxQty: maxQty,
		})

	case "admin_toggle_market":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w adminToggleMarketWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		sess.Submit(c.id, &session.AdminToggleMarketCmd{Symbol: w.Symbol, Open: w.Open})

	case "admin_toggle_all":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w adminToggleAllWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		sess.Submit(c.id, &session.AdminToggleAllCmd{Open: w.Open})

	case "admin_settle":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w adminSettleWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		sess.Submit(c.id, &session.AdminSettleCmd{Symbol: w.Symbol, Price: decimal.NewFromFloat(w.Price)})

	case "admin_settle_all":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w adminSettleAllWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		priceMap := make(map[string]decimal.Decimal, len(w.PriceMap))
		for sym, px := range w.PriceMap {
			priceMap[sym] = decimal.NewFromFloat(px)
		}
		sess.Submit(c.id, &session.AdminSettleAllCmd{PriceMap: priceMap})

	case "admin_add_event":
		sess := c.boundSession()
		if sess == nil {
			return
		}
		var w adminAddEventWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return
		}
		sess.Submit(c.id, &session.AdminAddEventCmd{Text: w.Text})
	}
}
