package session

// Outbound message shapes, one per wire type. Decimal fields are
// serialized as strings — shopspring/decimal's own convention — so a JSON
// float round-trip never perturbs a tick-exact price or a cash balance.

type AdminAck struct {
	Type    string       `json:"type"`
	Ok      bool         `json:"ok"`
	Error   string       `json:"error,omitempty"`
	Code    string       `json:"code"`
	Markets []MarketMeta `json:"markets,omitempty"`
}

type JoinAck struct {
	Type    string       `json:"type"`
	Ok      bool         `json:"ok"`
	Error   string       `json:"error,omitempty"`
	Code    string       `json:"code"`
	Name    string       `json:"name,omitempty"`
	Markets []MarketMeta `json:"markets,omitempty"`
}

type OrderReject struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

type MarketMeta struct {
	Symbol     string  `json:"symbol"`
	Open       bool    `json:"open"`
	Settlement *string `json:"settlement,omitempty"`
	PosLimit   int64   `json:"posLimit"`
	ClickSize  int64   `json:"clickSize"`
	BestBid    *string `json:"bestBid,omitempty"`
	BestAsk    *string `json:"bestAsk,omitempty"`
	TickSize   string  `json:"tickSize"`
}

type MarketsMetaMsg struct {
	Type    string       `json:"type"`
	Markets []MarketMeta `json:"markets"`
}

type TradeMsg struct {
	Type   string `json:"type"`
	Ts     int64  `json:"ts"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Qty    int64  `json:"qty"`
}

type EventMsg struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts"`
	Text string `json:"text"`
}

type EventsMsg struct {
	Type   string  `json:"type"`
	Events []Event `json:"events"`
}

type LevelView struct {
	Price string `json:"price"`
	Size  int64  `json:"size"`
	Mine  int64  `json:"my"`
}

type BookSnapshotMsg struct {
	Type   string      `json:"type"`
	Symbol string      `json:"symbol"`
	Bids   []LevelView `json:"bids"`
	Asks   []LevelView `json:"asks"`
}

type PositionMsg struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
	Qty    int64  `json:"qty"`
	Cash   string `json:"cash"`
	Name   string `json:"name"`
}

type UserSummaryMsg struct {
	Type    string `json:"type"`
	Symbol  string `json:"symbol"`
	AvgBuy  string `json:"avgBuy"`
	AvgSell string `json:"avgSell"`
	BuyVol  int64  `json:"buyVol"`
	SellVol int64  `json:"sellVol"`
}

type PnlImpliedMsg struct {
	Type  string `json:"type"`
	Total string `json:"total"`
}
