// Package session implements the per-game session layer: market registry
// scoped to a 4-digit join code, role-gated command dispatch, and
// personalized fan-out to every connected viewer.
package session

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/foundrysim/tradefloor/internal/engine"
)

// Role is a connection's permission level within one session.
type Role int8

const (
	RoleNone Role = iota
	RoleAdmin
	RolePlayer
)

// Sender delivers one outbound message to a single connection. Implemented
// by the websocket transport in internal/api; kept as an interface here so
// the session package never imports the transport.
type Sender interface {
	Send(v interface{})
}

// MarketDef describes one market to create, as supplied in
// admin_create_game. Zero TickSize/PosLimit means "use the default."
type MarketDef struct {
	Symbol   string
	TickSize decimal.Decimal
	PosLimit int64
}

const (
	maxMarketsPerSession = 5
	defaultTickSize      = "0.1"
	defaultPosLimit      = 100
	maxEvents            = 500
)

// Session is one game: up to five markets, a room of connected viewers,
// and a single worker goroutine that owns every byte of state below.
// Nothing outside Run touches these fields, so no lock is needed at all
// here — only the registry's create/lookup path needs one.
type Session struct {
	Code string

	symbols   []string
	markets   map[string]*engine.Market
	usernames map[string]string
	roles     map[string]Role
	events    *engine.Ring[Event]
	viewers   map[string]Sender

	mailbox chan envelope

	now func() int64
	log *zap.Logger
}

type msgKind int

const (
	msgRegister msgKind = iota
	msgUnregister
	msgCommand
)

// envelope is the single mailbox message type. Every mutation — viewer
// join/leave and every inbound command — flows through this one channel
// so relative ordering (register-before-command) is preserved: a
// player_join must be visible to the very next command from the same
// connection, and Go's select across independent channels doesn't
// guarantee that ordering, so register/unregister/command all share one
// channel instead of three.
type envelope struct {
	kind   msgKind
	connID string
	sender Sender
	cmd    Command
}

// Command is one validated, role-checked unit of work executed serially by
// a session's worker goroutine.
type Command interface {
	apply(s *Session, connID string)
}

// NewSession constructs a session with its markets pre-created and starts
// its worker goroutine. Called once, under the registry's lock, so no
// synchronization is needed during construction itself.
func NewSession(code string, defs []MarketDef, now func() int64, log *zap.Logger) *Session {
	s := &Session{
		Code:      code,
		markets:   make(map[string]*engine.Market),
		usernames: make(map[string]string),
		roles:     make(map[string]Role),
		events:    engine.NewRing[Event](maxEvents),
		viewers:   make(map[string]Sender),
		mailbox:   make(chan envelope, 256),
		now:       now,
		log:       log.With(zap.String("code", code)),
	}

	if len(defs) > maxMarketsPerSession {
		defs = defs[:maxMarketsPerSession]
	}
	for _, d := range defs {
		sym := sanitizeSymbol(d.Symbol)
		tick := d.TickSize
		if tick.IsZero() {
			tick = decimal.RequireFromString(defaultTickSize)
		}
		posLimit := d.PosLimit
		if posLimit <= 0 {
			posLimit = defaultPosLimit
		}
		if _, exists := s.markets[sym]; exists {
			continue
		}
		m := engine.NewMarket(sym, tick, posLimit, 1, now)
		m.OnTrade = func(t engine.Trade) { s.broadcastTrade(t) }
		s.markets[sym] = m
		s.symbols = append(s.symbols, sym)
	}

	go s.Run()
	return s
}

// Run is the session's sole worker goroutine: every read from mailbox is
// handled to completion before the next is read, which is what makes
// per-session command execution serial.
func (s *Session) Run() {
	for e := range s.mailbox {
		switch e.kind {
		case msgRegister:
			s.viewers[e.connID] = e.sender
		case msgUnregister:
			delete(s.viewers, e.connID)
			delete(s.usernames, e.connID)
			delete(s.roles, e.connID)
		case msgCommand:
			e.cmd.apply(s, e.connID)
		}
	}
}

// Register binds a connection to this session's room so it starts
// receiving broadcasts and can be targeted by fan-out.
func (s *Session) Register(connID string, sender Sender) {
	s.mailbox <- envelope{kind: msgRegister, connID: connID, sender: sender}
}

// Unregister drops a connection's room membership, username, and role.
// Its resting orders and ledger entries are untouched: a reconnect under a
// new connection id gets a fresh identity, but the old one's book/ledger
// footprint stays exactly where it was.
func (s *Session) Unregister(connID string) {
	s.mailbox <- envelope{kind: msgUnregister, connID: connID}
}

// Submit enqueues a command for serial processing by this session's
// worker.
func (s *Session) Submit(connID string, cmd Command) {
	s.mailbox <- envelope{kind: msgCommand, connID: connID, cmd: cmd}
}

// Sync blocks until every command submitted before this call has finished
// processing. Not part of the protocol — used by callers (tests) that need
// a deterministic point where the session's state has quiesced instead of
// racing its worker goroutine.
func (s *Session) Sync() {
	done := make(chan struct{})
	s.mailbox <- envelope{kind: msgCommand, cmd: syncCommand(done)}
	<-done
}

type syncCommand chan struct{}

func (c syncCommand) apply(s *Session, connID string) {
	close(c)
}

func (s *Session) isAdmin(connID string) bool {
	return s.roles[connID] == RoleAdmin
}

func sanitizeSymbol(sym string) string {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	if sym == "" {
		sym = "A"
	}
	if len(sym) > 16 {
		sym = sym[:16]
	}
	return sym
}

func sanitizePlayerName(name, connID string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		short := connID
		if len(short) > 4 {
			short = short[:4]
		}
		name = fmt.Sprintf("Player-%s", short)
	}
	if len(name) > 24 {
		name = name[:24]
	}
	return name
}

func sanitizeEventText(text string) string {
	if len(text) > 500 {
		text = text[:500]
	}
	return text
}
