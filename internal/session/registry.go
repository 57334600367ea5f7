package session

import (
	"regexp"
	"sync"

	"go.uber.org/zap"
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

// Registry is the process-wide code → session map. Sessions live for
// process lifetime; there is no teardown on last-disconnect.
//
// The registry's own lock only ever guards the map itself — a narrow
// shared-read, exclusive-write path around session creation and lookup.
// Once a *Session exists, all further access goes through its mailbox,
// not this lock.
type Registry struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	adminPassword string
	now           func() int64
	log           *zap.Logger
}

func NewRegistry(adminPassword string, now func() int64, log *zap.Logger) *Registry {
	return &Registry{
		sessions:      make(map[string]*Session),
		adminPassword: adminPassword,
		now:           now,
		log:           log,
	}
}

// Get returns the session for a code, if it exists.
func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

// AdminCreateGame validates the password and code shape, then creates the
// session if it doesn't exist (idempotent: a second create for the same
// code returns the existing session and its current markets, ignoring
// marketDefs). The caller is always acked — directly on auth/shape
// failure, or via the session's own worker on success, so that the ack is
// never reordered ahead of a subsequent command from the same connection.
func (r *Registry) AdminCreateGame(code, password string, defs []MarketDef, connID string, sender Sender) *Session {
	if password != r.adminPassword {
		sender.Send(AdminAck{Type: "admin_ack", Ok: false, Error: "Bad password", Code: code})
		return nil
	}
	if !codePattern.MatchString(code) {
		sender.Send(AdminAck{Type: "admin_ack", Ok: false, Error: "Code must be 4 digits", Code: code})
		return nil
	}

	sess := r.getOrCreate(code, defs)
	sess.Register(connID, sender)
	sess.Submit(connID, &AdminJoinCmd{Sender: sender})
	return sess
}

func (r *Registry) getOrCreate(code string, defs []MarketDef) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[code]; ok {
		return s
	}
	s := NewSession(code, defs, r.now, r.log)
	r.sessions[code] = s
	return s
}

// PlayerJoin validates that the session exists, then routes the join
// through the session's own worker.
func (r *Registry) PlayerJoin(code, name, connID string, sender Sender) *Session {
	sess, ok := r.Get(code)
	if !ok {
		sender.Send(JoinAck{Type: "join_ack", Ok: false, Error: "Game not found", Code: code})
		return nil
	}
	sess.Register(connID, sender)
	sess.Submit(connID, &PlayerJoinCmd{Sender: sender, Name: name})
	return sess
}
