// File: /realtime/presence.go
package realtime

import (
	"sort"
	"sync"
)

// Presence maps user ids to their live session. It is authoritative
// only for the current process lifetime: never persisted, rebuilt from
// zero after a restart when clients reconnect and re-announce.
type Presence struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewPresence() *Presence {
	return &Presence{sessions: make(map[string]*Session)}
}

// Register records the live session for userID. A second connect for
// the same user overwrites the previous handle: last-connected wins.
func (p *Presence) Register(userID string, session *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[userID] = session
}

// Unregister removes the entry for userID if present; no-op otherwise.
func (p *Presence) Unregister(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, userID)
}

// Lookup returns the live session for userID, if any. Never blocks on
// connection I/O.
func (p *Presence) Lookup(userID string) (*Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	session, ok := p.sessions[userID]
	return session, ok
}

// Online returns a sorted snapshot of the currently connected user ids.
func (p *Presence) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.sessions))
	for id := range p.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sessions returns a snapshot of all live sessions.
func (p *Presence) Sessions() []*Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sessions := make([]*Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
