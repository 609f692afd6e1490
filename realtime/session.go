// File: /realtime/session.go
package realtime

import "sync"

// Envelope is the wire format of a relay event.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// wireConn is the subset of *websocket.Conn the session needs. Faked in
// tests so relay delivery can be asserted without a network.
type wireConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Session is one live connection. Writes are serialized through the
// mutex because the underlying websocket allows a single writer.
type Session struct {
	UserID string

	mu   sync.Mutex
	conn wireConn
}

func NewSession(userID string, conn wireConn) *Session {
	return &Session{UserID: userID, conn: conn}
}

// Send pushes one named event to the connection. Events sent through
// the same session arrive in call order.
func (s *Session) Send(event string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(Envelope{Event: event, Data: payload})
}

// Close tears down the underlying connection.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
