// File: /realtime/relay.go
package realtime

import "github.com/sirupsen/logrus"

// Relay routes named events to live connections through the presence
// registry. Delivery is best-effort: events for offline recipients are
// dropped without queueing, clients re-sync over REST on reconnect.
type Relay struct {
	presence *Presence
}

func NewRelay(presence *Presence) *Relay {
	return &Relay{presence: presence}
}

// Presence exposes the registry backing this relay.
func (r *Relay) Presence() *Presence {
	return r.presence
}

// EmitTo delivers one event to userID's live session. Returns false
// when the recipient is offline or the write failed; there is no retry
// either way.
func (r *Relay) EmitTo(userID, event string, payload interface{}) bool {
	session, ok := r.presence.Lookup(userID)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
		}).Debug("Relay event dropped, recipient offline")
		return false
	}

	if err := session.Send(event, payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
		}).WithError(err).Warn("Relay write failed")
		return false
	}
	return true
}

// Broadcast delivers one event to every live session.
func (r *Relay) Broadcast(event string, payload interface{}) {
	for _, session := range r.presence.Sessions() {
		if err := session.Send(event, payload); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": session.UserID,
				"event":   event,
			}).WithError(err).Warn("Broadcast write failed")
		}
	}
}

// BroadcastOnline pushes the current online-user snapshot to everyone.
// O(N) per call, acceptable while concurrent users stay small.
func (r *Relay) BroadcastOnline() {
	r.Broadcast("getOnlineUsers", r.presence.Online())
}

// Connect registers a session and announces the new online set.
func (r *Relay) Connect(userID string, session *Session) {
	r.presence.Register(userID, session)
	logrus.WithField("user_id", userID).Info("User connected")
	r.BroadcastOnline()
}

// Disconnect removes a user's session and announces the new online set.
func (r *Relay) Disconnect(userID string) {
	r.presence.Unregister(userID)
	logrus.WithField("user_id", userID).Info("User disconnected")
	r.BroadcastOnline()
}
