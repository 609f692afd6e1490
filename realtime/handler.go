// File: /realtime/handler.go
package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientEvent describes how a client-originated event is forwarded:
// which payload field names the target user, what event name the target
// receives, and whether the originating connection gets an echo.
type clientEvent struct {
	targetField string
	outEvent    string
	echo        bool
}

var clientEvents = map[string]clientEvent{
	"sendMessage":         {targetField: "receiverId", outEvent: "receiveMessage"},
	"deleteMessage":       {targetField: "receiverId", outEvent: "messageDeleted"},
	"sendFriendRequest":   {targetField: "targetUserId", outEvent: "friendRequestReceived", echo: true},
	"acceptFriendRequest": {targetField: "requesterId", outEvent: "friendRequestAccepted", echo: true},
	"cancelFriendRequest": {targetField: "targetUserId", outEvent: "friendRequestCancelled", echo: true},
	"rejectFriendRequest": {targetField: "requesterId", outEvent: "friendRequestRejected", echo: true},
	"unfriendUser":        {targetField: "friendId", outEvent: "userUnfriended", echo: true},
}

// Handler owns the websocket endpoint. The authenticated user id is
// taken from the handshake query and trusted as-is.
type Handler struct {
	relay *Relay
}

func NewHandler(relay *Relay) *Handler {
	return &Handler{relay: relay}
}

// Serve upgrades the request and pumps client events until disconnect.
func (h *Handler) Serve(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
		return
	}

	// On failure the upgrader has already replied to the client
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	session := NewSession(userID, conn)
	h.relay.Connect(userID, session)
	defer func() {
		h.relay.Disconnect(userID)
		conn.Close()
	}()

	for {
		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&envelope); err != nil {
			return
		}
		h.dispatch(session, envelope.Event, envelope.Data)
	}
}

// dispatch forwards one client-originated event. Server-side state for
// these actions is mutated over REST; the socket only relays.
func (h *Handler) dispatch(session *Session, event string, data json.RawMessage) {
	if event == "userOnline" {
		h.relay.BroadcastOnline()
		return
	}

	route, ok := clientEvents[event]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"user_id": session.UserID,
			"event":   event,
		}).Debug("Ignoring unknown client event")
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": session.UserID,
			"event":   event,
		}).WithError(err).Warn("Malformed client event payload")
		return
	}

	targetID, _ := payload[route.targetField].(string)
	if targetID != "" {
		delivered := h.relay.EmitTo(targetID, route.outEvent, payload)

		// sendMessage acknowledges to the sender only when the
		// receiver got the live copy
		if event == "sendMessage" && delivered {
			if err := session.Send("messageSent", payload); err != nil {
				logrus.WithField("user_id", session.UserID).WithError(err).Warn("Ack write failed")
			}
		}
	}

	if route.echo {
		if err := session.Send(route.outEvent, payload); err != nil {
			logrus.WithField("user_id", session.UserID).WithError(err).Warn("Echo write failed")
		}
	}
}
