// File: /realtime/relay_test.go
package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every envelope written to it.
type fakeConn struct {
	written []Envelope
	failing bool
	closed  bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.failing {
		return errors.New("write on broken pipe")
	}
	f.written = append(f.written, v.(Envelope))
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) events() []string {
	names := make([]string, len(f.written))
	for i, env := range f.written {
		names[i] = env.Event
	}
	return names
}

func connect(t *testing.T, relay *Relay, userID string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	relay.Connect(userID, NewSession(userID, conn))
	return conn
}

func TestPresenceRegisterAndLookup(t *testing.T) {
	presence := NewPresence()

	_, ok := presence.Lookup("u1")
	assert.False(t, ok)

	session := NewSession("u1", &fakeConn{})
	presence.Register("u1", session)

	found, ok := presence.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, session, found)

	presence.Unregister("u1")
	_, ok = presence.Lookup("u1")
	assert.False(t, ok)
}

func TestPresenceLastConnectedWins(t *testing.T) {
	presence := NewPresence()

	first := NewSession("u1", &fakeConn{})
	second := NewSession("u1", &fakeConn{})
	presence.Register("u1", first)
	presence.Register("u1", second)

	found, ok := presence.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, second, found)
	assert.Equal(t, []string{"u1"}, presence.Online())
}

func TestPresenceOnlineSorted(t *testing.T) {
	presence := NewPresence()
	presence.Register("charlie", NewSession("charlie", &fakeConn{}))
	presence.Register("alice", NewSession("alice", &fakeConn{}))
	presence.Register("bob", NewSession("bob", &fakeConn{}))

	assert.Equal(t, []string{"alice", "bob", "charlie"}, presence.Online())
}

func TestEmitToDeliversAndDropsOffline(t *testing.T) {
	relay := NewRelay(NewPresence())
	conn := connect(t, relay, "u1")

	assert.True(t, relay.EmitTo("u1", "receiveMessage", map[string]string{"text": "hi"}))
	assert.False(t, relay.EmitTo("ghost", "receiveMessage", nil), "offline recipient drops the event")

	require.Len(t, conn.written, 2) // getOnlineUsers from Connect, then receiveMessage
	assert.Equal(t, "receiveMessage", conn.written[1].Event)
}

func TestEmitToReportsWriteFailure(t *testing.T) {
	relay := NewRelay(NewPresence())
	conn := &fakeConn{failing: true}
	relay.Presence().Register("u1", NewSession("u1", conn))

	assert.False(t, relay.EmitTo("u1", "receiveMessage", nil))
}

func TestEventsArriveInEmitOrder(t *testing.T) {
	relay := NewRelay(NewPresence())
	conn := connect(t, relay, "u1")

	relay.EmitTo("u1", "first", nil)
	relay.EmitTo("u1", "second", nil)
	relay.EmitTo("u1", "third", nil)

	assert.Equal(t, []string{"getOnlineUsers", "first", "second", "third"}, conn.events())
}

func TestConnectBroadcastsOnlineSnapshot(t *testing.T) {
	relay := NewRelay(NewPresence())
	connA := connect(t, relay, "a")
	connB := connect(t, relay, "b")

	// a saw the singleton snapshot, then the two-user one
	require.Len(t, connA.written, 2)
	assert.Equal(t, []string{"a"}, connA.written[0].Data)
	assert.Equal(t, []string{"a", "b"}, connA.written[1].Data)

	require.Len(t, connB.written, 1)
	assert.Equal(t, []string{"a", "b"}, connB.written[0].Data)
}

func TestDisconnectExcludesUserFromSnapshot(t *testing.T) {
	relay := NewRelay(NewPresence())
	connA := connect(t, relay, "a")
	connect(t, relay, "b")

	relay.Disconnect("b")

	last := connA.written[len(connA.written)-1]
	assert.Equal(t, "getOnlineUsers", last.Event)
	assert.Equal(t, []string{"a"}, last.Data)
}

func TestDispatchForwardsWithEcho(t *testing.T) {
	relay := NewRelay(NewPresence())
	handler := NewHandler(relay)

	senderConn := connect(t, relay, "sender")
	targetConn := connect(t, relay, "target")
	sender, _ := relay.Presence().Lookup("sender")

	handler.dispatch(sender, "sendFriendRequest",
		[]byte(`{"requesterId":"sender","targetUserId":"target"}`))

	assert.Contains(t, targetConn.events(), "friendRequestReceived")
	assert.Contains(t, senderConn.events(), "friendRequestReceived", "friend events echo to the originator")
}

func TestDispatchSendMessageAcksOnlyWhenDelivered(t *testing.T) {
	relay := NewRelay(NewPresence())
	handler := NewHandler(relay)

	senderConn := connect(t, relay, "sender")
	targetConn := connect(t, relay, "target")
	sender, _ := relay.Presence().Lookup("sender")

	handler.dispatch(sender, "sendMessage", []byte(`{"receiverId":"target","text":"hi"}`))
	assert.Contains(t, targetConn.events(), "receiveMessage")
	assert.Contains(t, senderConn.events(), "messageSent")

	relay.Disconnect("target")
	before := len(senderConn.written)
	handler.dispatch(sender, "sendMessage", []byte(`{"receiverId":"target","text":"again"}`))
	assert.NotContains(t, senderConn.events()[before:], "messageSent",
		"no ack when the receiver is offline")
}

func TestServeRejectsNonWebsocketRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", NewHandler(NewRelay(NewPresence())).Serve)

	// No upgrade headers: the upgrader replies 400 itself and the
	// handler must not write a second response on top of it
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws?userId=u1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "{", "single plain-text error body")
}

func TestServeRequiresUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", NewHandler(NewRelay(NewPresence())).Serve)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "userId")
}

func TestDispatchIgnoresUnknownEventsAndBadPayloads(t *testing.T) {
	relay := NewRelay(NewPresence())
	handler := NewHandler(relay)

	conn := connect(t, relay, "u1")
	session, _ := relay.Presence().Lookup("u1")
	before := len(conn.written)

	handler.dispatch(session, "noSuchEvent", []byte(`{}`))
	handler.dispatch(session, "sendMessage", []byte(`not json`))
	handler.dispatch(session, "sendMessage", []byte(`{"text":"missing target"}`))

	assert.Len(t, conn.written, before)
}
