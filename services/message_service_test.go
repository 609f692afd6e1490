// File: /services/message_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavelink-api/models"
)

func TestSendDeliversToBothLiveSessions(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	aliceConn := f.goOnline("alice")
	bobConn := f.goOnline("bob")

	msg, err := f.messages.Send(context.Background(), "alice", "bob", "hello", "")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)

	assert.Contains(t, bobConn.events(), "receiveMessage")
	assert.Contains(t, aliceConn.events(), "messageSent")
}

func TestSendPersistsEvenWhenReceiverOffline(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	_, err := f.messages.Send(ctx, "alice", "bob", "catch up later", "")
	require.NoError(t, err)

	// The live event was dropped but the message is waiting in the thread
	thread, err := f.messages.List(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "catch up later", thread[0].Text)

	// Connecting later does not replay it; clients re-sync over REST
	bobConn := f.goOnline("bob")
	assert.Empty(t, bobConn.written)
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	_, err := f.messages.Send(ctx, "alice", "bob", "", "")
	assert.ErrorIs(t, err, ErrValidation, "text or image is required")

	_, err = f.messages.Send(ctx, "alice", "ghost", "hi", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendStoresImageAttachment(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")

	msg, err := f.messages.Send(context.Background(), "alice", "bob", "", "data:image/png;base64,aGk=")
	require.NoError(t, err)
	require.NotNil(t, msg.Image)
	assert.Equal(t, f.assets.stored[0], *msg.Image)
}

func TestDeleteOneBySender(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	msg, err := f.messages.Send(ctx, "alice", "bob", "", "data:image/png;base64,aGk=")
	require.NoError(t, err)

	bobConn := f.goOnline("bob")
	require.NoError(t, f.messages.DeleteOne(ctx, "alice", msg.ID))

	thread, err := f.messages.List(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Empty(t, thread, "hard delete removes the message for both sides")
	assert.Equal(t, []string{*msg.Image}, f.assets.deleted)
	assert.Contains(t, bobConn.events(), "messageDeleted")
}

func TestDeleteOneByReceiverIsForbidden(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	msg, err := f.messages.Send(ctx, "alice", "bob", "mine", "")
	require.NoError(t, err)

	err = f.messages.DeleteOne(ctx, "bob", msg.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// The refused delete changed nothing
	thread, err := f.messages.List(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}

func TestDeleteOneUnknownMessage(t *testing.T) {
	f := newFixture(t)

	err := f.messages.DeleteOne(context.Background(), "alice", "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAllBetweenIsPerViewer(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	_, err := f.messages.Send(ctx, "alice", "bob", "one", "")
	require.NoError(t, err)
	_, err = f.messages.Send(ctx, "bob", "alice", "two", "")
	require.NoError(t, err)

	require.NoError(t, f.messages.DeleteAllBetween(ctx, "alice", "bob"))

	forAlice, err := f.messages.List(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, forAlice)

	forBob, err := f.messages.List(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Len(t, forBob, 2, "the other participant still sees the thread")
}

func TestDeleteAllBetweenPurgesWhenBothSidesClear(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	_, err := f.messages.Send(ctx, "alice", "bob", "", "data:image/png;base64,aGk=")
	require.NoError(t, err)

	require.NoError(t, f.messages.DeleteAllBetween(ctx, "alice", "bob"))
	assert.Empty(t, f.assets.deleted, "first clear keeps the record and attachment")

	require.NoError(t, f.messages.DeleteAllBetween(ctx, "bob", "alice"))
	assert.Equal(t, f.assets.stored, f.assets.deleted, "second clear purges attachments")

	purged, err := f.messages.SweepPurgeable(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged, "nothing left behind for the sweep")
}

func TestSearchIsScopedToVisibleMessages(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	_, err := f.messages.Send(ctx, "alice", "bob", "Lunch on Friday?", "")
	require.NoError(t, err)
	require.NoError(t, f.messages.DeleteAllBetween(ctx, "alice", "bob"))

	forAlice, err := f.messages.Search(ctx, "alice", "bob", "friday")
	require.NoError(t, err)
	assert.Empty(t, forAlice)

	forBob, err := f.messages.Search(ctx, "bob", "alice", "friday")
	require.NoError(t, err)
	assert.Len(t, forBob, 1)
}

func TestSweepPurgeableCatchesLeftovers(t *testing.T) {
	// Rows can end up fully cleared without the eager purge running,
	// e.g. a crash between soft delete and hard delete. The sweep is
	// the safety net.
	f := newFixture(t)
	ctx := context.Background()

	image := "https://assets.test/chat/orphan.png"
	require.NoError(t, f.messageRepo.Create(&models.Message{
		ID:         "leftover",
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "gone",
		Image:      &image,
		DeletedFor: models.StringSet{"alice", "bob"},
	}))
	require.NoError(t, f.messageRepo.Create(&models.Message{
		ID:         "live",
		SenderID:   "alice",
		ReceiverID: "carol",
		Text:       "still here",
		DeletedFor: models.StringSet{},
	}))

	purged, err := f.messages.SweepPurgeable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	assert.Equal(t, []string{image}, f.assets.deleted)

	_, err = f.messageRepo.FindByID("live")
	assert.NoError(t, err, "messages still visible to a side survive the sweep")
}

func TestSidebarUsersListsEveryoneElse(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice")
	f.addUser(t, "bob")
	f.addUser(t, "carol")

	users, err := f.messages.SidebarUsers(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, "alice", u.ID)
	}
}
