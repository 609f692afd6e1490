// File: /models/message_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageState(t *testing.T) {
	msg := Message{SenderID: "a", ReceiverID: "b", DeletedFor: StringSet{}}
	assert.Equal(t, VisibleToBoth, msg.State())

	msg.DeletedFor.Add("a")
	assert.Equal(t, VisibleToOne, msg.State())

	msg.DeletedFor.Add("b")
	assert.Equal(t, Purgeable, msg.State())
}

func TestMessageStateIgnoresOutsiders(t *testing.T) {
	// Stray ids in the deletion set must not advance the lifecycle
	msg := Message{SenderID: "a", ReceiverID: "b", DeletedFor: StringSet{"x", "b"}}
	assert.Equal(t, VisibleToOne, msg.State())
}

func TestMessageVisibleTo(t *testing.T) {
	msg := Message{SenderID: "a", ReceiverID: "b", DeletedFor: StringSet{"b"}}

	assert.True(t, msg.VisibleTo("a"))
	assert.False(t, msg.VisibleTo("b"), "hidden for a viewer who cleared the thread")
	assert.False(t, msg.VisibleTo("c"), "non-participants never see the message")
}

func TestMessageOtherParticipant(t *testing.T) {
	msg := Message{SenderID: "a", ReceiverID: "b"}

	assert.Equal(t, "b", msg.OtherParticipant("a"))
	assert.Equal(t, "a", msg.OtherParticipant("b"))
}

func TestUserSummaryOmitsCredentials(t *testing.T) {
	user := User{
		ID:       "u1",
		FullName: "Test User",
		Email:    "test@example.com",
		Password: "hashed",
		Friends:  StringSet{"u2"},
	}

	summary := user.Summary()
	assert.Equal(t, "u1", summary.ID)
	assert.Equal(t, "Test User", summary.FullName)
	assert.Equal(t, "test@example.com", summary.Email)
}
