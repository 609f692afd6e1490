// File: /models/message.go
package models

import "time"

type Message struct {
	ID         string  `json:"id" gorm:"primaryKey;size:191"`
	SenderID   string  `json:"sender_id" gorm:"not null;size:191;index:idx_messages_sender_receiver"`
	ReceiverID string  `json:"receiver_id" gorm:"not null;size:191;index:idx_messages_sender_receiver"`
	Text       string  `json:"text" gorm:"type:text"`
	Image      *string `json:"image" gorm:"size:500"`

	// Viewers who soft-deleted this message. The record is purged once
	// both participants are present.
	DeletedFor StringSet `json:"deleted_for" gorm:"type:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeletionState is the lifecycle position of a message on its way to
// being purged: visible to both, cleared by one side, or cleared by
// both and eligible for hard deletion.
type DeletionState string

const (
	VisibleToBoth DeletionState = "visible_to_both"
	VisibleToOne  DeletionState = "visible_to_one"
	Purgeable     DeletionState = "purgeable"
)

// State derives the deletion state from the DeletedFor set.
func (m *Message) State() DeletionState {
	cleared := 0
	if m.DeletedFor.Contains(m.SenderID) {
		cleared++
	}
	if m.DeletedFor.Contains(m.ReceiverID) {
		cleared++
	}
	switch cleared {
	case 0:
		return VisibleToBoth
	case 1:
		return VisibleToOne
	default:
		return Purgeable
	}
}

// VisibleTo reports whether viewerID may still see this message.
func (m *Message) VisibleTo(viewerID string) bool {
	if viewerID != m.SenderID && viewerID != m.ReceiverID {
		return false
	}
	return !m.DeletedFor.Contains(viewerID)
}

// OtherParticipant returns the conversation partner of userID.
func (m *Message) OtherParticipant(userID string) string {
	if userID == m.SenderID {
		return m.ReceiverID
	}
	return m.SenderID
}
