// File: /services/message_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wavelink-api/models"
	"wavelink-api/realtime"
	"wavelink-api/repositories"
)

// MessageService owns the message lifecycle: creation, listing, search,
// sender-initiated hard delete and the two-phase per-viewer clear.
type MessageService struct {
	messages *repositories.MessageRepository
	users    *repositories.UserRepository
	assets   AssetStore
	relay    *realtime.Relay
}

func NewMessageService(messages *repositories.MessageRepository, users *repositories.UserRepository,
	assets AssetStore, relay *realtime.Relay) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		assets:   assets,
		relay:    relay,
	}
}

// Send stores a new message and relays it to the receiver's live
// session plus an acknowledgment to the sender's own other sessions.
// At least one of text and image is required; an image is uploaded to
// the asset store first and embedded by URL.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text, image string) (*models.Message, error) {
	if text == "" && image == "" {
		return nil, fmt.Errorf("%w: message needs text or an image", ErrValidation)
	}

	if _, err := s.users.FindByID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: receiver %s", ErrNotFound, receiverID)
		}
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}

	var imageURL *string
	if image != "" {
		url, err := s.assets.Store(ctx, image)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	message := &models.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
		DeletedFor: models.StringSet{},
		CreatedAt:  time.Now(),
	}

	if err := s.messages.Create(message); err != nil {
		return nil, fmt.Errorf("%w: failed to persist message: %v", ErrDependency, err)
	}

	s.relay.EmitTo(receiverID, "receiveMessage", message)
	s.relay.EmitTo(senderID, "messageSent", message)

	logrus.WithFields(logrus.Fields{
		"message_id":  message.ID,
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"has_image":   imageURL != nil,
	}).Info("Message sent")

	return message, nil
}

// List returns the viewer-visible thread with otherID in insertion order.
func (s *MessageService) List(ctx context.Context, viewerID, otherID string) ([]models.Message, error) {
	messages, err := s.messages.VisibleBetween(viewerID, otherID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return messages, nil
}

// Search returns the thread's visible messages whose text contains
// query, case-insensitive. No matches is a valid empty result.
func (s *MessageService) Search(ctx context.Context, viewerID, otherID, query string) ([]models.Message, error) {
	messages, err := s.messages.SearchBetween(viewerID, otherID, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return messages, nil
}

// SidebarUsers lists every other registered user for the chat sidebar.
func (s *MessageService) SidebarUsers(ctx context.Context, viewerID string) ([]models.UserSummary, error) {
	users, err := s.users.ListOthers(viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return models.Summaries(users), nil
}

// DeleteOne hard-deletes a single message. Only the original sender may
// do this; the message disappears for both parties immediately and the
// other party is told via messageDeleted.
func (s *MessageService) DeleteOne(ctx context.Context, requesterID, messageID string) error {
	message, err := s.messages.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: message %s", ErrNotFound, messageID)
		}
		return fmt.Errorf("%w: %v", ErrDependency, err)
	}

	if message.SenderID != requesterID {
		return fmt.Errorf("%w: only the sender may delete a message", ErrForbidden)
	}

	s.releaseAttachment(ctx, message)

	if err := s.messages.Delete(messageID); err != nil {
		return fmt.Errorf("%w: failed to delete message: %v", ErrDependency, err)
	}

	s.relay.EmitTo(message.ReceiverID, "messageDeleted", messageID)
	return nil
}

// DeleteAllBetween clears the requester's view of the whole thread.
// This is the per-viewer soft delete: messages stay visible to the
// other participant. Messages the other side had already cleared are
// purged immediately, attachments included.
func (s *MessageService) DeleteAllBetween(ctx context.Context, requesterID, otherID string) error {
	purgeable, err := s.messages.SoftDeleteAllBetween(requesterID, otherID)
	if err != nil {
		return fmt.Errorf("%w: failed to clear conversation: %v", ErrDependency, err)
	}

	if err := s.purge(ctx, purgeable); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"requester_id": requesterID,
		"other_id":     otherID,
		"purged":       len(purgeable),
	}).Info("Conversation cleared")
	return nil
}

// PurgeConversation hard-deletes every message between the pair without
// regard to soft-delete state. Used by the unfriend cascade: friendship
// and message history share the same lifetime.
func (s *MessageService) PurgeConversation(ctx context.Context, userID, otherID string) error {
	messages, err := s.messages.Between(userID, otherID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return s.purge(ctx, messages)
}

// SweepPurgeable hard-deletes every message both sides have cleared,
// across all conversations, and returns how many went. Safety net for
// purges interrupted between soft-delete and hard delete.
func (s *MessageService) SweepPurgeable(ctx context.Context) (int, error) {
	purgeable, err := s.messages.ListPurgeable()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	if err := s.purge(ctx, purgeable); err != nil {
		return 0, err
	}
	return len(purgeable), nil
}

func (s *MessageService) purge(ctx context.Context, messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]string, 0, len(messages))
	for i := range messages {
		s.releaseAttachment(ctx, &messages[i])
		ids = append(ids, messages[i].ID)
	}

	if err := s.messages.DeleteByIDs(ids); err != nil {
		return fmt.Errorf("%w: failed to purge messages: %v", ErrDependency, err)
	}
	return nil
}

// releaseAttachment deletes a message's image from the asset store.
// Best-effort: a failed delete is logged and never fails the operation.
func (s *MessageService) releaseAttachment(ctx context.Context, message *models.Message) {
	if message.Image == nil {
		return
	}
	if err := s.assets.Delete(ctx, *message.Image); err != nil {
		logrus.WithFields(logrus.Fields{
			"message_id": message.ID,
			"image":      *message.Image,
		}).WithError(err).Warn("Failed to delete message attachment")
	}
}
