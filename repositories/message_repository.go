// File: /repositories/message_repository.go
package repositories

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wavelink-api/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message record
func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// FindByID retrieves a message by id
func (r *MessageRepository) FindByID(messageID string) (*models.Message, error) {
	var message models.Message
	if err := r.db.First(&message, "id = ?", messageID).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// Between retrieves every message exchanged by the pair in insertion order
func (r *MessageRepository) Between(userID, otherID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, otherID, otherID, userID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// VisibleBetween retrieves the pair's messages the viewer has not
// soft-deleted, in insertion order. The soft-delete marker lives in a
// JSON column, so the visibility predicate is applied here rather than
// in SQL to stay portable across drivers.
func (r *MessageRepository) VisibleBetween(viewerID, otherID string) ([]models.Message, error) {
	all, err := r.Between(viewerID, otherID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Message, 0, len(all))
	for _, m := range all {
		if m.VisibleTo(viewerID) {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

// SearchBetween retrieves the viewer-visible messages of the pair whose
// text contains query, case-insensitive, in chronological order.
func (r *MessageRepository) SearchBetween(viewerID, otherID, query string) ([]models.Message, error) {
	visible, err := r.VisibleBetween(viewerID, otherID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]models.Message, 0, len(visible))
	for _, m := range visible {
		if strings.Contains(strings.ToLower(m.Text), needle) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// SoftDeleteAllBetween adds viewerID to DeletedFor on every message of
// the pair and returns the messages that both participants have now
// cleared, i.e. the ones eligible for purging. The whole sweep runs in
// one transaction under row locks.
func (r *MessageRepository) SoftDeleteAllBetween(viewerID, otherID string) ([]models.Message, error) {
	var purgeable []models.Message

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var messages []models.Message
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				viewerID, otherID, otherID, viewerID).
			Find(&messages).Error; err != nil {
			return err
		}

		for i := range messages {
			if messages[i].DeletedFor.Add(viewerID) {
				if err := tx.Save(&messages[i]).Error; err != nil {
					return err
				}
			}
			if messages[i].State() == models.Purgeable {
				purgeable = append(purgeable, messages[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purgeable, nil
}

// Delete removes a single message record
func (r *MessageRepository) Delete(messageID string) error {
	return r.db.Delete(&models.Message{}, "id = ?", messageID).Error
}

// DeleteByIDs removes a batch of message records
func (r *MessageRepository) DeleteByIDs(messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.Delete(&models.Message{}, "id IN ?", messageIDs).Error
}

// ListPurgeable retrieves every message both participants have cleared,
// across all conversations. Used by the background purge sweep.
func (r *MessageRepository) ListPurgeable() ([]models.Message, error) {
	var all []models.Message
	if err := r.db.Find(&all).Error; err != nil {
		return nil, err
	}

	purgeable := make([]models.Message, 0)
	for _, m := range all {
		if m.State() == models.Purgeable {
			purgeable = append(purgeable, m)
		}
	}
	return purgeable, nil
}
