package database

import (
	"github.com/google/uuid"

	"github.com/mahendra/quickchat/internal/models"
)

func (d *Database) SaveMessage(message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return d.db.Create(message).Error
}

// GetConversation returns every message exchanged between the two users,
// oldest first. Ties on created_at are broken by insertion order.
func (d *Database) GetConversation(userID, peerID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message

	err := d.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at ASC").
		Order("seq ASC").
		Find(&messages).Error

	return messages, err
}

// MarkConversationSeen flips seen on every unseen sender->receiver message.
// Opening a thread seen-marks its whole history; calling it again changes
// nothing.
func (d *Database) MarkConversationSeen(senderID, receiverID uuid.UUID) error {
	return d.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND seen = ?", senderID, receiverID, false).
		Update("seen", true).Error
}

// MarkMessageSeen flips seen on one message. Unknown ids and already-seen
// messages are silent no-ops so the caller can race a concurrent send.
func (d *Database) MarkMessageSeen(id uuid.UUID) error {
	return d.db.Model(&models.Message{}).
		Where("id = ?", id).
		Update("seen", true).Error
}

// CountUnseenBySender returns, per sender, how many unseen messages are
// addressed to the receiver. Senders with no unseen messages are absent.
func (d *Database) CountUnseenBySender(receiverID uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		SenderID uuid.UUID
		Count    int64
	}

	var rows []row
	err := d.db.Model(&models.Message{}).
		Select("sender_id, count(*) as count").
		Where("receiver_id = ? AND seen = ?", receiverID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.SenderID] = r.Count
	}
	return counts, nil
}
