package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message between two users. Seq is the storage-assigned
// insertion order; conversations sort by (created_at, seq) so two messages
// created within the same timestamp tick still come back in send order.
type Message struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"senderId"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index" json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	Seen       bool      `gorm:"not null;default:false" json:"seen"`
	CreatedAt  time.Time `json:"createdAt"`
}
