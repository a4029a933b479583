package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatThread is the single direct-message thread between two users,
// keyed by the canonical pair.
type ChatThread struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserLowID     uint      `gorm:"not null;uniqueIndex:idx_chat_threads_pair" json:"user_low_id"`
	UserHighID    uint      `gorm:"not null;uniqueIndex:idx_chat_threads_pair" json:"user_high_id"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ChatThread) TableName() string {
	return "chat_threads"
}

// Pair returns the canonical pair of the thread.
func (t *ChatThread) Pair() UserPair {
	return UserPair{Low: t.UserLowID, High: t.UserHighID}
}

// BeforeCreate rejects non-canonical pairs.
func (t *ChatThread) BeforeCreate(_ *gorm.DB) error {
	if t.UserLowID >= t.UserHighID {
		return NewValidationError("chat thread requires two distinct users in canonical order")
	}
	return nil
}

// ChatMessage is one message in a thread.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"not null;index:idx_chat_messages_thread_created" json:"thread_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_chat_messages_thread_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatContact is a thread as seen by one of its participants.
type ChatContact struct {
	ThreadID      uint      `json:"thread_id"`
	UserID        uint      `json:"user_id"`
	Username      string    `json:"username"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	LastMessageAt time.Time `json:"last_message_at"`
}
