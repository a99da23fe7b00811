package model

import (
	"strconv"
	"time"
)

type (
	ChatID int64
)

// TargetChat - a chat currently receiving forwarded private messages.
type TargetChat struct {
	ChatID    ChatID    `gorm:"primaryKey;autoIncrement:false" json:"chat_id"` // Unique identifier for the chat.
	CreatedAt time.Time `gorm:"not null"                       json:"created_at"` // Time when the chat became a target. Immutable.
}

// NewTargetChat - create a target chat for the given platform chat id.
func NewTargetChat(chatID ChatID) *TargetChat {
	return &TargetChat{
		ChatID:    chatID,
		CreatedAt: time.Now().UTC(),
	}
}

// TableName - set the table name.
func (TargetChat) TableName() string {
	return "target_chats"
}

// Equal - identity is keyed on the chat id only, created_at does not participate.
func (obj *TargetChat) Equal(other *TargetChat) bool {
	return other != nil && obj.ChatID == other.ChatID
}

// ToInt64 - get the chat ID.
func (id ChatID) ToInt64() int64 {
	return int64(id)
}

// ToString - get the chat ID.
func (id ChatID) ToString() string {
	return strconv.FormatInt(int64(id), 10)
}
