package model

import (
	"strconv"
	"time"

	"github.com/feedbackbot/feedback-bot-server/internal/utility"
)

type (
	UserID int64
)

// Admin - a user authorized to manage target chats. Every admin owns exactly
// one target chat: its own private chat with the bot.
type Admin struct {
	UserID       UserID    `gorm:"primaryKey;autoIncrement:false" json:"user_id"` // Unique identifier for this user.
	TargetChatID ChatID    `gorm:"not null;index"                 json:"target_chat_id"` // FK to the admin's own private target chat.
	CreatedAt    time.Time `gorm:"not null"                       json:"created_at"` // Time when the admin was authenticated. Immutable.

	// Relations
	TargetChat *TargetChat `gorm:"foreignKey:TargetChatID;references:ChatID" json:"target_chat,omitempty"` // Loaded on read, stored as its own row.
}

// AuthenticateAdmin compares the provided token against the configured admin
// secret in constant time. On a match a new Admin owning chatID as its target
// chat is returned; on a mismatch the result is nil, without error. A mismatch
// is not a fault, it just means "not an admin".
func AuthenticateAdmin(userID UserID, chatID ChatID, token, adminToken string) *Admin {
	if !utility.ConstantTimeEquals(token, adminToken) {
		return nil
	}

	targetChat := NewTargetChat(chatID)

	return &Admin{
		UserID:       userID,
		TargetChatID: targetChat.ChatID,
		CreatedAt:    time.Now().UTC(),
		TargetChat:   targetChat,
	}
}

// TableName - set the table name.
func (Admin) TableName() string {
	return "admins"
}

// Equal - identity is keyed on the user id only.
func (obj *Admin) Equal(other *Admin) bool {
	return other != nil && obj.UserID == other.UserID
}

// ToInt64 - get the user ID.
func (id UserID) ToInt64() int64 {
	return int64(id)
}

// ToString - get the user ID.
func (id UserID) ToString() string {
	return strconv.FormatInt(int64(id), 10)
}
