package model

import (
	"strconv"
	"time"
)

type (
	MessageID int64
)

// ForwardedMessage links a message relayed into a target chat back to the chat
// it originally came from. The forwarded message id is the identifier the
// platform assigned to the NEW message in the target chat, not the original
// message id, so the pair (forwarded_message_id, target_chat_id) is unique.
type ForwardedMessage struct {
	ForwardedMessageID MessageID `gorm:"primaryKey;autoIncrement:false" json:"forwarded_message_id"` // Platform id of the message created in the target chat.
	TargetChatID       ChatID    `gorm:"primaryKey;autoIncrement:false" json:"target_chat_id"` // Chat the message was forwarded into.
	OriginChatID       ChatID    `gorm:"not null"                       json:"origin_chat_id"` // Chat the message came from.
	CreatedAt          time.Time `gorm:"not null"                       json:"created_at"` // Time when the forward was recorded. Immutable.
}

// NewForwardedMessage - record a forward of a message from originChatID that
// landed in targetChatID under forwardedMessageID.
func NewForwardedMessage(forwardedMessageID MessageID, targetChatID, originChatID ChatID) *ForwardedMessage {
	return &ForwardedMessage{
		ForwardedMessageID: forwardedMessageID,
		TargetChatID:       targetChatID,
		OriginChatID:       originChatID,
		CreatedAt:          time.Now().UTC(),
	}
}

// TableName - set the table name.
func (ForwardedMessage) TableName() string {
	return "forwarded_messages"
}

// Equal - identity is keyed on the (forwarded_message_id, target_chat_id) pair.
func (obj *ForwardedMessage) Equal(other *ForwardedMessage) bool {
	return other != nil &&
		obj.ForwardedMessageID == other.ForwardedMessageID &&
		obj.TargetChatID == other.TargetChatID
}

// ToInt64 - get the message ID.
func (id MessageID) ToInt64() int64 {
	return int64(id)
}

// ToString - get the message ID.
func (id MessageID) ToString() string {
	return strconv.FormatInt(int64(id), 10)
}
