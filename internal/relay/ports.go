package relay

import (
	"context"

	"github.com/feedbackbot/feedback-bot-server/internal/model"
)

// AdminRepository - persistence contract for admins. Absence is a nil result,
// never an error.
type AdminRepository interface {
	// Get returns the admin with the given user id, or nil if there is none.
	Get(userID model.UserID) (*model.Admin, error)
	// GetAll returns every known admin.
	GetAll() ([]*model.Admin, error)
	// Add upserts the admin keyed by user id. The admin's own target chat is
	// persisted as part of the same operation.
	Add(admin *model.Admin) error
}

// TargetChatRepository - persistence contract for target chats.
type TargetChatRepository interface {
	// Get returns the target chat with the given chat id, or nil if there is none.
	Get(chatID model.ChatID) (*model.TargetChat, error)
	// GetLatest returns the target chat with the highest created_at, or nil when
	// no target chat exists. Ties are broken by the highest chat id.
	GetLatest() (*model.TargetChat, error)
	// Remove deletes the target chat and returns the removed record, or nil if
	// there was none. Idempotent, no error on a missing key.
	Remove(chatID model.ChatID) (*model.TargetChat, error)
	// Add upserts the target chat keyed by chat id.
	Add(targetChat *model.TargetChat) error
}

// ForwardedMessageRepository - persistence contract for forwarded-message records.
type ForwardedMessageRepository interface {
	// Get returns the record for the (forwarded message id, target chat id) pair,
	// or nil if there is none.
	Get(forwardedMessageID model.MessageID, targetChatID model.ChatID) (*model.ForwardedMessage, error)
	// Add inserts the record. A duplicate key keeps the existing row, so retrying
	// the same forward is idempotent.
	Add(forwardedMessage *model.ForwardedMessage) error
}

// Gateway - the messaging platform operations the relay requires.
type Gateway interface {
	// Send delivers a plain text notification. Best effort, no receipt tracked.
	Send(toChatID model.ChatID, text string) error
	// Forward creates a new message in toChatID referencing the original and
	// returns the platform-assigned id of that NEW message.
	Forward(fromChatID, toChatID model.ChatID, messageID model.MessageID) (model.MessageID, error)
	// Copy sends an independent copy with no visible link to the original, so the
	// recipient cannot infer where the relay keeps its target chat.
	Copy(fromChatID, toChatID model.ChatID, messageID model.MessageID) error
}

// UnitOfWork binds the three repositories and the gateway to one transaction.
// Commit and Rollback are idempotent no-ops once the transaction has reached
// either terminal state.
type UnitOfWork interface {
	Admins() AdminRepository
	TargetChats() TargetChatRepository
	ForwardedMessages() ForwardedMessageRepository
	Gateway() Gateway
	Commit() error
	Rollback() error
}

// Beginner opens a new unit of work. Each logical operation gets its own
// transaction; none is shared across operations.
type Beginner interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
