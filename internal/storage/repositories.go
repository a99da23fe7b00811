package storage

import (
	"errors"

	"github.com/feedbackbot/feedback-bot-server/internal/model"
	"github.com/feedbackbot/feedback-bot-server/internal/relay"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transaction-scoped gorm repositories. A missing record is a nil result,
// never an error.

type adminRepository struct {
	tx *gorm.DB
}

var _ relay.AdminRepository = (*adminRepository)(nil)

// Get - load the admin with its target chat joined on read.
func (repo *adminRepository) Get(userID model.UserID) (*model.Admin, error) {
	var admin model.Admin

	err := repo.tx.Preload("TargetChat").First(&admin, "user_id = ?", userID.ToInt64()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &admin, nil
}

// GetAll - load every admin with its target chat.
func (repo *adminRepository) GetAll() ([]*model.Admin, error) {
	var admins []*model.Admin
	if err := repo.tx.Preload("TargetChat").Find(&admins).Error; err != nil {
		return nil, err
	}

	return admins, nil
}

// Add - upsert the admin keyed by user id. The admin's own target chat lands
// as its own row in the same transaction; the admin row keeps only the FK.
func (repo *adminRepository) Add(admin *model.Admin) error {
	if admin.TargetChat != nil {
		if err := repo.tx.
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(admin.TargetChat).Error; err != nil {
			return err
		}
	}

	return repo.tx.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(admin).Error
}

type targetChatRepository struct {
	tx *gorm.DB
}

var _ relay.TargetChatRepository = (*targetChatRepository)(nil)

func (repo *targetChatRepository) Get(chatID model.ChatID) (*model.TargetChat, error) {
	var targetChat model.TargetChat

	err := repo.tx.First(&targetChat, "chat_id = ?", chatID.ToInt64()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &targetChat, nil
}

// GetLatest - the authoritative target for new forwards: highest created_at,
// ties broken by the highest chat id.
func (repo *targetChatRepository) GetLatest() (*model.TargetChat, error) {
	var targetChat model.TargetChat

	err := repo.tx.Order("created_at DESC, chat_id DESC").First(&targetChat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &targetChat, nil
}

// Remove - delete the target chat and return the removed record. Idempotent:
// removing a missing chat returns nil without error.
func (repo *targetChatRepository) Remove(chatID model.ChatID) (*model.TargetChat, error) {
	removed, err := repo.Get(chatID)
	if err != nil || removed == nil {
		return nil, err
	}

	if err := repo.tx.Delete(&model.TargetChat{}, "chat_id = ?", chatID.ToInt64()).Error; err != nil {
		return nil, err
	}

	return removed, nil
}

func (repo *targetChatRepository) Add(targetChat *model.TargetChat) error {
	return repo.tx.
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(targetChat).Error
}

type forwardedMessageRepository struct {
	tx *gorm.DB
}

var _ relay.ForwardedMessageRepository = (*forwardedMessageRepository)(nil)

func (repo *forwardedMessageRepository) Get(forwardedMessageID model.MessageID, targetChatID model.ChatID) (*model.ForwardedMessage, error) {
	var forwardedMessage model.ForwardedMessage

	err := repo.tx.First(
		&forwardedMessage,
		"forwarded_message_id = ? AND target_chat_id = ?",
		forwardedMessageID.ToInt64(),
		targetChatID.ToInt64(),
	).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &forwardedMessage, nil
}

// Add - insert the record; a duplicate key keeps the existing row. The
// platform assigns forwarded message ids per target chat, so a conflicting key
// is always a retry of the same forward, never a different origin.
func (repo *forwardedMessageRepository) Add(forwardedMessage *model.ForwardedMessage) error {
	return repo.tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(forwardedMessage).Error
}
