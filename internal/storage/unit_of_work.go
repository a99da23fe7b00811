package storage

import (
	errs "github.com/feedbackbot/feedback-bot-server/internal/errors"
	"github.com/feedbackbot/feedback-bot-server/internal/relay"
	"gorm.io/gorm"
)

// UnitOfWork binds the repositories and the gateway to one database
// transaction. Commit and Rollback are idempotent: once the transaction has
// reached a terminal state further calls are no-ops, so a deferred Rollback
// after a successful Commit is safe.
type UnitOfWork struct {
	tx      *gorm.DB
	gateway relay.Gateway

	committed  bool
	rolledBack bool
}

var _ relay.UnitOfWork = (*UnitOfWork)(nil)

func newUnitOfWork(tx *gorm.DB, gateway relay.Gateway) *UnitOfWork {
	return &UnitOfWork{
		tx:      tx,
		gateway: gateway,
	}
}

// Admins - the admin repository bound to this transaction.
func (uow *UnitOfWork) Admins() relay.AdminRepository {
	return &adminRepository{tx: uow.tx}
}

// TargetChats - the target chat repository bound to this transaction.
func (uow *UnitOfWork) TargetChats() relay.TargetChatRepository {
	return &targetChatRepository{tx: uow.tx}
}

// ForwardedMessages - the forwarded message repository bound to this transaction.
func (uow *UnitOfWork) ForwardedMessages() relay.ForwardedMessageRepository {
	return &forwardedMessageRepository{tx: uow.tx}
}

// Gateway - the messaging gateway carried by this unit of work.
func (uow *UnitOfWork) Gateway() relay.Gateway {
	return uow.gateway
}

// Commit finalizes all writes atomically. A rejected commit rolls the
// transaction back and surfaces a wrapped ErrorCommitFailed: the operation is
// considered not applied.
func (uow *UnitOfWork) Commit() error {
	if uow.committed || uow.rolledBack {
		return nil
	}

	if err := uow.tx.Commit().Error; err != nil {
		uow.rolledBack = true
		uow.tx.Rollback() // best effort, the driver may have done it already

		return errs.WrapCommitFailed(err)
	}

	uow.committed = true

	return nil
}

// Rollback discards all writes. Partial writes are never observable outside
// the transaction.
func (uow *UnitOfWork) Rollback() error {
	if uow.committed || uow.rolledBack {
		return nil
	}

	uow.rolledBack = true

	return uow.tx.Rollback().Error
}
