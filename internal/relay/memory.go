package relay

import (
	"context"
	"maps"

	errs "github.com/feedbackbot/feedback-bot-server/internal/errors"
	"github.com/feedbackbot/feedback-bot-server/internal/model"
)

// In-memory variant of the unit of work and its repositories. Used by tests
// and anywhere a durable store is not wanted. Writes land in a working copy
// of the state; Commit promotes the working copy, Rollback restores the last
// committed one, so partial writes of an uncommitted transaction are never
// observable afterwards. CommitError makes the next Commit fail, for
// exercising the commit-failure contract.

type forwardedMessageKey struct {
	ForwardedMessageID model.MessageID
	TargetChatID       model.ChatID
}

type inMemoryState struct {
	admins            map[model.UserID]model.Admin
	targetChats       map[model.ChatID]model.TargetChat
	forwardedMessages map[forwardedMessageKey]model.ForwardedMessage
}

func newInMemoryState() inMemoryState {
	return inMemoryState{
		admins:            make(map[model.UserID]model.Admin),
		targetChats:       make(map[model.ChatID]model.TargetChat),
		forwardedMessages: make(map[forwardedMessageKey]model.ForwardedMessage),
	}
}

func (s inMemoryState) clone() inMemoryState {
	return inMemoryState{
		admins:            maps.Clone(s.admins),
		targetChats:       maps.Clone(s.targetChats),
		forwardedMessages: maps.Clone(s.forwardedMessages),
	}
}

// InMemoryUnitOfWork - map-backed UnitOfWork.
type InMemoryUnitOfWork struct {
	state     inMemoryState // working copy the repositories operate on
	committed inMemoryState // last committed state, restored on rollback
	gateway   Gateway

	// CommitError makes the next Commit fail with a wrapped commit error.
	CommitError error

	isCommitted  bool
	isRolledBack bool
}

var _ UnitOfWork = (*InMemoryUnitOfWork)(nil)

// NewInMemoryUnitOfWork - create an empty in-memory unit of work around the
// given gateway.
func NewInMemoryUnitOfWork(gateway Gateway) *InMemoryUnitOfWork {
	return &InMemoryUnitOfWork{
		state:     newInMemoryState(),
		committed: newInMemoryState(),
		gateway:   gateway,
	}
}

// Begin - an InMemoryUnitOfWork is its own Beginner: every "transaction"
// reuses the same working state with the terminal flags reset.
func (uow *InMemoryUnitOfWork) Begin(_ context.Context) (UnitOfWork, error) {
	uow.isCommitted = false
	uow.isRolledBack = false

	return uow, nil
}

// Admins - the admin repository bound to this unit of work.
func (uow *InMemoryUnitOfWork) Admins() AdminRepository {
	return &inMemoryAdminRepository{uow: uow}
}

// TargetChats - the target chat repository bound to this unit of work.
func (uow *InMemoryUnitOfWork) TargetChats() TargetChatRepository {
	return &inMemoryTargetChatRepository{uow: uow}
}

// ForwardedMessages - the forwarded message repository bound to this unit of work.
func (uow *InMemoryUnitOfWork) ForwardedMessages() ForwardedMessageRepository {
	return &inMemoryForwardedMessageRepository{uow: uow}
}

// Gateway - the messaging gateway bound to this unit of work.
func (uow *InMemoryUnitOfWork) Gateway() Gateway {
	return uow.gateway
}

// Commit promotes the working state. With CommitError set the transaction is
// rolled back instead and the error surfaces wrapped, like a rejected store
// commit. No-op once a terminal state is reached.
func (uow *InMemoryUnitOfWork) Commit() error {
	if uow.isCommitted || uow.isRolledBack {
		return nil
	}

	if uow.CommitError != nil {
		uow.isRolledBack = true
		uow.state = uow.committed.clone()

		return errs.WrapCommitFailed(uow.CommitError)
	}

	uow.isCommitted = true
	uow.committed = uow.state.clone()

	return nil
}

// Rollback restores the last committed state, discarding all writes of the
// open transaction. No-op once a terminal state is reached.
func (uow *InMemoryUnitOfWork) Rollback() error {
	if uow.isCommitted || uow.isRolledBack {
		return nil
	}

	uow.isRolledBack = true
	uow.state = uow.committed.clone()

	return nil
}

// Committed reports whether the last transaction was committed.
func (uow *InMemoryUnitOfWork) Committed() bool {
	return uow.isCommitted
}

// RolledBack reports whether the last transaction was rolled back.
func (uow *InMemoryUnitOfWork) RolledBack() bool {
	return uow.isRolledBack
}

type inMemoryAdminRepository struct {
	uow *InMemoryUnitOfWork
}

func (repo *inMemoryAdminRepository) Get(userID model.UserID) (*model.Admin, error) {
	admin, ok := repo.uow.state.admins[userID]
	if !ok {
		return nil, nil
	}

	return repo.load(admin), nil
}

func (repo *inMemoryAdminRepository) GetAll() ([]*model.Admin, error) {
	admins := make([]*model.Admin, 0, len(repo.uow.state.admins))
	for _, admin := range repo.uow.state.admins {
		admins = append(admins, repo.load(admin))
	}

	return admins, nil
}

func (repo *inMemoryAdminRepository) Add(admin *model.Admin) error {
	stored := *admin
	stored.TargetChat = nil
	repo.uow.state.admins[admin.UserID] = stored

	// The admin's own target chat lands in the same store, same transaction.
	if admin.TargetChat != nil {
		repo.uow.state.targetChats[admin.TargetChat.ChatID] = *admin.TargetChat
	}

	return nil
}

// load produces a value copy with the target chat joined on read, so no
// entity is shared by reference across transactions.
func (repo *inMemoryAdminRepository) load(stored model.Admin) *model.Admin {
	admin := stored
	if targetChat, ok := repo.uow.state.targetChats[admin.TargetChatID]; ok {
		chat := targetChat
		admin.TargetChat = &chat
	}

	return &admin
}

type inMemoryTargetChatRepository struct {
	uow *InMemoryUnitOfWork
}

func (repo *inMemoryTargetChatRepository) Get(chatID model.ChatID) (*model.TargetChat, error) {
	targetChat, ok := repo.uow.state.targetChats[chatID]
	if !ok {
		return nil, nil
	}

	return &targetChat, nil
}

func (repo *inMemoryTargetChatRepository) GetLatest() (*model.TargetChat, error) {
	var latest *model.TargetChat

	for _, targetChat := range repo.uow.state.targetChats {
		chat := targetChat
		if latest == nil ||
			chat.CreatedAt.After(latest.CreatedAt) ||
			(chat.CreatedAt.Equal(latest.CreatedAt) && chat.ChatID > latest.ChatID) {
			latest = &chat
		}
	}

	return latest, nil
}

func (repo *inMemoryTargetChatRepository) Remove(chatID model.ChatID) (*model.TargetChat, error) {
	targetChat, ok := repo.uow.state.targetChats[chatID]
	if !ok {
		return nil, nil
	}

	delete(repo.uow.state.targetChats, chatID)

	return &targetChat, nil
}

func (repo *inMemoryTargetChatRepository) Add(targetChat *model.TargetChat) error {
	repo.uow.state.targetChats[targetChat.ChatID] = *targetChat
	return nil
}

type inMemoryForwardedMessageRepository struct {
	uow *InMemoryUnitOfWork
}

func (repo *inMemoryForwardedMessageRepository) Get(forwardedMessageID model.MessageID, targetChatID model.ChatID) (*model.ForwardedMessage, error) {
	key := forwardedMessageKey{
		ForwardedMessageID: forwardedMessageID,
		TargetChatID:       targetChatID,
	}

	forwardedMessage, ok := repo.uow.state.forwardedMessages[key]
	if !ok {
		return nil, nil
	}

	return &forwardedMessage, nil
}

func (repo *inMemoryForwardedMessageRepository) Add(forwardedMessage *model.ForwardedMessage) error {
	key := forwardedMessageKey{
		ForwardedMessageID: forwardedMessage.ForwardedMessageID,
		TargetChatID:       forwardedMessage.TargetChatID,
	}

	// Duplicate key keeps the first record, matching the durable variant.
	if _, ok := repo.uow.state.forwardedMessages[key]; ok {
		return nil
	}

	repo.uow.state.forwardedMessages[key] = *forwardedMessage

	return nil
}
