package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/feedbackbot/feedback-bot-server/internal/metrics"
	"github.com/feedbackbot/feedback-bot-server/internal/model"
)

const authConfirmationText = "Auth token successfully verified"

// Relay is the routing service: it decides, for any incoming private message
// or reply, which chat it should be forwarded or copied to. Every operation
// runs inside its own unit of work and either commits or discards it. The
// relay itself is state free.
type Relay struct {
	beginner   Beginner
	metrics    metrics.Metrics
	logger     *slog.Logger
	adminToken string
}

// New - create the routing service. The admin token is the only piece of
// configuration the relay consumes.
func New(beginner Beginner, metrics metrics.Metrics, logger *slog.Logger, adminToken string) *Relay {
	return &Relay{
		beginner:   beginner,
		metrics:    metrics,
		logger:     logger,
		adminToken: adminToken,
	}
}

// AuthenticateAdmin verifies the token and registers the user as an admin with
// its own private chat as a target chat. Idempotent: an existing admin is left
// untouched. A wrong token is silently ignored so probing reveals nothing.
func (r *Relay) AuthenticateAdmin(ctx context.Context, userID model.UserID, chatID model.ChatID, token string) error {
	uow, err := r.beginner.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	existing, err := uow.Admins().Get(userID)
	if err != nil {
		return err
	}

	if existing != nil {
		r.logger.Debug("admin already authenticated", slog.Int64("user_id", userID.ToInt64()))
		return nil
	}

	admin := model.AuthenticateAdmin(userID, chatID, token, r.adminToken)
	if admin == nil {
		r.logger.Debug("user is not an admin", slog.Int64("user_id", userID.ToInt64()))
		return nil
	}

	if err := uow.Admins().Add(admin); err != nil {
		return err
	}

	if err := uow.Gateway().Send(admin.TargetChatID, authConfirmationText); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	r.metrics.LogChatEvent(metrics.EventAdminAuthenticated, chatID.ToInt64(), map[string]interface{}{
		"user_id": userID.ToInt64(),
	})

	return nil
}

// AddGroup registers a group chat as a target chat and notifies every admin.
// A request from a user with no admin record is a no-op.
func (r *Relay) AddGroup(ctx context.Context, byUserID model.UserID, groupChatID model.ChatID) error {
	uow, err := r.beginner.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	admin, err := uow.Admins().Get(byUserID)
	if err != nil {
		return err
	}

	if admin == nil {
		r.logger.Debug("user is not an admin", slog.Int64("user_id", byUserID.ToInt64()))
		return nil
	}

	if err := uow.TargetChats().Add(model.NewTargetChat(groupChatID)); err != nil {
		return err
	}

	admins, err := uow.Admins().GetAll()
	if err != nil {
		return err
	}

	r.notifyAdmins(uow.Gateway(), admins, fmt.Sprintf("Group chat %d added", groupChatID.ToInt64()))

	if err := uow.Commit(); err != nil {
		return err
	}

	r.metrics.LogChatEvent(metrics.EventGroupAdded, groupChatID.ToInt64(), map[string]interface{}{
		"by_user_id": byUserID.ToInt64(),
	})

	return nil
}

// RemoveGroup drops the target chat for the group and notifies every admin.
// Removing an unknown group is a no-op and sends nothing.
func (r *Relay) RemoveGroup(ctx context.Context, groupChatID model.ChatID) error {
	uow, err := r.beginner.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	removed, err := uow.TargetChats().Remove(groupChatID)
	if err != nil {
		return err
	}

	if removed == nil {
		return nil
	}

	admins, err := uow.Admins().GetAll()
	if err != nil {
		return err
	}

	r.notifyAdmins(uow.Gateway(), admins, fmt.Sprintf("Group chat %d removed", groupChatID.ToInt64()))

	if err := uow.Commit(); err != nil {
		return err
	}

	r.metrics.LogChatEvent(metrics.EventGroupRemoved, groupChatID.ToInt64(), map[string]interface{}{
		"target_since": removed.CreatedAt.Unix(),
	})

	return nil
}

// ForwardIncomingMessage relays a private message to the latest target chat
// and records the forwarding for later reply correlation. With no target chat
// configured the message is silently dropped: there is nowhere to route it.
func (r *Relay) ForwardIncomingMessage(ctx context.Context, originChatID model.ChatID, messageID model.MessageID) error {
	uow, err := r.beginner.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	return r.forwardToLatestTarget(uow, originChatID, messageID)
}

// ForwardReply routes a reply. Inside a known target chat a reply to a tracked
// forwarded message is copied back to its origin; a reply to anything else is
// ignored. A reply arriving from an ordinary private chat is treated exactly
// like a fresh incoming message - for the relay the reply wrapper is incidental.
func (r *Relay) ForwardReply(ctx context.Context, chatID model.ChatID, messageID, replyToMessageID model.MessageID) error {
	uow, err := r.beginner.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	targetChat, err := uow.TargetChats().Get(chatID)
	if err != nil {
		return err
	}

	if targetChat == nil {
		return r.forwardToLatestTarget(uow, chatID, messageID)
	}

	forwardedMessage, err := uow.ForwardedMessages().Get(replyToMessageID, chatID)
	if err != nil {
		return err
	}

	if forwardedMessage == nil {
		r.logger.Debug(
			"reply to an untracked message ignored",
			slog.Int64("chat_id", chatID.ToInt64()),
			slog.Int64("reply_to_message_id", replyToMessageID.ToInt64()),
		)

		return nil
	}

	// Copies are deliberately not recorded, so the reply relay is single hop.
	if err := uow.Gateway().Copy(chatID, forwardedMessage.OriginChatID, messageID); err != nil {
		return err
	}

	r.metrics.LogChatEvent(metrics.EventReplyRouted, chatID.ToInt64(), map[string]interface{}{
		"origin_chat_id": forwardedMessage.OriginChatID.ToInt64(),
	})

	return nil
}

// forwardToLatestTarget does the forward-and-record step shared by
// ForwardIncomingMessage and the private branch of ForwardReply. The platform
// forward happens before the commit; a commit failure after a successful
// forward leaves an orphan message in the target chat, accepted as an
// at-most-once gap.
func (r *Relay) forwardToLatestTarget(uow UnitOfWork, originChatID model.ChatID, messageID model.MessageID) error {
	targetChat, err := uow.TargetChats().GetLatest()
	if err != nil {
		return err
	}

	if targetChat == nil {
		r.logger.Debug("no target chat configured, message dropped", slog.Int64("origin_chat_id", originChatID.ToInt64()))
		return nil
	}

	forwardedMessageID, err := uow.Gateway().Forward(originChatID, targetChat.ChatID, messageID)
	if err != nil {
		return err
	}

	forwardedMessage := model.NewForwardedMessage(forwardedMessageID, targetChat.ChatID, originChatID)
	if err := uow.ForwardedMessages().Add(forwardedMessage); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	r.metrics.LogChatEvent(metrics.EventMessageForwarded, targetChat.ChatID.ToInt64(), map[string]interface{}{
		"origin_chat_id": originChatID.ToInt64(),
	})

	return nil
}

// notifyAdmins fans a notification out to every admin concurrently and waits
// for all attempts. One failed delivery is logged and must not block the
// others or the surrounding transaction.
func (r *Relay) notifyAdmins(gateway Gateway, admins []*model.Admin, text string) {
	var wg sync.WaitGroup

	for _, admin := range admins {
		wg.Add(1)

		go func(admin *model.Admin) {
			defer wg.Done()

			if err := gateway.Send(admin.TargetChatID, text); err != nil {
				r.logger.Warn(
					"admin notification failed",
					slog.Int64("user_id", admin.UserID.ToInt64()),
					slog.String("error", err.Error()),
				)
			}
		}(admin)
	}

	wg.Wait()
}
