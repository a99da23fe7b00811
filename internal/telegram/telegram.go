// Library repository: https://github.com/tucnak/telebot

package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/feedbackbot/feedback-bot-server/internal/config"
	log "github.com/feedbackbot/feedback-bot-server/internal/log"
	"github.com/feedbackbot/feedback-bot-server/internal/model"
	"github.com/feedbackbot/feedback-bot-server/internal/relay"

	tele "gopkg.in/telebot.v3"
	mw "gopkg.in/telebot.v3/middleware"
)

type Telegram struct {
	bot *tele.Bot
}

// NewBot creates the telebot instance alone, so the gateway can be built from
// it before the handlers are wired.
func NewBot(httpClient *http.Client, config *config.Config, logger *slog.Logger) (*tele.Bot, error) {
	pref := tele.Settings{
		Token: config.Telegram.Token,
		Poller: &tele.LongPoller{
			Timeout: config.Telegram.Timeout,
		},
		Client: httpClient,
		OnError: func(err error, _ tele.Context) {
			logger.Error("telegram error", slog.String("error", err.Error()))
		},
	}

	return tele.NewBot(pref)
}

// New wires the relay operations to bot updates:
//   - /auth <token> in a private chat authenticates an admin;
//   - the bot being added to or removed from a group adds/removes a target chat;
//   - a reply is routed through the reply-correlation logic;
//   - any other private message is forwarded to the latest target chat.
func New(bot *tele.Bot, router *relay.Relay, config *config.Config, logger *slog.Logger) (*Telegram, error) {
	// Global-scoped middleware:
	bot.Use(mw.Recover())
	bot.Use(mw.AutoRespond())
	bot.Use(mw.Logger(log.NewLogAdapter(logger)))

	// Drop duplicate webhook/poll deliveries of the same update
	dedupe, err := dedupeUpdatesMiddleware()
	if err != nil {
		return nil, err
	}
	bot.Use(dedupe)

	bot.Handle("/auth", authenticateAdmin(router, logger))
	bot.Handle(tele.OnMyChatMember, updateGroup(router, logger))
	bot.Handle(tele.OnText, relayMessage(router, logger))
	bot.Handle(tele.OnMedia, relayMessage(router, logger))

	return &Telegram{bot: bot}, nil
}

// Me - the bot's own user.
func (t *Telegram) Me() *tele.User {
	return t.bot.Me
}

// Start - start the long polling loop. Blocks until Stop is called.
func (t *Telegram) Start() {
	t.bot.Start()
}

// Stop - stop the long polling loop.
func (t *Telegram) Stop() {
	t.bot.Stop()
}

// authenticateAdmin handles the /auth command in private chats. Whatever the
// outcome, the handler stays silent unless the token verifies: negative paths
// must not reveal that an admin endpoint exists.
func authenticateAdmin(router *relay.Relay, logger *slog.Logger) tele.HandlerFunc {
	return func(c tele.Context) error {
		chat := c.Chat()
		sender := c.Sender()

		if chat == nil || sender == nil || chat.Type != tele.ChatPrivate {
			return nil
		}

		logger.Debug("admin authentication command issued", slog.Int64("user_id", sender.ID))

		token := strings.TrimSpace(c.Message().Payload)
		if token == "" {
			return nil
		}

		return router.AuthenticateAdmin(
			context.Background(),
			model.UserID(sender.ID),
			model.ChatID(chat.ID),
			token,
		)
	}
}

// updateGroup reacts to the bot's own membership changes: being kicked from a
// group removes its target chat, anything else registers the group as a target
// chat on behalf of the acting user.
func updateGroup(router *relay.Relay, logger *slog.Logger) tele.HandlerFunc {
	return func(c tele.Context) error {
		update := c.ChatMember()
		if update == nil || update.Chat == nil || update.NewChatMember == nil {
			return nil
		}

		ctx := context.Background()

		switch update.NewChatMember.Role {
		case tele.Kicked, tele.Left:
			logger.Debug(
				"bot removed from group",
				slog.Int64("chat_id", update.Chat.ID),
				slog.String("title", update.Chat.Title),
			)

			return router.RemoveGroup(ctx, model.ChatID(update.Chat.ID))
		default:
			logger.Debug(
				"bot added to group",
				slog.Int64("chat_id", update.Chat.ID),
				slog.String("title", update.Chat.Title),
				slog.Int64("by_user_id", update.Sender.ID),
			)

			return router.AddGroup(ctx, model.UserID(update.Sender.ID), model.ChatID(update.Chat.ID))
		}
	}
}

// relayMessage routes regular messages. Replies go through reply correlation
// regardless of the chat they were sent in; non-reply messages are relayed
// only from private chats.
func relayMessage(router *relay.Relay, logger *slog.Logger) tele.HandlerFunc {
	return func(c tele.Context) error {
		message := c.Message()
		if message == nil || message.Chat == nil {
			return nil
		}

		ctx := context.Background()

		if message.ReplyTo != nil {
			logger.Debug(
				"processing reply",
				slog.Int64("chat_id", message.Chat.ID),
				slog.Int("message_id", message.ID),
			)

			return router.ForwardReply(
				ctx,
				model.ChatID(message.Chat.ID),
				model.MessageID(message.ID),
				model.MessageID(message.ReplyTo.ID),
			)
		}

		if !message.Private() {
			return nil
		}

		// Commands are never relayed
		if strings.HasPrefix(message.Text, "/") {
			return nil
		}

		logger.Debug(
			"processing incoming message",
			slog.Int64("chat_id", message.Chat.ID),
			slog.Int("message_id", message.ID),
		)

		return router.ForwardIncomingMessage(
			ctx,
			model.ChatID(message.Chat.ID),
			model.MessageID(message.ID),
		)
	}
}
