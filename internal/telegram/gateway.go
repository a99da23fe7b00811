package telegram

import (
	errs "github.com/feedbackbot/feedback-bot-server/internal/errors"
	"github.com/feedbackbot/feedback-bot-server/internal/model"
	"github.com/feedbackbot/feedback-bot-server/internal/relay"
	tele "gopkg.in/telebot.v3"
)

// Gateway implements the relay's messaging gateway on top of the Telegram Bot
// API. Dispatch failures are wrapped as gateway errors so the relay can tell
// platform outages apart from store failures.
type Gateway struct {
	bot *tele.Bot
}

var _ relay.Gateway = (*Gateway)(nil)

// NewGateway wraps the bot into a relay gateway.
func NewGateway(bot *tele.Bot) *Gateway {
	return &Gateway{bot: bot}
}

// Send - deliver a plain text notification to the chat.
func (gateway *Gateway) Send(toChatID model.ChatID, text string) error {
	if _, err := gateway.bot.Send(tele.ChatID(toChatID.ToInt64()), text); err != nil {
		return errs.WrapGatewayDispatch("send", err)
	}

	return nil
}

// Forward - forward the message and return the id the platform assigned to the
// new message in the destination chat.
func (gateway *Gateway) Forward(fromChatID, toChatID model.ChatID, messageID model.MessageID) (model.MessageID, error) {
	forwarded, err := gateway.bot.Forward(
		tele.ChatID(toChatID.ToInt64()),
		tele.StoredMessage{
			MessageID: messageID.ToString(),
			ChatID:    fromChatID.ToInt64(),
		},
	)
	if err != nil {
		return 0, errs.WrapGatewayDispatch("forward", err)
	}

	return model.MessageID(forwarded.ID), nil
}

// Copy - send an independent copy of the message. Unlike Forward, the copy
// carries no visible link to the original, so the recipient cannot tell which
// chat it was relayed through.
func (gateway *Gateway) Copy(fromChatID, toChatID model.ChatID, messageID model.MessageID) error {
	_, err := gateway.bot.Copy(
		tele.ChatID(toChatID.ToInt64()),
		tele.StoredMessage{
			MessageID: messageID.ToString(),
			ChatID:    fromChatID.ToInt64(),
		},
	)
	if err != nil {
		return errs.WrapGatewayDispatch("copy", err)
	}

	return nil
}
