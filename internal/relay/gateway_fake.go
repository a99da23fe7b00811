package relay

import (
	"sync"

	"github.com/feedbackbot/feedback-bot-server/internal/model"
)

// FakeForwardedMessageID is the id the fake gateway assigns to every forward.
const FakeForwardedMessageID model.MessageID = 42

// SentMessage - a recorded Send call.
type SentMessage struct {
	ToChatID model.ChatID
	Text     string
}

// ForwardedCall - a recorded Forward call.
type ForwardedCall struct {
	FromChatID model.ChatID
	ToChatID   model.ChatID
	MessageID  model.MessageID
}

// CopiedCall - a recorded Copy call.
type CopiedCall struct {
	FromChatID model.ChatID
	ToChatID   model.ChatID
	MessageID  model.MessageID
}

// GatewayFake records every gateway call instead of talking to the platform.
// Individual sends can be made to fail through SendErrors.
type GatewayFake struct {
	mu sync.Mutex

	// NextForwardedID is returned by the next Forward call.
	NextForwardedID model.MessageID

	// SendErrors maps a recipient chat id to the error its Send should return.
	SendErrors map[model.ChatID]error

	// ForwardErrors maps a destination chat id to the error its Forward should return.
	ForwardErrors map[model.ChatID]error

	// CopyErrors maps a destination chat id to the error its Copy should return.
	CopyErrors map[model.ChatID]error

	Sent      []SentMessage
	Forwarded []ForwardedCall
	Copied    []CopiedCall
}

var _ Gateway = (*GatewayFake)(nil)

// NewGatewayFake creates a recording gateway fake.
func NewGatewayFake() *GatewayFake {
	return &GatewayFake{
		NextForwardedID: FakeForwardedMessageID,
		SendErrors:      make(map[model.ChatID]error),
		ForwardErrors:   make(map[model.ChatID]error),
		CopyErrors:      make(map[model.ChatID]error),
	}
}

// Send records the call, failing when an error is configured for the recipient.
func (gateway *GatewayFake) Send(toChatID model.ChatID, text string) error {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	gateway.Sent = append(gateway.Sent, SentMessage{ToChatID: toChatID, Text: text})

	if err, ok := gateway.SendErrors[toChatID]; ok {
		return err
	}

	return nil
}

// Forward records the call and returns the configured forwarded message id,
// failing when an error is configured for the destination.
func (gateway *GatewayFake) Forward(fromChatID, toChatID model.ChatID, messageID model.MessageID) (model.MessageID, error) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	gateway.Forwarded = append(gateway.Forwarded, ForwardedCall{
		FromChatID: fromChatID,
		ToChatID:   toChatID,
		MessageID:  messageID,
	})

	if err, ok := gateway.ForwardErrors[toChatID]; ok {
		return 0, err
	}

	return gateway.NextForwardedID, nil
}

// Copy records the call, failing when an error is configured for the destination.
func (gateway *GatewayFake) Copy(fromChatID, toChatID model.ChatID, messageID model.MessageID) error {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	gateway.Copied = append(gateway.Copied, CopiedCall{
		FromChatID: fromChatID,
		ToChatID:   toChatID,
		MessageID:  messageID,
	})

	if err, ok := gateway.CopyErrors[toChatID]; ok {
		return err
	}

	return nil
}
