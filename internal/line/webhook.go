package line

import (
	"encoding/json"
	"fmt"
)

const (
	EventTypeMessage = "message"
	MessageTypeText  = "text"

	// SignatureHeader carries the base64 HMAC of the webhook body
	SignatureHeader = "X-Line-Signature"

	maxWebhookBodySize = 1 << 20
)

// WebhookRequest is the body LINE posts to the webhook URL
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only the fields used here are decoded.
type Event struct {
	Type       string        `json:"type"`
	ReplyToken string        `json:"replyToken"`
	Timestamp  int64         `json:"timestamp"`
	Source     Source        `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
}

// Source identifies who sent the event
type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// EventMessage is the message carried by a message event
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// IsText reports whether the event is a text message with a reply token
func (e Event) IsText() bool {
	return e.Type == EventTypeMessage &&
		e.Message != nil &&
		e.Message.Type == MessageTypeText &&
		e.ReplyToken != ""
}

// ParseWebhook verifies the signature and decodes the events.
func ParseWebhook(channelSecret, signature string, body []byte) (*WebhookRequest, error) {
	if len(body) > maxWebhookBodySize {
		return nil, fmt.Errorf("webhook body of %d bytes exceeds limit", len(body))
	}
	if err := ValidateSignature(channelSecret, signature, body); err != nil {
		return nil, err
	}

	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decoding webhook: %w", err)
	}
	return &req, nil
}
