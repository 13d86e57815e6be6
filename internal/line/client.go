package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAPIBaseURL is the Messaging API host
	DefaultAPIBaseURL = "https://api.line.me"

	replyPath      = "/v2/bot/message/reply"
	defaultTimeout = 10 * time.Second
)

// Message is a reply message: TextMessage or FlexMessage
type Message interface {
	isMessage()
}

// TextMessage is a plain text reply
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FlexMessage wraps a Flex container
type FlexMessage struct {
	Type     string `json:"type"`
	AltText  string `json:"altText"`
	Contents any    `json:"contents"`
}

func (TextMessage) isMessage() {}
func (FlexMessage) isMessage() {}

// NewTextMessage creates a text message
func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// NewFlexMessage creates a flex message from any JSON-serializable container
func NewFlexMessage(altText string, contents any) FlexMessage {
	return FlexMessage{Type: "flex", AltText: altText, Contents: contents}
}

// APIError is a non-2xx answer from the Messaging API
type APIError struct {
	StatusCode int           `json:"-"`
	Message    string        `json:"message"`
	Details    []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail names the request property a failure refers to
type ErrorDetail struct {
	Message  string `json:"message"`
	Property string `json:"property"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LINE Messaging API error (status %d): %s", e.StatusCode, e.Message)
}

// ClientOptions configures Client
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the Messaging API with a channel access token
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Messaging API client
func NewClient(accessToken string, opts ClientOptions) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("channel access token is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultAPIBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
	}, nil
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

// Reply answers a webhook event. A non-2xx response is returned as *APIError.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	if replyToken == "" {
		return fmt.Errorf("reply token is required")
	}
	if len(messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}

	payload, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: messages})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+replyPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	c.logger.Debug("reply sent", zap.Int("messages", len(messages)))
	return nil
}
