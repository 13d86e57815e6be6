// Package trigger dispatches a function invocation payload to either the
// scrape job or the chat webhook handler.
package trigger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fortuna/courtside/internal/chat"
	"github.com/fortuna/courtside/internal/line"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/scheduler"
	"go.uber.org/zap"
)

// ScrapeEventName marks a payload as a scheduled scrape: {"event_name":"scrape"}
const ScrapeEventName = "scrape"

// scheduledEventType is the detail-type of an EventBridge schedule rule
const scheduledEventType = "Scheduled Event"

// ScrapeRunner runs one scrape and reports its summary
type ScrapeRunner interface {
	RunNow(ctx context.Context, trigger string) (*publisher.RunSummary, error)
}

// WebhookHandler handles one signed webhook body
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, signature string, body []byte) error
}

// App is the function entry point shared by every invocation
type App struct {
	scraper ScrapeRunner
	webhook WebhookHandler
	logger  *zap.Logger
}

// NewApp creates the dispatcher
func NewApp(scraper ScrapeRunner, webhook WebhookHandler, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		scraper: scraper,
		webhook: webhook,
		logger:  logger.Named("trigger"),
	}
}

// scrapeMarker holds the fields that mark a scheduling payload
type scrapeMarker struct {
	EventName  string `json:"event_name"`
	DetailType string `json:"detail-type"`
}

// IsScrape reports whether the payload asks for a scrape run
func (m scrapeMarker) IsScrape() bool {
	return m.EventName == ScrapeEventName || m.DetailType == scheduledEventType
}

// envelope is the HTTP-style webhook invocation
type envelope struct {
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Handle runs the scrape for a scheduling payload and returns its summary.
// Any other JSON object is treated as a webhook envelope and always answered
// with a chat.Envelope; webhook failures, malformed envelopes included, are
// reported in the envelope. Only a payload that is not a JSON object is an
// error.
func (a *App) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	a.logger.Info("invocation", zap.ByteString("event", raw))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding invocation payload: %w", err)
	}

	var marker scrapeMarker
	if err := json.Unmarshal(raw, &marker); err == nil && marker.IsScrape() {
		summary, err := a.scraper.RunNow(ctx, scheduler.TriggerEvent)
		if err != nil {
			return nil, fmt.Errorf("scrape run: %w", err)
		}
		return summary, nil
	}

	var p envelope
	if err := json.Unmarshal(raw, &p); err != nil {
		a.logger.Warn("malformed webhook envelope", zap.Error(err))
		return chat.Failed(), nil
	}

	body := []byte(p.Body)
	if p.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(p.Body)
		if err != nil {
			a.logger.Warn("webhook body is not valid base64", zap.Error(err))
			return chat.Failed(), nil
		}
		body = decoded
	}

	err := a.webhook.HandleWebhook(ctx, SignatureFrom(p.Headers), body)
	if err != nil {
		a.logger.Error("webhook failed", zap.Error(err))
	}
	return chat.EnvelopeFor(err), nil
}

// SignatureFrom finds the LINE signature header regardless of its casing
func SignatureFrom(headers map[string]string) string {
	if sig, ok := headers["x-line-signature"]; ok {
		return sig
	}
	if sig, ok := headers[line.SignatureHeader]; ok {
		return sig
	}
	for k, v := range headers {
		if strings.EqualFold(k, line.SignatureHeader) {
			return v
		}
	}
	return ""
}
