package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/line"
	"github.com/fortuna/courtside/internal/reply"
	"github.com/fortuna/courtside/internal/store"
	"go.uber.org/zap"
)

// MaintenanceText is the reply while the bot is in maintenance mode
const MaintenanceText = "Sorry, We Update now."

// PlayerResolver maps chat text to a stored record; nil means no match
type PlayerResolver interface {
	Resolve(ctx context.Context, text string) (*store.PlayerStatRecord, error)
}

// Replier sends reply messages for a webhook event
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages ...line.Message) error
}

// Options configures Handler
type Options struct {
	ChannelSecret string
	Maintenance   bool
	Logger        *zap.Logger
}

// Handler answers LINE text messages with player cards
type Handler struct {
	secret      string
	maintenance bool
	resolver    PlayerResolver
	replier     Replier
	logger      *zap.Logger
}

// NewHandler creates a webhook handler
func NewHandler(resolver PlayerResolver, replier Replier, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handler{
		secret:      opts.ChannelSecret,
		maintenance: opts.Maintenance,
		resolver:    resolver,
		replier:     replier,
		logger:      opts.Logger.Named("chat"),
	}
}

// HandleWebhook verifies body against signature and replies to every text
// message event in it. The first failing event stops processing.
func (h *Handler) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	req, err := line.ParseWebhook(h.secret, signature, body)
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			h.logger.Warn("rejected webhook with invalid signature")
		}
		return err
	}

	for _, event := range req.Events {
		if !event.IsText() {
			h.logger.Debug("ignoring event",
				zap.String("type", event.Type))
			continue
		}
		if err := h.handleText(ctx, event); err != nil {
			h.logError(err)
			return err
		}
	}
	return nil
}

func (h *Handler) handleText(ctx context.Context, event line.Event) error {
	if h.maintenance {
		return h.replier.Reply(ctx, event.ReplyToken, line.NewTextMessage(MaintenanceText))
	}

	card, err := h.Card(ctx, event.Message.Text)
	if err != nil {
		return err
	}
	return h.replier.Reply(ctx, event.ReplyToken, line.NewFlexMessage(reply.AltText, card.Bubble()))
}

// Card resolves text and composes the card to send
func (h *Handler) Card(ctx context.Context, text string) (reply.Card, error) {
	rec, err := h.resolver.Resolve(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", text, err)
	}
	if rec == nil {
		h.logger.Info("no player for message", zap.String("text", text))
	}
	return reply.Compose(rec), nil
}

func (h *Handler) logError(err error) {
	var apiErr *line.APIError
	if !errors.As(err, &apiErr) {
		h.logger.Error("handling message failed", zap.Error(err))
		return
	}

	h.logger.Error("got exception from LINE Messaging API",
		zap.Int("status", apiErr.StatusCode),
		zap.String("message", apiErr.Message))
	for _, d := range apiErr.Details {
		h.logger.Error("LINE API error detail",
			zap.String("property", d.Property),
			zap.String("message", d.Message))
	}
}
