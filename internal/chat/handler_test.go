package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fortuna/courtside/internal/line"
	"github.com/fortuna/courtside/internal/reply"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const secret = "test-channel-secret"

type sentReply struct {
	token    string
	messages []line.Message
}

type recordingReplier struct {
	sent []sentReply
	err  error
}

func (r *recordingReplier) Reply(_ context.Context, token string, messages ...line.Message) error {
	r.sent = append(r.sent, sentReply{token: token, messages: messages})
	return r.err
}

func webhookBody(t *testing.T, texts ...string) []byte {
	t.Helper()
	events := make([]map[string]any, 0, len(texts))
	for i, text := range texts {
		events = append(events, map[string]any{
			"type":       "message",
			"replyToken": fmt.Sprintf("token-%d", i),
			"timestamp":  1608940800000 + i,
			"source":     map[string]any{"type": "user", "userId": "U123"},
			"message":    map[string]any{"id": fmt.Sprint(i), "type": "text", "text": text},
		})
	}
	body, err := json.Marshal(map[string]any{"destination": "Ubot", "events": events})
	require.NoError(t, err)
	return body
}

func tatumStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.PutPlayer(context.Background(), &store.PlayerStatRecord{
		Player:   "Jayson Tatum",
		Minutes:  "39:08",
		Points:   "20",
		Day:      "1225",
		Team:     "BOS",
		Opponent: "BRK",
		DateTime: "5:00 PM, December 25, 2020",
		Venue:    "TD Garden, Boston, Massachusetts",
		ImageID:  "tatumja01",
		GameID:   "202012250BOS",
	}))
	return st
}

func newTestHandler(t *testing.T, st store.PlayerStore, replier Replier, maintenance bool) *Handler {
	logger := zaptest.NewLogger(t)
	return NewHandler(service.NewResolver(st, nil, logger), replier, Options{
		ChannelSecret: secret,
		Maintenance:   maintenance,
		Logger:        logger,
	})
}

func TestHandleWebhook_AliasRepliesWithPlayerCard(t *testing.T) {
	replier := &recordingReplier{}
	h := newTestHandler(t, tatumStore(t), replier, false)

	body := webhookBody(t, "てーたむ")
	err := h.HandleWebhook(context.Background(), line.Sign(secret, body), body)
	require.NoError(t, err)
	assert.Equal(t, OK(), EnvelopeFor(err))

	require.Len(t, replier.sent, 1)
	assert.Equal(t, "token-0", replier.sent[0].token)
	require.Len(t, replier.sent[0].messages, 1)

	msg, ok := replier.sent[0].messages[0].(line.FlexMessage)
	require.True(t, ok)
	assert.Equal(t, reply.AltText, msg.AltText)

	bubble, ok := msg.Contents.(reply.Bubble)
	require.True(t, ok)
	require.NotNil(t, bubble.Hero)
	assert.Equal(t, "https://www.basketball-reference.com/req/0/images/players/tatumja01.jpg", bubble.Hero.URL)
	assert.Equal(t, "Jayson Tatum", bubble.Body.Contents[0].Text)
}

func TestHandleWebhook_MissRepliesWithErrorCard(t *testing.T) {
	replier := &recordingReplier{}
	h := newTestHandler(t, store.NewMemoryStore(), replier, false)

	body := webhookBody(t, "てーたむ")
	require.NoError(t, h.HandleWebhook(context.Background(), line.Sign(secret, body), body))

	require.Len(t, replier.sent, 1)
	msg := replier.sent[0].messages[0].(line.FlexMessage)
	assert.Equal(t, reply.ErrorCard{}.Bubble(), msg.Contents)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	replier := &recordingReplier{}
	h := newTestHandler(t, tatumStore(t), replier, false)

	body := webhookBody(t, "てーたむ")
	err := h.HandleWebhook(context.Background(), line.Sign("some-other-secret", body), body)
	require.ErrorIs(t, err, line.ErrInvalidSignature)

	assert.Equal(t, Envelope{
		IsBase64Encoded: false,
		StatusCode:      500,
		Headers:         map[string]string{},
		Body:            "Error",
	}, EnvelopeFor(err))
	assert.Empty(t, replier.sent, "no reply is sent")
}

func TestHandleWebhook_Maintenance(t *testing.T) {
	replier := &recordingReplier{}
	h := newTestHandler(t, tatumStore(t), replier, true)

	body := webhookBody(t, "tatum", "brown")
	require.NoError(t, h.HandleWebhook(context.Background(), line.Sign(secret, body), body))

	require.Len(t, replier.sent, 2)
	for _, sent := range replier.sent {
		assert.Equal(t, []line.Message{line.NewTextMessage(MaintenanceText)}, sent.messages)
	}
}

func TestHandleWebhook_IgnoresNonText(t *testing.T) {
	replier := &recordingReplier{}
	h := newTestHandler(t, tatumStore(t), replier, false)

	body := []byte(`{"destination":"Ubot","events":[{"type":"follow","replyToken":"abc","timestamp":1,"source":{"type":"user","userId":"U1"}}]}`)
	require.NoError(t, h.HandleWebhook(context.Background(), line.Sign(secret, body), body))
	assert.Empty(t, replier.sent)
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, string) (*store.PlayerStatRecord, error) {
	return nil, errors.New("scan failed")
}

func TestHandleWebhook_StoreFailure(t *testing.T) {
	replier := &recordingReplier{}
	h := NewHandler(failingResolver{}, replier, Options{ChannelSecret: secret})

	body := webhookBody(t, "tatum")
	err := h.HandleWebhook(context.Background(), line.Sign(secret, body), body)
	require.Error(t, err)
	assert.Equal(t, Failed(), EnvelopeFor(err))
	assert.Empty(t, replier.sent)
}

func TestHandleWebhook_ReplyAPIErrorIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid reply token","details":[{"message":"expired","property":"replyToken"}]}`))
	}))
	defer srv.Close()

	client, err := line.NewClient("token", line.ClientOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	h := NewHandler(service.NewResolver(tatumStore(t), nil, nil), client, Options{
		ChannelSecret: secret,
		Logger:        zap.New(core),
	})

	body := webhookBody(t, "tatum", "brown")
	err = h.HandleWebhook(context.Background(), line.Sign(secret, body), body)

	var apiErr *line.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, Failed(), EnvelopeFor(err))

	detail := logs.FilterMessage("LINE API error detail").All()
	require.Len(t, detail, 1)
	assert.Equal(t, "replyToken", detail[0].ContextMap()["property"])
	assert.Equal(t, "expired", detail[0].ContextMap()["message"])
}

func TestCard(t *testing.T) {
	h := newTestHandler(t, tatumStore(t), &recordingReplier{}, false)

	card, err := h.Card(context.Background(), "Tatum")
	require.NoError(t, err)
	assert.IsType(t, reply.PlayerCard{}, card)

	card, err = h.Card(context.Background(), "curry")
	require.NoError(t, err)
	assert.Equal(t, reply.ErrorCard{}, card)
}
