package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/chat"
	"github.com/fortuna/courtside/internal/line"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/reply"
	"github.com/fortuna/courtside/internal/scheduler"
	"github.com/fortuna/courtside/internal/store"
	"go.uber.org/zap"
)

const (
	maxCallbackBody = 1 << 20
	healthTimeout   = 2 * time.Second
)

// WebhookHandler verifies and answers one LINE webhook delivery
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, signature string, body []byte) error
}

// PlayerResolver maps free text to a stored player record
type PlayerResolver interface {
	Resolve(ctx context.Context, text string) (*store.PlayerStatRecord, error)
}

// ScrapeRunner runs scrapes on demand and reports scheduler state
type ScrapeRunner interface {
	RunNow(ctx context.Context, trigger string) (*publisher.RunSummary, error)
	GetStatus() scheduler.Status
}

// RunHistory lists recently published run summaries
type RunHistory interface {
	RecentRuns(ctx context.Context, count int64) ([]publisher.RunSummary, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	webhook  WebhookHandler
	resolver PlayerResolver
	scraper  ScrapeRunner
	history  RunHistory
	health   store.HealthChecker
	logger   *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(webhook WebhookHandler, resolver PlayerResolver, scraper ScrapeRunner, history RunHistory, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		webhook:  webhook,
		resolver: resolver,
		scraper:  scraper,
		history:  history,
		logger:   logger,
	}
}

// HealthCheck handles health check requests. A failing store ping reports
// the service as degraded.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":  "healthy",
		"service": "courtside",
	}
	if h.health == nil {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.health.HealthCheck(ctx); err != nil {
		h.logger.Warn("store health check failed", zap.Error(err))
		resp["status"] = "degraded"
		resp["store"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["store"] = "ok"
	respondJSON(w, http.StatusOK, resp)
}

// Callback handles POST /callback, the LINE webhook
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBody))
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.Error(err))
		writeEnvelope(w, chat.Failed())
		return
	}

	err = h.webhook.HandleWebhook(r.Context(), r.Header.Get(line.SignatureHeader), body)
	writeEnvelope(w, chat.EnvelopeFor(err))
}

type resolveResponse struct {
	Query  string                  `json:"query"`
	Player *store.PlayerStatRecord `json:"player"`
	Card   reply.Bubble            `json:"card"`
}

// ResolvePlayer handles GET /api/v1/players/resolve?q=
func (h *Handler) ResolvePlayer(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "Query parameter q is required", nil)
		return
	}

	rec, err := h.resolver.Resolve(r.Context(), q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve player", err)
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "No player matched", nil)
		return
	}

	respondJSON(w, http.StatusOK, resolveResponse{
		Query:  q,
		Player: rec,
		Card:   reply.Compose(rec).Bubble(),
	})
}

// TriggerScrape handles POST /api/v1/scrape. It blocks until the run ends.
func (h *Handler) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	summary, err := h.scraper.RunNow(r.Context(), scheduler.TriggerManual)
	if errors.Is(err, scheduler.ErrRunInProgress) {
		respondError(w, http.StatusConflict, "A scrape run is already in progress", err)
		return
	}
	if err != nil {
		if summary != nil {
			respondJSON(w, http.StatusBadGateway, summary)
			return
		}
		respondError(w, http.StatusInternalServerError, "Scrape run failed", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

type statusResponse struct {
	Scheduler  scheduler.Status       `json:"scheduler"`
	RecentRuns []publisher.RunSummary `json:"recent_runs,omitempty"`
}

// ScrapeStatus handles GET /api/v1/scrape/status
func (h *Handler) ScrapeStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Scheduler: h.scraper.GetStatus()}

	if h.history != nil {
		limit := 10 // default
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
				limit = l
			}
		}

		runs, err := h.history.RecentRuns(r.Context(), int64(limit))
		if err != nil {
			h.logger.Warn("failed to read run history", zap.Error(err))
		} else {
			resp.RecentRuns = runs
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func writeEnvelope(w http.ResponseWriter, env chat.Envelope) {
	for k, v := range env.Headers {
		w.Header().Set(k, v)
	}
	if env.Body != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(env.StatusCode)
	io.WriteString(w, env.Body)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
