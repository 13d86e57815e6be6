package bref

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/store"
	"go.uber.org/zap"
)

// Ingester runs the scrape pipeline: listing -> game pages -> records -> store.
type Ingester struct {
	fetcher    Fetcher
	store      store.PlayerStore
	listingURL string
	logger     *zap.Logger
}

// RunResult summarizes one completed scrape
type RunResult struct {
	Games    int           `json:"games"`
	Records  int           `json:"records"`
	Written  int           `json:"written"`
	Replaced int           `json:"replaced"`
	Duration time.Duration `json:"duration"`
}

// Scraped is the in-memory result of a scrape before any store write
type Scraped struct {
	Games    int
	Replaced int
	Players  *Aggregator
}

// NewIngester creates an ingester reading listingURL. An empty listingURL uses
// the public box score index.
func NewIngester(fetcher Fetcher, st store.PlayerStore, listingURL string, logger *zap.Logger) *Ingester {
	if strings.TrimSpace(listingURL) == "" {
		listingURL = ListingURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		fetcher:    fetcher,
		store:      st,
		listingURL: listingURL,
		logger:     logger.Named("ingest"),
	}
}

// ListingURL returns the index page this ingester scrapes
func (i *Ingester) ListingURL() string {
	return i.listingURL
}

// Scrape fetches every completed game on the listing page and returns the
// aggregated records. Nothing is written. Any fetch or shape error aborts.
func (i *Ingester) Scrape(ctx context.Context) (*Scraped, error) {
	listingHTML, err := i.fetcher.Fetch(ctx, i.listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	listing, err := ParseHTML(listingHTML)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	gameURLs, err := ListGameURLs(listing, i.listingURL)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	i.logger.Info("found completed games", zap.Int("games", len(gameURLs)))

	out := &Scraped{Players: NewAggregator()}
	for _, gameURL := range gameURLs {
		records, err := i.scrapeGame(ctx, gameURL)
		if err != nil {
			return nil, err
		}
		out.Games++
		out.Replaced += out.Players.Add(records...)
		i.logger.Debug("scraped game",
			zap.String("url", gameURL),
			zap.Int("players", len(records)))
	}

	return out, nil
}

func (i *Ingester) scrapeGame(ctx context.Context, gameURL string) ([]*store.PlayerStatRecord, error) {
	html, err := i.fetcher.Fetch(ctx, gameURL)
	if err != nil {
		return nil, fmt.Errorf("fetch game: %w", err)
	}

	doc, err := ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("parse game %s: %w", gameURL, err)
	}

	page, err := ParseGamePage(gameURL, doc)
	if err != nil {
		return nil, fmt.Errorf("extract box score: %w", err)
	}

	records, err := NormalizeGame(page)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return records, nil
}

// Run scrapes and then writes every aggregated record, one at a time.
func (i *Ingester) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	scraped, err := i.Scrape(ctx)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Games:    scraped.Games,
		Records:  scraped.Players.Len(),
		Replaced: scraped.Replaced,
	}

	for _, rec := range scraped.Players.Records() {
		if err := i.store.PutPlayer(ctx, rec); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("write %q: %w", rec.Player, err)
		}
		result.Written++
	}
	result.Duration = time.Since(start)

	i.logger.Info("scrape complete",
		zap.Int("games", result.Games),
		zap.Int("records", result.Records),
		zap.Int("replaced", result.Replaced),
		zap.Duration("elapsed", result.Duration))

	return result, nil
}
