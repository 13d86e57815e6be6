// Package bootstrap wires courtside components from a loaded configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/api/rest"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/chat"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/ingest/bref"
	"github.com/fortuna/courtside/internal/line"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/scheduler"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
	"go.uber.org/zap"
)

// Components holds every long-lived collaborator of a courtside process
type Components struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     store.PlayerStore
	Fetcher   bref.Fetcher
	Ingester  *bref.Ingester
	Publisher *publisher.RedisStreamPublisher // nil unless PUBLISH_EVENTS
	Scheduler *scheduler.Orchestrator
	Names     *cache.NameCache // nil when PLAYER_NAMES_TTL is zero
	Resolver  *service.Resolver
	Line      *line.Client
	Chat      *chat.Handler

	closers []func() error
}

// Build connects the store and the optional event publisher and wires the
// rest of the graph on top of them.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Components{Config: cfg, Logger: logger}

	st, err := store.Open(ctx, store.Options{
		Backend:     cfg.Store.Backend,
		DynamoTable: cfg.Store.DynamoTable,
		RedisURL:    cfg.Store.RedisURL,
		RedisKey:    cfg.Store.RedisKey,
		PostgresDSN: cfg.Store.PostgresDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	c.Store = st
	c.closers = append(c.closers, st.Close)
	logger.Info("player store ready", zap.String("backend", cfg.Store.Backend))

	fetchOpts := bref.HTTPOptions{
		UserAgent: cfg.Scrape.UserAgent,
		Timeout:   cfg.Scrape.HTTPTimeout,
		Interval:  cfg.Scrape.RequestInterval,
		Logger:    logger,
	}
	switch cfg.Scrape.FetchMode {
	case "browser":
		browser := bref.NewBrowserClient(fetchOpts)
		c.Fetcher = browser
		c.closers = append(c.closers, func() error {
			browser.Close()
			return nil
		})
	default:
		c.Fetcher = bref.NewHTTPClient(fetchOpts)
	}
	c.Ingester = bref.NewIngester(c.Fetcher, st, cfg.Scrape.ListingURL, logger)

	var pub publisher.Publisher
	if cfg.Publisher.Enabled {
		p, err := publisher.NewRedisPublisher(cfg.Publisher.RedisURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connecting run event publisher: %w", err)
		}
		c.Publisher = p
		c.closers = append(c.closers, p.Close)
		pub = p
		logger.Info("publishing run summaries", zap.String("stream", publisher.ScrapeRunsStream))
	}

	c.Scheduler = scheduler.NewOrchestrator(c.Ingester, pub, &scheduler.Config{
		Schedule:   cfg.Scrape.Schedule,
		Location:   cfg.Scrape.Location,
		RunTimeout: cfg.Scrape.RunTimeout,
		RunOnStart: cfg.Scrape.RunOnStart,
	}, logger)

	var players service.PlayerReader = st
	if cfg.Store.NamesTTL > 0 {
		names := cache.NewNameCache(st, cfg.Store.NamesTTL)
		c.Scheduler.AfterRun(func(publisher.RunSummary) { names.Invalidate() })
		c.Names = names
		players = names
	}
	c.Resolver = service.NewResolver(players, nil, logger)

	c.Line, err = line.NewClient(cfg.Line.ChannelAccessToken, line.ClientOptions{
		BaseURL: cfg.Line.APIBaseURL,
		Logger:  logger,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("creating LINE client: %w", err)
	}

	c.Chat = chat.NewHandler(c.Resolver, c.Line, chat.Options{
		ChannelSecret: cfg.Line.ChannelSecret,
		Maintenance:   cfg.App.Maintenance,
		Logger:        logger,
	})
	if cfg.App.Maintenance {
		logger.Warn("maintenance mode: every message gets the maintenance notice")
	}

	return c, nil
}

// RESTServer builds the HTTP surface over the components
func (c *Components) RESTServer() *rest.Server {
	opts := rest.Options{
		Addr:         c.Config.Addr(),
		ReadTimeout:  c.Config.Server.ReadTimeout,
		WriteTimeout: c.Config.Server.WriteTimeout,
		AdminToken:   c.Config.Server.AdminToken,
		Webhook:      c.Chat,
		Resolver:     c.Resolver,
		Scraper:      c.Scheduler,
		Logger:       c.Logger,
	}
	if c.Publisher != nil {
		opts.History = c.Publisher
	}
	if hc, ok := c.Store.(store.HealthChecker); ok {
		opts.Health = hc
	}
	return rest.NewServer(opts)
}

// Close releases connections in reverse order of acquisition
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
