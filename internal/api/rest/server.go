package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/fortuna/courtside/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Options holds the server's collaborators. History may be nil.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AdminToken   string

	Webhook  WebhookHandler
	Resolver PlayerResolver
	Scraper  ScrapeRunner
	History  RunHistory
	Health   store.HealthChecker
	Logger   *zap.Logger
}

// Server represents the REST API server
type Server struct {
	server  *http.Server
	handler *Handler
	logger  *zap.Logger
}

// NewServer creates a new REST API server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("rest")
	handler := NewHandler(opts.Webhook, opts.Resolver, opts.Scraper, opts.History, logger)
	handler.health = opts.Health

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// LINE webhook
	router.HandleFunc("/callback", handler.Callback).Methods("POST")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Players
	api.HandleFunc("/players/resolve", handler.ResolvePlayer).Methods("GET")

	// Scrape runs
	api.Handle("/scrape", AdminMiddleware(opts.AdminToken)(http.HandlerFunc(handler.TriggerScrape))).Methods("POST")
	api.HandleFunc("/scrape/status", handler.ScrapeStatus).Methods("GET")

	return &Server{
		handler: handler,
		logger:  logger,
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      router,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
	}
}

// Handler exposes the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the REST API server
func (s *Server) Start() error {
	s.logger.Info("REST server listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
