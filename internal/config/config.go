// Package config loads courtside settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Line      LineConfig
	Store     StoreConfig
	Scrape    ScrapeConfig
	Server    ServerConfig
	Publisher PublisherConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" validate:"oneof=development staging production"`
	// Maintenance answers every chat message with a fixed notice
	Maintenance bool `env:"MAINTENANCE_MODE"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// LineConfig holds Messaging API credentials.
type LineConfig struct {
	ChannelSecret      string `env:"LINE_CHANNEL_SECRET" validate:"required"`
	ChannelAccessToken string `env:"LINE_CHANNEL_ACCESS_TOKEN" validate:"required"`
	APIBaseURL         string `env:"LINE_API_BASE_URL" validate:"required,url"`
}

// StoreConfig selects and configures the player store backend.
type StoreConfig struct {
	Backend     string `env:"STORE_BACKEND" validate:"oneof=dynamodb redis postgres memory"`
	DynamoTable string `env:"DB" validate:"required_if=Backend dynamodb"`
	RedisURL    string `env:"REDIS_URL" validate:"required_if=Backend redis"`
	RedisKey    string `env:"REDIS_PLAYERS_KEY"`
	PostgresDSN string `env:"DATABASE_URL" validate:"required_if=Backend postgres"`
	// NamesTTL caches the player name index between lookups; zero disables
	NamesTTL time.Duration `env:"PLAYER_NAMES_TTL" validate:"gte=0"`
}

// ScrapeConfig holds box score scraping settings.
type ScrapeConfig struct {
	ListingURL      string         `env:"LISTING_URL" validate:"required,url"`
	FetchMode       string         `env:"FETCH_MODE" validate:"oneof=http browser"`
	UserAgent       string         `env:"SCRAPE_USER_AGENT"`
	RequestInterval time.Duration  `env:"REQUEST_INTERVAL" validate:"gte=0"`
	HTTPTimeout     time.Duration  `env:"HTTP_TIMEOUT" validate:"gt=0"`
	Schedule        string         `env:"SCRAPE_SCHEDULE" validate:"required"`
	Timezone        string         `env:"SCRAPE_TIMEZONE" validate:"required"`
	RunTimeout      time.Duration  `env:"SCRAPE_RUN_TIMEOUT" validate:"gt=0"`
	RunOnStart      bool           `env:"SCRAPE_ON_START"`
	Location        *time.Location `env:"-"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `env:"REST_PORT" validate:"gt=0,lte=65535"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
	// AdminToken guards the manual scrape endpoint; empty disables it
	AdminToken string `env:"ADMIN_TOKEN"`
}

// PublisherConfig controls run summary events.
type PublisherConfig struct {
	Enabled  bool   `env:"PUBLISH_EVENTS"`
	RedisURL string `env:"EVENTS_REDIS_URL" validate:"required_if=Enabled true"`
}

// Options changes where Load reads from
type Options struct {
	// EnvFile is loaded first if it exists; default ".env"
	EnvFile string
	// Lookup replaces os.LookupEnv, for tests
	Lookup func(string) (string, bool)
}

// Load builds the configuration from defaults, the .env file and the
// environment, in increasing precedence, then validates it.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}
	if opts.Lookup == nil {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", opts.EnvFile, err)
		}
		opts.Lookup = os.LookupEnv
	}

	e := &envReader{lookup: opts.Lookup}

	cfg := &Config{
		App: AppConfig{
			Environment: e.str("ENV", "development"),
			Maintenance: e.boolean("MAINTENANCE_MODE", false),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(e.str("LOG_LEVEL", "info")),
		},
		Line: LineConfig{
			ChannelSecret:      e.str("LINE_CHANNEL_SECRET", ""),
			ChannelAccessToken: e.str("LINE_CHANNEL_ACCESS_TOKEN", ""),
			APIBaseURL:         e.str("LINE_API_BASE_URL", "https://api.line.me"),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(e.str("STORE_BACKEND", "dynamodb")),
			DynamoTable: e.str("DB", ""),
			RedisURL:    e.str("REDIS_URL", ""),
			RedisKey:    e.str("REDIS_PLAYERS_KEY", "courtside:players"),
			PostgresDSN: e.str("DATABASE_URL", ""),
			NamesTTL:    e.duration("PLAYER_NAMES_TTL", 5*time.Minute),
		},
		Scrape: ScrapeConfig{
			ListingURL:      e.str("LISTING_URL", "https://www.basketball-reference.com/boxscores/"),
			FetchMode:       strings.ToLower(e.str("FETCH_MODE", "http")),
			UserAgent:       e.str("SCRAPE_USER_AGENT", ""),
			RequestInterval: e.duration("REQUEST_INTERVAL", 3*time.Second),
			HTTPTimeout:     e.duration("HTTP_TIMEOUT", 30*time.Second),
			Schedule:        e.str("SCRAPE_SCHEDULE", "0 6 * * *"),
			Timezone:        e.str("SCRAPE_TIMEZONE", "America/New_York"),
			RunTimeout:      e.duration("SCRAPE_RUN_TIMEOUT", 10*time.Minute),
			RunOnStart:      e.boolean("SCRAPE_ON_START", false),
		},
		Server: ServerConfig{
			Port:         e.integer("REST_PORT", 8080),
			ReadTimeout:  e.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: e.duration("SERVER_WRITE_TIMEOUT", 15*time.Minute),
			AdminToken:   e.str("ADMIN_TOKEN", ""),
		},
		Publisher: PublisherConfig{
			Enabled:  e.boolean("PUBLISH_EVENTS", false),
			RedisURL: e.str("EVENTS_REDIS_URL", e.str("REDIS_URL", "")),
		},
	}

	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Scrape.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_TIMEZONE %q: %w", cfg.Scrape.Timezone, err)
	}
	cfg.Scrape.Location = loc

	return cfg, nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Addr is the REST listen address
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (e *envReader) boolean(key string, fallback bool) bool {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: must be true or false", key, v))
		return fallback
	}
	return b
}

func (e *envReader) integer(key string, fallback int) int {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return fallback
	}
	return n
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return fallback
	}
	return d
}

// validate runs the struct tags and reports fields by their variable name.
func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" && name != "-" {
			return name
		}
		return fld.Name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fe.Field()+" "+friendlyMessage(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
