package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"LINE_CHANNEL_SECRET":       "secret",
		"LINE_CHANNEL_ACCESS_TOKEN": "token",
		"DB":                        "courtside-players",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{Lookup: lookupFrom(baseEnv())})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.False(t, cfg.App.Maintenance)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "https://api.line.me", cfg.Line.APIBaseURL)
	assert.Equal(t, "dynamodb", cfg.Store.Backend)
	assert.Equal(t, "courtside-players", cfg.Store.DynamoTable)
	assert.Equal(t, "courtside:players", cfg.Store.RedisKey)
	assert.Equal(t, 5*time.Minute, cfg.Store.NamesTTL)
	assert.Equal(t, "https://www.basketball-reference.com/boxscores/", cfg.Scrape.ListingURL)
	assert.Equal(t, "http", cfg.Scrape.FetchMode)
	assert.Equal(t, 3*time.Second, cfg.Scrape.RequestInterval)
	assert.Equal(t, 30*time.Second, cfg.Scrape.HTTPTimeout)
	assert.Equal(t, "0 6 * * *", cfg.Scrape.Schedule)
	assert.Equal(t, "America/New_York", cfg.Scrape.Location.String())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.False(t, cfg.Publisher.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	env := baseEnv()
	env["ENV"] = "production"
	env["LOG_LEVEL"] = "DEBUG"
	env["MAINTENANCE_MODE"] = "true"
	env["STORE_BACKEND"] = "redis"
	env["REDIS_URL"] = "redis://localhost:6379/0"
	env["FETCH_MODE"] = "browser"
	env["REQUEST_INTERVAL"] = "5s"
	env["PLAYER_NAMES_TTL"] = "0s"
	env["SCRAPE_TIMEZONE"] = "Asia/Tokyo"
	env["REST_PORT"] = "9090"
	env["PUBLISH_EVENTS"] = "true"
	env["ADMIN_TOKEN"] = "let-me-in"

	cfg, err := Load(Options{Lookup: lookupFrom(env)})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.App.Maintenance)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "browser", cfg.Scrape.FetchMode)
	assert.Equal(t, 5*time.Second, cfg.Scrape.RequestInterval)
	assert.Zero(t, cfg.Store.NamesTTL)
	assert.Equal(t, "Asia/Tokyo", cfg.Scrape.Location.String())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Publisher.Enabled)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Publisher.RedisURL, "events reuse REDIS_URL")
	assert.Equal(t, "let-me-in", cfg.Server.AdminToken)
}

func TestLoad_MissingLineCredentials(t *testing.T) {
	for _, key := range []string{"LINE_CHANNEL_SECRET", "LINE_CHANNEL_ACCESS_TOKEN"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)

			_, err := Load(Options{Lookup: lookupFrom(env)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), key+" is required")
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown backend", "STORE_BACKEND", "mongo", "STORE_BACKEND must be one of"},
		{"unknown fetch mode", "FETCH_MODE", "curl", "FETCH_MODE must be one of"},
		{"bad duration", "REQUEST_INTERVAL", "soon", "invalid REQUEST_INTERVAL"},
		{"bad bool", "MAINTENANCE_MODE", "maybe", "invalid MAINTENANCE_MODE"},
		{"bad port", "REST_PORT", "eighty", "invalid REST_PORT"},
		{"port out of range", "REST_PORT", "70000", "REST_PORT must be less than or equal to 65535"},
		{"bad timezone", "SCRAPE_TIMEZONE", "Mars/Olympus", "invalid SCRAPE_TIMEZONE"},
		{"bad listing url", "LISTING_URL", "not a url", "LISTING_URL must be a valid URL"},
		{"unknown env", "ENV", "qa", "ENV must be one of"},
		{"bad names ttl", "PLAYER_NAMES_TTL", "forever", "invalid PLAYER_NAMES_TTL"},
		{"negative names ttl", "PLAYER_NAMES_TTL", "-1m", "PLAYER_NAMES_TTL must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			env[tt.key] = tt.value

			_, err := Load(Options{Lookup: lookupFrom(env)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_BackendRequirements(t *testing.T) {
	tests := []struct {
		backend string
		missing string
	}{
		{"redis", "REDIS_URL"},
		{"postgres", "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			env := baseEnv()
			env["STORE_BACKEND"] = tt.backend

			_, err := Load(Options{Lookup: lookupFrom(env)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.missing+" is required")
		})
	}

	env := baseEnv()
	delete(env, "DB")
	_, err := Load(Options{Lookup: lookupFrom(env)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB is required")

	env["STORE_BACKEND"] = "memory"
	_, err = Load(Options{Lookup: lookupFrom(env)})
	assert.NoError(t, err, "memory backend needs no connection settings")
}

func TestLoad_PublisherNeedsRedis(t *testing.T) {
	env := baseEnv()
	env["PUBLISH_EVENTS"] = "true"

	_, err := Load(Options{Lookup: lookupFrom(env)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENTS_REDIS_URL is required")
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LINE_CHANNEL_SECRET=file-secret\nLINE_CHANNEL_ACCESS_TOKEN=file-token\nSTORE_BACKEND=memory\nREST_PORT=7070\n"), 0o600))

	t.Setenv("REST_PORT", "6060")
	// godotenv sets variables process-wide; clear them after the test.
	t.Setenv("LINE_CHANNEL_SECRET", "")
	os.Unsetenv("LINE_CHANNEL_SECRET")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")
	os.Unsetenv("LINE_CHANNEL_ACCESS_TOKEN")
	t.Setenv("STORE_BACKEND", "")
	os.Unsetenv("STORE_BACKEND")

	cfg, err := Load(Options{EnvFile: path})
	require.NoError(t, err)

	assert.Equal(t, "file-secret", cfg.Line.ChannelSecret)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 6060, cfg.Server.Port, "environment wins over the file")
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("STORE_BACKEND", "memory")

	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	assert.NoError(t, err)
}
