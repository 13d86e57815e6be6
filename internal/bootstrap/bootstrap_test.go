package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/ingest/bref"
	"github.com/fortuna/courtside/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func loadConfig(t *testing.T, overrides map[string]string) *config.Config {
	t.Helper()
	env := map[string]string{
		"LINE_CHANNEL_SECRET":       "secret",
		"LINE_CHANNEL_ACCESS_TOKEN": "token",
		"STORE_BACKEND":             "memory",
	}
	for k, v := range overrides {
		env[k] = v
	}
	cfg, err := config.Load(config.Options{Lookup: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}})
	require.NoError(t, err)
	return cfg
}

func TestBuild_MemoryBackend(t *testing.T) {
	cfg := loadConfig(t, nil)

	c, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &bref.HTTPClient{}, c.Fetcher)
	assert.Nil(t, c.Publisher)
	assert.NotNil(t, c.Names, "name index cached by default")
	assert.Equal(t, cfg.Scrape.ListingURL, c.Ingester.ListingURL())
	assert.Equal(t, "0 6 * * *", c.Scheduler.GetStatus().Schedule)
	assert.False(t, c.Scheduler.GetStatus().Started)

	rec, err := c.Resolver.Resolve(context.Background(), "tatum")
	require.NoError(t, err)
	assert.Nil(t, rec, "fresh store is empty")

	rr := httptest.NewRecorder()
	c.RESTServer().Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBuild_BrowserFetcher(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"FETCH_MODE": "browser"})

	c, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.IsType(t, &bref.BrowserClient{}, c.Fetcher)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close(), "second close is a no-op")
}

func TestBuild_PublisherUnreachable(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"PUBLISH_EVENTS":   "true",
		"EVENTS_REDIS_URL": "redis://127.0.0.1:1/0",
	})

	_, err := Build(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run event publisher")
}

func boxScoreSite(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{}
	for path, file := range map[string]string{
		"/boxscores/":                  "boxscores.html",
		"/boxscores/202012250BOS.html": "202012250BOS.html",
		"/boxscores/202012250LAL.html": "202012250LAL.html",
	} {
		data, err := os.ReadFile(filepath.Join("..", "ingest", "bref", "testdata", file))
		require.NoError(t, err)
		pages[path] = string(data)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuild_ScrapeRefreshesNameCache(t *testing.T) {
	srv := boxScoreSite(t)
	cfg := loadConfig(t, map[string]string{
		"LISTING_URL":      srv.URL + "/boxscores/",
		"REQUEST_INTERVAL": "0s",
		"PLAYER_NAMES_TTL": "1h",
	})

	c, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.Names)

	ctx := context.Background()
	rec, err := c.Resolver.Resolve(ctx, "tatum")
	require.NoError(t, err)
	require.Nil(t, rec)

	summary, err := c.Scheduler.RunNow(ctx, scheduler.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.Written)

	rec, err = c.Resolver.Resolve(ctx, "tatum")
	require.NoError(t, err)
	require.NotNil(t, rec, "scrape must not leave the cached index stale")
	assert.Equal(t, "Jayson Tatum", rec.Player)
}
