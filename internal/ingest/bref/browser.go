package bref

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserClient renders pages in headless Chrome. It is the fallback when the site
// serves plain HTTP clients a challenge page instead of the box scores.
type BrowserClient struct {
	lastRequest time.Time
	interval    time.Duration
	timeout     time.Duration
	logger      *zap.Logger

	// Chromedp context for headless browser
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewBrowserClient starts a Chrome allocator with scraper-friendly flags
func NewBrowserClient(opts HTTPOptions) *BrowserClient {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &BrowserClient{
		interval: opts.Interval,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

// Close releases resources
func (c *BrowserClient) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Fetch navigates to url and returns the rendered document
func (c *BrowserClient) Fetch(ctx context.Context, url string) (string, error) {
	if !c.lastRequest.IsZero() {
		if wait := c.interval - time.Since(c.lastRequest); wait > 0 {
			c.logger.Debug("rate limiting browser fetch", zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	html, err := c.render(ctx, url)
	c.lastRequest = time.Now()
	return html, err
}

func (c *BrowserClient) render(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, c.timeout)
	defer cancel()

	// Stop the browser run when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp %s: %w", url, err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned for %s", url)
	}

	return htmlContent, nil
}
