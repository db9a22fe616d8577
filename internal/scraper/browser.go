package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome and returns the final DOM.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	settle   time.Duration
}

// NewBrowserFetcher starts a Chrome allocator. Call Close when done.
func NewBrowserFetcher(userAgent string, timeout time.Duration) *BrowserFetcher {
	if userAgent == "" {
		userAgent = UserAgent
	}
	if timeout <= 0 {
		timeout = Timeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
		settle:   time.Second,
	}
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// Fetch navigates to url, waits for scripts to settle and returns the
// rendered HTML.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	// Propagate the caller's cancellation into the browser context.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}
	if html == "" {
		return "", errors.New("empty HTML content returned")
	}
	return html, nil
}
