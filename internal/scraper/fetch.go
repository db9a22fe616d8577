package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/hockey-report/internal/logger"
)

const (
	// DefaultReportURL is the ECHL official game report. %d is the game id.
	DefaultReportURL = "https://lscluster.hockeytech.com/game_reports/official-game-report.php?client_code=echl&game_id=%d&lang_id=1"
	UserAgent        = "hockey-report/1.0 (github.com/pfrederiksen/hockey-report)"
	Timeout          = 30 * time.Second

	defaultRetries         = 3
	defaultInitialInterval = 500 * time.Millisecond
)

// Fetcher retrieves the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status is worth retrying.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ReportURL fills the game id into a report URL template. Templates without
// a %d verb get the id appended.
func ReportURL(template string, gameID int) string {
	if template == "" {
		template = DefaultReportURL
	}
	if strings.Contains(template, "%d") {
		return fmt.Sprintf(template, gameID)
	}
	return template + strconv.Itoa(gameID)
}

// HTTPFetcher fetches pages over plain HTTP with retries.
type HTTPFetcher struct {
	client          *http.Client
	userAgent       string
	retries         uint64
	initialInterval time.Duration
	log             *logger.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithRetries sets how many times a failed fetch is retried and the first
// delay between attempts. Zero retries means a single attempt.
func WithRetries(retries uint64, initial time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.retries = retries
		if initial > 0 {
			f.initialInterval = initial
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *logger.Logger) HTTPOption {
	return func(f *HTTPFetcher) { f.log = l }
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:          &http.Client{Timeout: Timeout},
		userAgent:       UserAgent,
		retries:         defaultRetries,
		initialInterval: defaultInitialInterval,
		log:             logger.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs url and returns the body. Network errors, 429 and 5xx answers
// are retried with exponential backoff; other statuses fail immediately with
// a *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	attempt := 0

	operation := func() error {
		attempt++
		b, err := f.get(ctx, url)
		if err == nil {
			body = b
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = f.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, f.retries), ctx)

	notify := func(err error, wait time.Duration) {
		f.log.Warn("Fetch failed, retrying", logger.Fields{
			"url":      url,
			"attempt":  attempt,
			"retry_in": wait.String(),
			"error":    err.Error(),
		})
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}
