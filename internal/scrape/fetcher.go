// Package scrape fetches club pages and extracts addresses, fuel-center
// links, and price cards with graceful degradation: every strategy that
// fails falls through to a more permissive one, and fetch failures surface
// as classified errors rather than panics or raw transport noise.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetch failure classes. The pipeline maps these to the stored failure
// detail; none of them propagate past reconciliation.
var (
	ErrTimeout    = errors.New("timeout")
	ErrConnection = errors.New("connection error")
	ErrStatus     = errors.New("bad status")
	ErrBlocked    = errors.New("bot protection detected")
)

// Fetcher retrieves a URL as a parsed HTML document.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*goquery.Document, error)
}

// Options configures the HTTP fetcher.
type Options struct {
	Timeout time.Duration
	Retries int
	// RequestsPerSecond caps the request rate across all fetches.
	// Zero disables the limiter.
	RequestsPerSecond float64
}

// HTTPFetcher implements Fetcher using resty with a shared rate limiter.
// Headers stay minimal on purpose: the target responds better to a plain
// client than to one pretending to be a browser.
type HTTPFetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		SetHeader("Connection", "keep-alive")

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &HTTPFetcher{client: client, limiter: limiter}
}

// Fetch retrieves targetURL and parses it. Failures are classified as
// ErrTimeout, ErrConnection, ErrStatus, or ErrBlocked.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*goquery.Document, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "scrape: limiter wait")
		}
	}

	resp, err := f.client.R().SetContext(ctx).Get(targetURL)
	if err != nil {
		return nil, classifyTransportErr(targetURL, err)
	}

	body := resp.Body()

	if blocked, blockType := DetectBlock(resp.StatusCode(), resp.Header(), body); blocked {
		zap.L().Warn("scrape: bot protection detected",
			zap.String("url", targetURL),
			zap.String("block_type", string(blockType)),
		)
		return nil, eris.Wrapf(ErrBlocked, "scrape: %s blocked (%s)", targetURL, blockType)
	}

	if resp.StatusCode() >= 400 {
		return nil, eris.Wrapf(ErrStatus, "scrape: %s returned %d", targetURL, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse %s", targetURL)
	}
	return doc, nil
}

// classifyTransportErr folds a transport error into the failure taxonomy.
func classifyTransportErr(targetURL string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), os.IsTimeout(err):
		return eris.Wrapf(ErrTimeout, "scrape: fetch %s", targetURL)
	case errors.As(err, &netErr) && netErr.Timeout():
		return eris.Wrapf(ErrTimeout, "scrape: fetch %s", targetURL)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return eris.Wrapf(ErrTimeout, "scrape: fetch %s", targetURL)
	}

	return eris.Wrapf(ErrConnection, "scrape: fetch %s: %v", targetURL, err)
}

// FailureReason renders a fetch error as the short detail stored in the
// fetch-error row.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	case errors.Is(err, ErrBlocked):
		return "Bot protection detected"
	case errors.Is(err, ErrConnection):
		return "Connection error"
	default:
		return err.Error()
	}
}
