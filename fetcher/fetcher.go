// Package fetcher downloads listing pages.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/CodePeacock/scraper/models"
)

const (
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 10 * time.Second
	// MaxBodySize caps a page body. colly cuts longer bodies short without
	// an error, so a body that reaches the cap is rejected as truncated.
	MaxBodySize = 32 << 20
)

// Fetcher returns the body of a successful (2xx) GET. Every failure wraps
// models.ErrTransport.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CollyFetcher fetches pages with a fresh colly collector per request, so
// concurrent fetches share no callbacks and the same URL can be fetched
// again once its cache entry expires.
type CollyFetcher struct {
	userAgent   string
	timeout     time.Duration
	maxBodySize int
}

func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CollyFetcher{userAgent: userAgent, timeout: timeout, maxBodySize: MaxBodySize}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.StdlibContext(ctx),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(f.maxBodySize),
	}
	if f.userAgent != "" {
		opts = append(opts, colly.UserAgent(f.userAgent))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.timeout)

	var (
		body     []byte
		status   int
		received bool
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
		received = true
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil {
		if status != 0 {
			return nil, fmt.Errorf("GET %s: status %d: %v: %w", url, status, err, models.ErrTransport)
		}
		return nil, fmt.Errorf("GET %s: %v: %w", url, err, models.ErrTransport)
	}
	if !received {
		return nil, fmt.Errorf("GET %s: no response: %w", url, models.ErrTransport)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("GET %s: status %d: %w", url, status, models.ErrTransport)
	}
	if len(body) >= f.maxBodySize {
		return nil, fmt.Errorf("GET %s: body reached the %d byte limit and may be truncated: %w",
			url, f.maxBodySize, models.ErrTransport)
	}
	return body, nil
}
