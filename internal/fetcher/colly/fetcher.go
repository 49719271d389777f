// Package collyfetcher implements feed.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/senthilkr/tamil-news-feed/internal/feed"
)

// defaultUserAgents is the rotation pool used when none is configured. Each
// fetch picks one at random so listing pages serve the public variant rather
// than a bot-tier one.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/124.0.0.0 Safari/537.36",
}

// noCacheHeaders defeat intermediary caches so every cycle sees origin-fresh
// listings.
var noCacheHeaders = map[string]string{
	"Cache-Control":   "no-cache, no-store, must-revalidate, max-age=0",
	"Pragma":          "no-cache",
	"Expires":         "0",
	"Accept-Language": "ta-IN,ta;q=0.9,en-IN;q=0.8,en;q=0.7",
}

// Config controls collector behavior.
type Config struct {
	Timeout    time.Duration
	UserAgents []string
}

// Fetcher fetches single pages through a shared base collector. Safe for
// concurrent use: every Fetch clones the base collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 16 * time.Second
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = defaultUserAgents
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())
	return &Fetcher{cfg: cfg, baseCollector: c}
}

// Fetch executes a single HTTP GET. Any network error, timeout, or non-200
// status surfaces as an error; the caller treats that page as absent.
func (f *Fetcher) Fetch(ctx context.Context, url string) (feed.FetchResponse, error) {
	var (
		result   feed.FetchResponse
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgents[rand.Intn(len(f.cfg.UserAgents))]
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		for k, v := range noCacheHeaders {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		result = feed.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return feed.FetchResponse{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return feed.FetchResponse{}, fmt.Errorf("visit %s: %w", url, err)
		}
		if fetchErr != nil {
			return feed.FetchResponse{}, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
	}
	if result.StatusCode != http.StatusOK {
		return feed.FetchResponse{}, fmt.Errorf("fetch %s: status %d", url, result.StatusCode)
	}
	return result, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
