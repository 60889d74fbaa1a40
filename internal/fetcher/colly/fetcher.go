// Package collyfetcher implements leads.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/sellence/leadfinder/internal/leads"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements leads.Fetcher using the Colly collector. Each Fetch
// clones the base collector, so one Fetcher is safe for concurrent use.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())
	return &Fetcher{cfg: cfg, baseCollector: c}
}

// Fetch executes a single HTTP GET, following redirects. Failures are
// always returned as a tagged *leads.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (leads.Page, error) {
	var (
		page     leads.Page
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})
	collector.OnResponse(func(r *colly.Response) {
		page = leads.Page{
			URL:        url,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 300 {
			fetchErr = &leads.FetchError{URL: url, Kind: leads.FetchErrHTTP, StatusCode: r.StatusCode, Err: err}
			return
		}
		fetchErr = leads.ClassifyFetchError(url, err)
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		// The abandoned collector goroutine may still write fetchErr;
		// only the done branch below may read it.
		return leads.Page{}, leads.ClassifyFetchError(url, ctx.Err())
	case visitErr := <-done:
		// OnError carries the best cause tag; the Visit error is the
		// fallback.
		if fetchErr != nil {
			return leads.Page{}, leads.ClassifyFetchError(url, fetchErr)
		}
		if visitErr != nil {
			return leads.Page{}, leads.ClassifyFetchError(url, visitErr)
		}
		if page.StatusCode < 200 || page.StatusCode >= 300 {
			return leads.Page{}, &leads.FetchError{URL: url, Kind: leads.FetchErrHTTP, StatusCode: page.StatusCode}
		}
		return page, nil
	}
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
