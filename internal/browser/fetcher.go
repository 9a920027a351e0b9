// Package browser provides rendered page fetching via headless Chrome (Rod).
package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	scrapeerrors "github.com/fpvcatalog/partscrawler/internal/errors"
)

// Result contains the rendered document for a fetched URL.
type Result struct {
	URL      string
	FinalURL string
	HTML     string
	Title    string
	Duration time.Duration
}

// Document parses the rendered HTML into a goquery document.
func (r *Result) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.HTML))
	if err != nil {
		return nil, scrapeerrors.NewParseError(r.URL, "parse_document", err)
	}
	return doc, nil
}

// Fetcher is the sole contract the crawl engine has with a rendering
// context: load a URL, wait for the page to settle, return the document.
// Failures come back as fetch_timeout or fetch_error ScrapeErrors so
// callers can decide retryability. Implementations must be safe for
// concurrent use and released with Close at the end of a run.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
	Close() error
}

// StaticFetcher serves canned HTML keyed by URL. It lets the crawling
// logic be exercised in tests without launching a real browser.
type StaticFetcher struct {
	Pages map[string]string // URL -> HTML
	Delay time.Duration     // optional simulated fetch latency

	mu       sync.Mutex
	fetchLog []string
}

// Fetch returns the canned page or a fetch_error for unknown URLs.
func (s *StaticFetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, scrapeerrors.NewFetchTimeout(url, ctx.Err())
		}
	}

	s.mu.Lock()
	s.fetchLog = append(s.fetchLog, url)
	s.mu.Unlock()

	html, ok := s.Pages[url]
	if !ok {
		return nil, scrapeerrors.NewFetchError(url, nil)
	}

	return &Result{URL: url, FinalURL: url, HTML: html}, nil
}

// Close implements Fetcher.
func (s *StaticFetcher) Close() error {
	return nil
}

// FetchLog returns every URL this fetcher was asked to load, in order.
func (s *StaticFetcher) FetchLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := make([]string, len(s.fetchLog))
	copy(log, s.fetchLog)
	return log
}
