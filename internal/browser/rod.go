package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	scrapeerrors "github.com/fpvcatalog/partscrawler/internal/errors"
)

// Config defines browser configuration.
type Config struct {
	Headless          bool          `json:"headless" yaml:"headless"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent         string        `json:"user_agent" yaml:"user_agent"`
	ViewportWidth     int           `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    int           `json:"viewport_height" yaml:"viewport_height"`
	IgnoreHTTPSErrors bool          `json:"ignore_https_errors" yaml:"ignore_https_errors"`
	ExtraHeaders      map[string]string `json:"extra_headers" yaml:"extra_headers"`
}

// DefaultConfig returns default browser configuration.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		Timeout:           30 * time.Second,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		IgnoreHTTPSErrors: true,
	}
}

// RodFetcher loads pages in a headless Chrome instance so client-side
// rendered shops produce a complete document. One instance is shared for a
// whole run and must be released with Close on every exit path.
type RodFetcher struct {
	browser *rod.Browser
	config  Config

	mu        sync.Mutex
	pageCount int
	closed    bool
}

// NewRodFetcher launches a browser and connects to it.
func NewRodFetcher(config Config) (*RodFetcher, error) {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	l := launcher.New()
	if config.Headless {
		l = l.Headless(true)
	}
	if config.IgnoreHTTPSErrors {
		l = l.Set("ignore-certificate-errors", "true")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodFetcher{
		browser: b,
		config:  config,
	}, nil
}

// Fetch navigates to the URL, waits for the network and DOM to settle
// within the configured timeout, and returns the rendered document.
func (f *RodFetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, scrapeerrors.NewBrowserError(url, "fetch", fmt.Errorf("browser already closed"))
	}
	f.pageCount++
	f.mu.Unlock()

	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	page, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, scrapeerrors.NewBrowserError(url, "create_page", err)
	}
	defer page.Close()

	page = page.Context(fetchCtx)

	// Viewport and user agent failures are not fatal to the fetch.
	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  f.config.ViewportWidth,
		Height: f.config.ViewportHeight,
	})
	if f.config.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{UserAgent: f.config.UserAgent}.Call(page)
	}
	if len(f.config.ExtraHeaders) > 0 {
		networkHeaders := make(proto.NetworkHeaders)
		for k, v := range f.config.ExtraHeaders {
			networkHeaders[k] = gson.New(v)
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: networkHeaders}.Call(page)
	}

	if err := page.Navigate(url); err != nil {
		return nil, f.categorize(url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, f.categorize(url, err)
	}

	// Give client-side rendering a bounded chance to settle. The wait is
	// best-effort; a busy page still returns whatever has rendered.
	wait := page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	waitDone := make(chan struct{})
	go func() {
		wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-fetchCtx.Done():
	case <-time.After(f.config.Timeout / 3):
	}

	html, err := page.HTML()
	if err != nil {
		return nil, f.categorize(url, err)
	}

	info, err := page.Info()
	finalURL := url
	title := ""
	if err == nil && info != nil {
		finalURL = info.URL
		title = info.Title
	}

	return &Result{
		URL:      url,
		FinalURL: finalURL,
		HTML:     html,
		Title:    title,
		Duration: time.Since(start),
	}, nil
}

// categorize maps rod/context failures onto the fetch error taxonomy.
func (f *RodFetcher) categorize(url string, err error) error {
	if err == nil {
		return nil
	}
	if scrapeerrors.GetErrorType(err) != scrapeerrors.Unknown {
		return err
	}
	categorized := scrapeerrors.Categorize(err, url)
	if categorized.Type == scrapeerrors.Unknown {
		return scrapeerrors.NewFetchError(url, err)
	}
	return categorized
}

// PageCount returns the number of pages fetched by this instance.
func (f *RodFetcher) PageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCount
}

// Close releases the browser. Safe to call more than once.
func (f *RodFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	return f.browser.Close()
}
