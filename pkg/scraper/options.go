package scraper

import (
	"time"

	"github.com/fpvcatalog/partscrawler/internal/browser"
	"github.com/fpvcatalog/partscrawler/internal/classify"
	"github.com/fpvcatalog/partscrawler/internal/logger"
	"github.com/fpvcatalog/partscrawler/internal/metrics"
	"github.com/fpvcatalog/partscrawler/internal/vendor"
)

// Option is a functional option for configuring the Scraper.
type Option func(*Scraper) error

// WithConfig replaces the entire configuration.
func WithConfig(config Config) Option {
	return func(s *Scraper) error {
		s.config = config
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Scraper) error {
		s.log = log
		return nil
	}
}

// WithRegistry sets the vendor profile registry.
func WithRegistry(registry *vendor.Registry) Option {
	return func(s *Scraper) error {
		s.registry = registry
		return nil
	}
}

// WithFetcher injects a page fetcher, replacing the default headless
// browser. Tests use this with a static fetcher.
func WithFetcher(fetcher browser.Fetcher) Option {
	return func(s *Scraper) error {
		s.fetcher = fetcher
		s.ownsFetcher = false
		return nil
	}
}

// WithSink adds an output sink for emitted products and reports.
func WithSink(sink Sink) Option {
	return func(s *Scraper) error {
		s.sinks = append(s.sinks, sink)
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Scraper) error {
		s.collector = collector
		return nil
	}
}

// WithClassifyConfig overrides the classification cascade tuning.
func WithClassifyConfig(config classify.Config) Option {
	return func(s *Scraper) error {
		s.config.Classify = config
		return nil
	}
}

// WithoutCache disables the classification result cache.
func WithoutCache() Option {
	return func(s *Scraper) error {
		s.config.DisableCache = true
		return nil
	}
}

// WithBatchSize sets the product batch size.
func WithBatchSize(n int) Option {
	return func(s *Scraper) error {
		if n < 1 {
			n = 1
		}
		s.config.BatchSize = n
		return nil
	}
}

// WithBatchDelay sets the pause between product batches.
func WithBatchDelay(d time.Duration) Option {
	return func(s *Scraper) error {
		s.config.BatchDelay = d
		return nil
	}
}

// WithGlobalRate sets the global request rate cap.
func WithGlobalRate(rps float64, burst int) Option {
	return func(s *Scraper) error {
		s.config.GlobalRate = rps
		s.config.GlobalBurst = burst
		return nil
	}
}

// WithHeadless toggles headless browser mode.
func WithHeadless(headless bool) Option {
	return func(s *Scraper) error {
		s.config.Browser.Headless = headless
		return nil
	}
}
