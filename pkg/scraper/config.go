package scraper

import (
	"fmt"
	"time"

	"github.com/fpvcatalog/partscrawler/internal/browser"
	"github.com/fpvcatalog/partscrawler/internal/classify"
	"github.com/fpvcatalog/partscrawler/internal/errors"
)

// Config holds scraper configuration.
type Config struct {
	// Browser configures the rendered-page fetcher.
	Browser browser.Config

	// Global request rate across all vendors.
	GlobalRate  float64
	GlobalBurst int

	// BatchSize is how many product pages are fetched concurrently.
	BatchSize int

	// BatchDelay is the pause between product batches.
	BatchDelay time.Duration

	// Collection-phase bounds: the number of collection pages fetched is
	// CollectionFraction of the page budget, clamped to
	// [CollectionMin, CollectionMax].
	CollectionMin      int
	CollectionMax      int
	CollectionFraction float64

	// Retry drives fetch retries.
	Retry errors.RetryConfig

	// Classify tunes the classification cascade.
	Classify classify.Config

	// Cache tunes the classification result cache. DisableCache turns
	// memoization off entirely.
	Cache        classify.CacheConfig
	DisableCache bool
}

// DefaultConfig returns the default scraper configuration.
func DefaultConfig() Config {
	return Config{
		Browser:            browser.DefaultConfig(),
		GlobalRate:         2,
		GlobalBurst:        1,
		BatchSize:          3,
		BatchDelay:         time.Second,
		CollectionMin:      3,
		CollectionMax:      10,
		CollectionFraction: 0.2,
		Retry:              errors.DefaultRetryConfig(),
		Classify:           classify.DefaultConfig(),
		Cache:              classify.DefaultCacheConfig(),
	}
}

// Validate checks the configuration and applies defaults for zero values.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		c.BatchSize = 3
	}
	if c.CollectionMin <= 0 {
		c.CollectionMin = 3
	}
	if c.CollectionMax <= 0 {
		c.CollectionMax = 10
	}
	if c.CollectionMin > c.CollectionMax {
		return fmt.Errorf("collection bounds inverted: min %d > max %d", c.CollectionMin, c.CollectionMax)
	}
	if c.CollectionFraction <= 0 || c.CollectionFraction > 1 {
		c.CollectionFraction = 0.2
	}
	if c.GlobalRate <= 0 {
		c.GlobalRate = 2
	}
	if c.GlobalBurst <= 0 {
		c.GlobalBurst = 1
	}
	return nil
}

// collectionBudget computes how many collection pages a run may fetch out
// of the given page budget.
func (c *Config) collectionBudget(pageBudget int) int {
	n := int(float64(pageBudget) * c.CollectionFraction)
	if n < c.CollectionMin {
		n = c.CollectionMin
	}
	if n > c.CollectionMax {
		n = c.CollectionMax
	}
	if n > pageBudget {
		n = pageBudget
	}
	return n
}
