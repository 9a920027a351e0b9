// Package metrics collects run counters for the parts crawler.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates counters for one or more crawl runs. All methods
// are safe for concurrent use.
type Collector struct {
	pagesFetched      atomic.Int64
	pagesDiscovered   atomic.Int64
	productsFound     atomic.Int64
	productsDiscarded atomic.Int64
	fetchErrors       atomic.Int64
	retriesTotal      atomic.Int64

	// Classification breakdown by cascade stage.
	classifiedByBrand    atomic.Int64
	classifiedByPattern  atomic.Int64
	classifiedByKeyword  atomic.Int64
	classifiedBySemantic atomic.Int64
	classifiedByFallback atomic.Int64
	classifyCacheHits    atomic.Int64

	// Fetch time tracking
	fetchTimeSum atomic.Int64 // milliseconds
	fetchTimeNum atomic.Int64

	// Gauges
	frontierDepth atomic.Int64

	// Error breakdown by category
	errorMu     sync.RWMutex
	errorCounts map[string]*atomic.Int64

	startTime time.Time
}

// New creates a collector.
func New() *Collector {
	return &Collector{
		errorCounts: make(map[string]*atomic.Int64),
		startTime:   time.Now(),
	}
}

// RecordPageFetched increments the fetched-page counter and folds the
// fetch duration into the running average.
func (c *Collector) RecordPageFetched(d time.Duration) {
	c.pagesFetched.Add(1)
	c.fetchTimeSum.Add(d.Milliseconds())
	c.fetchTimeNum.Add(1)
}

// RecordPagesDiscovered adds newly discovered links.
func (c *Collector) RecordPagesDiscovered(n int) {
	c.pagesDiscovered.Add(int64(n))
}

// RecordProductFound increments the emitted-product counter.
func (c *Collector) RecordProductFound() {
	c.productsFound.Add(1)
}

// RecordProductDiscarded increments the discarded-product counter.
func (c *Collector) RecordProductDiscarded() {
	c.productsDiscarded.Add(1)
}

// RecordFetchError records a failed fetch with its error category.
func (c *Collector) RecordFetchError(errorType string) {
	c.fetchErrors.Add(1)

	c.errorMu.Lock()
	if c.errorCounts[errorType] == nil {
		c.errorCounts[errorType] = &atomic.Int64{}
	}
	c.errorCounts[errorType].Add(1)
	c.errorMu.Unlock()
}

// RecordRetry records a retry attempt.
func (c *Collector) RecordRetry() {
	c.retriesTotal.Add(1)
}

// RecordClassification increments the counter for the cascade stage that
// produced a result.
func (c *Collector) RecordClassification(method string) {
	switch method {
	case "brand":
		c.classifiedByBrand.Add(1)
	case "pattern":
		c.classifiedByPattern.Add(1)
	case "keyword":
		c.classifiedByKeyword.Add(1)
	case "semantic":
		c.classifiedBySemantic.Add(1)
	case "fallback":
		c.classifiedByFallback.Add(1)
	}
}

// RecordClassifyCacheHit increments the classification cache hit counter.
func (c *Collector) RecordClassifyCacheHit() {
	c.classifyCacheHits.Add(1)
}

// SetFrontierDepth sets the current frontier depth gauge.
func (c *Collector) SetFrontierDepth(depth int64) {
	c.frontierDepth.Store(depth)
}

// AverageFetchTime returns the mean page fetch duration.
func (c *Collector) AverageFetchTime() time.Duration {
	num := c.fetchTimeNum.Load()
	if num == 0 {
		return 0
	}
	return time.Duration(c.fetchTimeSum.Load()/num) * time.Millisecond
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Timestamp         time.Time        `json:"timestamp"`
	Uptime            time.Duration    `json:"uptime"`
	PagesFetched      int64            `json:"pages_fetched"`
	PagesDiscovered   int64            `json:"pages_discovered"`
	ProductsFound     int64            `json:"products_found"`
	ProductsDiscarded int64            `json:"products_discarded"`
	FetchErrors       int64            `json:"fetch_errors"`
	RetriesTotal      int64            `json:"retries_total"`
	FrontierDepth     int64            `json:"frontier_depth"`
	AverageFetchTime  time.Duration    `json:"average_fetch_time"`
	Classified        map[string]int64 `json:"classified"`
	ErrorCounts       map[string]int64 `json:"error_counts"`
}

// Snapshot returns a copy of all counters.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		Timestamp:         time.Now(),
		Uptime:            time.Since(c.startTime),
		PagesFetched:      c.pagesFetched.Load(),
		PagesDiscovered:   c.pagesDiscovered.Load(),
		ProductsFound:     c.productsFound.Load(),
		ProductsDiscarded: c.productsDiscarded.Load(),
		FetchErrors:       c.fetchErrors.Load(),
		RetriesTotal:      c.retriesTotal.Load(),
		FrontierDepth:     c.frontierDepth.Load(),
		AverageFetchTime:  c.AverageFetchTime(),
		Classified: map[string]int64{
			"brand":    c.classifiedByBrand.Load(),
			"pattern":  c.classifiedByPattern.Load(),
			"keyword":  c.classifiedByKeyword.Load(),
			"semantic": c.classifiedBySemantic.Load(),
			"fallback": c.classifiedByFallback.Load(),
			"cache":    c.classifyCacheHits.Load(),
		},
		ErrorCounts: make(map[string]int64),
	}

	c.errorMu.RLock()
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v.Load()
	}
	c.errorMu.RUnlock()

	return s
}

// ErrorRate returns fetch errors over fetched pages.
func (s *Snapshot) ErrorRate() float64 {
	total := s.PagesFetched + s.FetchErrors
	if total == 0 {
		return 0
	}
	return float64(s.FetchErrors) / float64(total)
}

// Summary returns a compact map for logging at run end.
func (s *Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"uptime":             s.Uptime.String(),
		"pages_fetched":      s.PagesFetched,
		"pages_discovered":   s.PagesDiscovered,
		"products_found":     s.ProductsFound,
		"products_discarded": s.ProductsDiscarded,
		"fetch_errors":       s.FetchErrors,
		"error_rate":         s.ErrorRate(),
		"retries":            s.RetriesTotal,
		"avg_fetch_time_ms":  s.AverageFetchTime.Milliseconds(),
	}
}
