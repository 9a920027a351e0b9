package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fpvcatalog/partscrawler/internal/browser"
	"github.com/fpvcatalog/partscrawler/internal/catalog"
	"github.com/fpvcatalog/partscrawler/internal/classify"
	"github.com/fpvcatalog/partscrawler/internal/errors"
	"github.com/fpvcatalog/partscrawler/internal/extract"
	"github.com/fpvcatalog/partscrawler/internal/frontier"
	"github.com/fpvcatalog/partscrawler/internal/logger"
	"github.com/fpvcatalog/partscrawler/internal/metrics"
	"github.com/fpvcatalog/partscrawler/internal/ratelimit"
	"github.com/fpvcatalog/partscrawler/internal/vendor"
)

// Scraper crawls vendor catalogs and classifies the products it finds.
// One Scraper can run crawls for several vendors; each CrawlVendor call is
// an independent run with its own frontier and report.
type Scraper struct {
	config      Config
	log         *logger.Logger
	registry    *vendor.Registry
	fetcher     browser.Fetcher
	ownsFetcher bool
	engine      *classify.Engine
	cache       *classify.Cache
	feedback    *classify.FeedbackRecorder
	limiter     *ratelimit.Limiter
	retrier     *errors.Retrier
	collector   *metrics.Collector
	sinks       []Sink

	closeOnce sync.Once
	closeErr  error
}

// New creates a Scraper.
func New(opts ...Option) (*Scraper, error) {
	s := &Scraper{
		config:      DefaultConfig(),
		log:         logger.NewDefault(),
		ownsFetcher: true,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	if s.registry == nil {
		registry, err := vendor.NewRegistry(vendor.Defaults()...)
		if err != nil {
			return nil, err
		}
		s.registry = registry
	}
	if s.collector == nil {
		s.collector = metrics.New()
	}

	engineOpts := []classify.Option{
		classify.WithLogger(s.log.WithComponent("classify")),
	}
	if !s.config.DisableCache {
		s.cache = classify.NewCache(s.config.Cache)
		engineOpts = append(engineOpts, classify.WithCache(s.cache))
	}
	s.engine = classify.New(s.config.Classify, engineOpts...)

	s.feedback = classify.NewFeedbackRecorder()
	s.limiter = ratelimit.New(s.config.GlobalRate, s.config.GlobalBurst)
	s.retrier = errors.NewRetrier(s.config.Retry)

	return s, nil
}

// run carries the mutable state of one CrawlVendor call.
type run struct {
	profile    *vendor.Profile
	frontier   *frontier.Frontier
	report     *CrawlReport
	log        *logger.Logger
	pageBudget int
	fetches    int

	mu sync.Mutex // guards report mutation from batch goroutines
}

// CrawlVendor runs a complete crawl for one vendor. maxPages overrides the
// profile's page budget when positive. The returned report is populated
// even when the run fails partway; the error is non-nil only for failures
// that prevented the run from producing anything meaningful.
func (s *Scraper) CrawlVendor(ctx context.Context, vendorName string, maxPages int) (*CrawlReport, error) {
	profile, ok := s.registry.Get(vendorName)
	if !ok {
		return nil, errors.NewVendorError(vendorName, fmt.Sprintf("unknown vendor %q", vendorName), nil)
	}

	pageBudget := profile.MaxPages
	if maxPages > 0 {
		pageBudget = maxPages
	}

	r := &run{
		profile:    profile,
		frontier:   frontier.New(profile),
		pageBudget: pageBudget,
		report: &CrawlReport{
			RunID:     uuid.NewString(),
			Vendor:    profile.Name,
			State:     StateIdle,
			StartedAt: time.Now(),
		},
	}
	r.log = s.log.WithVendor(profile.Name).WithRun(r.report.RunID)

	s.limiter.SetVendorDelay(profile.Name, profile.RateLimit.Duration)

	if err := s.ensureFetcher(); err != nil {
		r.report.State = StateFailed
		return r.report, err
	}

	r.log.Infof("Starting crawl: budget %d pages, depth %d", pageBudget, profile.MaxDepth)

	r.report.State = StateSeeding
	if seeded := r.frontier.Seed(profile.SeedURLs); seeded == 0 {
		r.report.State = StateFailed
		return r.report, errors.NewVendorError(profile.Name, "no seed URL was accepted by the frontier", nil)
	}

	products := s.collectionPhase(ctx, r)
	s.productPhase(ctx, r, products)

	if r.report.State != StateFailed {
		r.report.State = StateCompleted
	}
	r.report.CompletedAt = time.Now()
	r.report.Stats.Duration = r.report.CompletedAt.Sub(r.report.StartedAt)
	r.report.Stats.PagesFetched = r.fetches

	s.writeReport(r)

	r.log.Event(logger.InfoLevel).
		Str("state", string(r.report.State)).
		Int("pages_fetched", r.report.Stats.PagesFetched).
		Int("products", r.report.Stats.ProductsEmitted).
		Int("discarded", r.report.Stats.ProductsDiscarded).
		Dur("duration", r.report.Stats.Duration).
		Msg("Crawl finished")

	if ctx.Err() != nil {
		return r.report, errors.NewCancelledError(profile.BaseURL, "crawl_vendor")
	}
	return r.report, nil
}

// collectionPhase fetches collection pages sequentially, discovering
// product links. It stops at the collection budget, an empty frontier, or
// cancellation, and returns the product items found so far together with
// whatever product items remain queued.
func (s *Scraper) collectionPhase(ctx context.Context, r *run) []frontier.Item {
	r.report.State = StateDiscovering

	budget := s.config.collectionBudget(r.pageBudget)
	var products []frontier.Item
	collectionFetches := 0

	for collectionFetches < budget && r.fetches < r.pageBudget {
		if ctx.Err() != nil {
			r.report.State = StateFailed
			return products
		}

		item, ok := r.frontier.Next()
		if !ok {
			break
		}
		if item.IsProduct {
			products = append(products, item)
			continue
		}

		result, err := s.fetchPage(ctx, r, item.URL, "fetch_collection")
		r.fetches++
		collectionFetches++
		if err != nil {
			continue
		}

		doc, err := result.Document()
		if err != nil {
			s.recordError(r, item.URL, err)
			continue
		}

		links := extract.DiscoverLinks(doc, r.profile)
		offered := 0
		for _, link := range links {
			if r.frontier.Offer(link.URL, item.Depth+1) {
				offered++
			}
		}
		r.report.Stats.PagesDiscovered += offered
		s.collector.RecordPagesDiscovered(offered)
		s.collector.SetFrontierDepth(int64(r.frontier.Len()))

		r.log.Event(logger.DebugLevel).
			Str("url", item.URL).
			Int("links", len(links)).
			Int("accepted", offered).
			Msg("Collection page processed")
	}
	r.report.Stats.CollectionFetches = collectionFetches

	// Drain the frontier: after the collection phase only product pages
	// are fetched. Remaining collection pages are dropped.
	for {
		item, ok := r.frontier.Next()
		if !ok {
			break
		}
		if item.IsProduct {
			products = append(products, item)
		} else {
			r.log.WithURL(item.URL).Debug("Dropping collection page beyond phase budget")
		}
	}

	return products
}

// productPhase fetches product pages in fixed-size concurrent batches. The
// page budget is a hard cutoff: a batch never starts a fetch beyond it,
// but in-flight fetches run to completion.
func (s *Scraper) productPhase(ctx context.Context, r *run, items []frontier.Item) {
	if r.report.State == StateFailed {
		return
	}
	r.report.State = StateBatching

	for start := 0; start < len(items); {
		if ctx.Err() != nil {
			r.report.State = StateFailed
			return
		}

		remaining := r.pageBudget - r.fetches
		if remaining <= 0 {
			r.log.Infof("Page budget reached with %d product links unfetched", len(items)-start)
			return
		}

		size := s.config.BatchSize
		if size > remaining {
			size = remaining
		}
		if size > len(items)-start {
			size = len(items) - start
		}

		batch := items[start : start+size]
		start += size
		r.fetches += size

		var wg sync.WaitGroup
		for _, item := range batch {
			wg.Add(1)
			go func(item frontier.Item) {
				defer wg.Done()
				s.processProduct(ctx, r, item)
			}(item)
		}
		wg.Wait()

		if start < len(items) && r.fetches < r.pageBudget && s.config.BatchDelay > 0 {
			select {
			case <-time.After(s.config.BatchDelay):
			case <-ctx.Done():
			}
		}
	}
}

// processProduct fetches one product page, extracts its fields, classifies
// it, and emits it. Products without a name or a positive price are
// silently dropped.
func (s *Scraper) processProduct(ctx context.Context, r *run, item frontier.Item) {
	result, err := s.fetchPage(ctx, r, item.URL, "fetch_product")
	if err != nil {
		return
	}

	doc, err := result.Document()
	if err != nil {
		s.recordError(r, item.URL, err)
		return
	}

	pageURL := result.FinalURL
	if pageURL == "" {
		pageURL = item.URL
	}
	fields := extract.ExtractFields(doc, r.profile, pageURL)

	if fields.Name == "" || fields.Price <= 0 {
		r.log.DiscardEvent(item.URL, discardReason(fields))
		r.mu.Lock()
		r.report.Stats.ProductsDiscarded++
		r.mu.Unlock()
		s.collector.RecordProductDiscarded()
		return
	}

	classification := s.engine.Classify(fields.Name, fields.Description, &classify.Context{
		URL:          item.URL,
		Vendor:       r.profile.Name,
		CategoryHint: catalog.Category(r.profile.CategoryHint(item.URL)),
	})

	product := ScrapedProduct{
		URL:            item.URL,
		Vendor:         r.profile.Name,
		Name:           fields.Name,
		Price:          fields.Price,
		Brand:          fields.Brand,
		SKU:            fields.SKU,
		Description:    fields.Description,
		ImageURL:       fields.ImageURL,
		InStock:        fields.InStock,
		Category:       classification.Category,
		Confidence:     classification.Confidence,
		Method:         string(classification.Method),
		Reasoning:      classification.Reasoning,
		Warnings:       classification.Warnings,
		Specifications: extract.MineSpecs(classification.Category, fields.Name, fields.Description),
		ScrapedAt:      time.Now(),
	}

	if classification.Cached {
		s.collector.RecordClassifyCacheHit()
	} else {
		s.collector.RecordClassification(string(classification.Method))
	}
	s.collector.RecordProductFound()

	r.mu.Lock()
	r.report.Products = append(r.report.Products, product)
	r.report.Stats.ProductsEmitted++
	r.mu.Unlock()

	for _, sink := range s.sinks {
		if err := sink.WriteProduct(&product); err != nil {
			r.log.WithError(err).WithURL(item.URL).Warn("Sink rejected product")
		}
	}
}

// fetchPage runs one rate-limited, retried fetch and updates the fetch
// accounting shared by both phases.
func (s *Scraper) fetchPage(ctx context.Context, r *run, url, operation string) (*browser.Result, error) {
	if err := s.limiter.Wait(ctx, r.profile.Name); err != nil {
		s.recordError(r, url, errors.NewCancelledError(url, operation))
		return nil, err
	}

	result, retryResult := errors.DoWithResult(ctx, s.retrier, operation, url,
		func(ctx context.Context) (*browser.Result, error) {
			return s.fetcher.Fetch(ctx, url)
		})

	if retries := retryResult.Attempts - 1; retries > 0 {
		r.mu.Lock()
		r.report.Stats.Retries += retries
		r.mu.Unlock()
		for i := 0; i < retries; i++ {
			s.collector.RecordRetry()
		}
	}

	if !retryResult.Success {
		s.recordError(r, url, retryResult.LastError)
		return nil, retryResult.LastError
	}

	s.collector.RecordPageFetched(result.Duration)
	r.log.FetchEvent(url, 0, result.Duration)
	return result, nil
}

func (s *Scraper) recordError(r *run, url string, err error) {
	if err == nil {
		return
	}
	s.collector.RecordFetchError(errors.GetErrorType(err).String())
	r.mu.Lock()
	r.report.Stats.FetchErrors++
	r.report.Errors = append(r.report.Errors, ReportError{
		URL:       url,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
	r.mu.Unlock()
}

func discardReason(fields extract.Fields) string {
	if fields.Name == "" {
		return "missing name"
	}
	return "missing or non-positive price"
}

// ensureFetcher lazily launches the headless browser on first use, so a
// Scraper used only for classification never starts one.
func (s *Scraper) ensureFetcher() error {
	if s.fetcher != nil {
		return nil
	}
	fetcher, err := browser.NewRodFetcher(s.config.Browser)
	if err != nil {
		return err
	}
	s.fetcher = fetcher
	s.ownsFetcher = true
	return nil
}

// writeReport hands the finished report to every sink.
func (s *Scraper) writeReport(r *run) {
	for _, sink := range s.sinks {
		if err := sink.WriteReport(r.report); err != nil {
			r.log.WithError(err).Warn("Sink rejected report")
		}
	}
}

// ClassifyProduct classifies a single product without crawling. ctx may be
// nil.
func (s *Scraper) ClassifyProduct(name, description string, ctx *classify.Context) *classify.Result {
	return s.engine.Classify(name, description, ctx)
}

// RecordFeedback records an external reviewer's verdict on a
// classification.
func (s *Scraper) RecordFeedback(name string, predicted, actual catalog.Category, verdict classify.Verdict) {
	s.feedback.RecordFeedback(name, predicted, actual, verdict)
}

// Feedback returns the feedback recorder.
func (s *Scraper) Feedback() *classify.FeedbackRecorder {
	return s.feedback
}

// Metrics returns the metrics collector.
func (s *Scraper) Metrics() *metrics.Collector {
	return s.collector
}

// ClassifierStats returns the cascade's per-stage acceptance counters.
func (s *Scraper) ClassifierStats() classify.Stats {
	return s.engine.Stats()
}

// Registry returns the vendor profile registry.
func (s *Scraper) Registry() *vendor.Registry {
	return s.registry
}

// Close releases the browser, the cache sweeper, and all sinks.
// Idempotent.
func (s *Scraper) Close() error {
	s.closeOnce.Do(func() {
		if s.cache != nil {
			s.cache.Close()
		}
		if s.ownsFetcher && s.fetcher != nil {
			if err := s.fetcher.Close(); err != nil {
				s.closeErr = err
			}
		}
		for _, sink := range s.sinks {
			if err := sink.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}
