package scraper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpvcatalog/partscrawler/internal/browser"
	"github.com/fpvcatalog/partscrawler/internal/catalog"
	"github.com/fpvcatalog/partscrawler/internal/classify"
	"github.com/fpvcatalog/partscrawler/internal/logger"
	"github.com/fpvcatalog/partscrawler/internal/vendor"
)

const testOrigin = "https://shop.example.com"

func productPage(name, price, description string) string {
	return `<html><body>
<h1>` + name + `</h1>
<span class="price">` + price + `</span>
<div class="description">` + description + `</div>
</body></html>`
}

// testSite is a small shop: one seed collection with a second page, six
// product pages, two of which are invalid.
func testSite() map[string]string {
	return map[string]string{
		testOrigin + "/collections/motors": `<html><body>
<a href="/products/velox-2207">Velox</a>
<a href="/products/tattu-1300">Tattu</a>
<a href="/products/mach5-frame">Mach 5</a>
<a href="/products/nameless">Mystery</a>
<a href="/collections/motors?page=2">Next</a>
</body></html>`,
		testOrigin + "/collections/motors?page=2": `<html><body>
<a href="/products/runcam-phoenix">RunCam</a>
<a href="/products/gift-card">Gift Card</a>
<a href="/collections/motors">Back</a>
</body></html>`,
		testOrigin + "/products/velox-2207": productPage(
			"Velox V2 2207 Brushless Motor 1750KV", "$24.99",
			"2207 stator, 4mm shaft. Weight: 31g."),
		testOrigin + "/products/tattu-1300": productPage(
			"Tattu R-Line 6S 1300mAh", "€32,50",
			"120C discharge, XT60 connector."),
		testOrigin + "/products/mach5-frame": productPage(
			"Mach 5 Freestyle Frame Kit", "$79.00",
			"Wheelbase: 225mm. Propeller compatibility up to 5.1 inch."),
		testOrigin + "/products/nameless": `<html><body>
<span class="price">$5.00</span>
</body></html>`,
		testOrigin + "/products/runcam-phoenix": productPage(
			"RunCam Phoenix 2", "$19.99",
			"Improved light handling for freestyle pilots."),
		testOrigin + "/products/gift-card": `<html><body>
<h1>Gift Card</h1>
<div class="description">Redeemable online.</div>
</body></html>`,
	}
}

func testProfile(t *testing.T) *vendor.Profile {
	t.Helper()
	p := &vendor.Profile{
		Name:            "rotorgear",
		BaseURL:         testOrigin,
		SeedURLs:        []string{testOrigin + "/collections/motors"},
		ProductPatterns: []string{`/products/`},
		MaxPages:        20,
		MaxDepth:        3,
		RateLimit:       vendor.DurationFrom(time.Millisecond),
		Selectors: vendor.FieldSelectors{
			Name:        "h1",
			Price:       ".price",
			Description: ".description",
		},
	}
	require.NoError(t, p.Validate())
	return p
}

func newTestScraper(t *testing.T, fetcher browser.Fetcher, extra ...Option) *Scraper {
	t.Helper()

	registry, err := vendor.NewRegistry(testProfile(t))
	require.NoError(t, err)

	config := DefaultConfig()
	config.GlobalRate = 1000
	config.GlobalBurst = 1000
	config.BatchDelay = 0
	config.Retry.BackoffStep = time.Millisecond

	opts := append([]Option{
		WithConfig(config),
		WithLogger(logger.Nop()),
		WithRegistry(registry),
		WithFetcher(fetcher),
	}, extra...)

	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// collectorSink records everything it receives.
type collectorSink struct {
	mu       sync.Mutex
	products []ScrapedProduct
	reports  []CrawlReport
}

func (c *collectorSink) WriteProduct(p *ScrapedProduct) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, *p)
	return nil
}

func (c *collectorSink) WriteReport(r *CrawlReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, *r)
	return nil
}

func (c *collectorSink) Close() error { return nil }

func TestCrawlVendor_EndToEnd(t *testing.T) {
	fetcher := &browser.StaticFetcher{Pages: testSite()}
	sink := &collectorSink{}
	s := newTestScraper(t, fetcher, WithSink(sink))

	report, err := s.CrawlVendor(context.Background(), "rotorgear", 0)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, StateCompleted, report.State)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "rotorgear", report.Vendor)

	// 2 collection pages + 6 product pages.
	assert.Equal(t, 8, report.Stats.PagesFetched)
	assert.Equal(t, 2, report.Stats.CollectionFetches)
	assert.Equal(t, 4, report.Stats.ProductsEmitted)
	assert.Equal(t, 2, report.Stats.ProductsDiscarded)
	assert.Len(t, report.Products, 4)

	byName := make(map[string]ScrapedProduct)
	for _, p := range report.Products {
		byName[p.Name] = p
		assert.True(t, p.Category.Valid(), "product %q has category %q", p.Name, p.Category)
		assert.NotEmpty(t, p.Method)
		assert.Equal(t, "rotorgear", p.Vendor)
	}

	motor := byName["Velox V2 2207 Brushless Motor 1750KV"]
	assert.Equal(t, catalog.Motor, motor.Category)
	assert.Equal(t, "1750", motor.Specifications["kv"])
	assert.Equal(t, 24.99, motor.Price)

	battery := byName["Tattu R-Line 6S 1300mAh"]
	assert.Equal(t, catalog.Battery, battery.Category)
	assert.Equal(t, 32.50, battery.Price)

	frame := byName["Mach 5 Freestyle Frame Kit"]
	assert.Equal(t, catalog.Frame, frame.Category)
	assert.NotEmpty(t, frame.Warnings, "suppressed prop candidate should surface as a warning")
	assert.Equal(t, "225mm", frame.Specifications["wheelbase"])

	camera := byName["RunCam Phoenix 2"]
	assert.Equal(t, catalog.Camera, camera.Category)

	// Sink saw every emitted product plus the final report.
	assert.Len(t, sink.products, 4)
	require.Len(t, sink.reports, 1)
	assert.Equal(t, report.RunID, sink.reports[0].RunID)
}

func TestCrawlVendor_NoURLFetchedTwice(t *testing.T) {
	fetcher := &browser.StaticFetcher{Pages: testSite()}
	s := newTestScraper(t, fetcher)

	_, err := s.CrawlVendor(context.Background(), "rotorgear", 0)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, url := range fetcher.FetchLog() {
		seen[url]++
	}
	for url, count := range seen {
		assert.Equal(t, 1, count, "URL %q fetched %d times", url, count)
	}
	assert.Len(t, seen, 8)
}

func TestCrawlVendor_BudgetIsHardCutoff(t *testing.T) {
	fetcher := &browser.StaticFetcher{Pages: testSite()}
	s := newTestScraper(t, fetcher)

	report, err := s.CrawlVendor(context.Background(), "rotorgear", 4)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Stats.PagesFetched)
	assert.LessOrEqual(t, len(fetcher.FetchLog()), 4)
	assert.Equal(t, StateCompleted, report.State)
}

func TestCrawlVendor_UnknownVendor(t *testing.T) {
	s := newTestScraper(t, &browser.StaticFetcher{Pages: testSite()})

	_, err := s.CrawlVendor(context.Background(), "ghost", 0)
	require.Error(t, err)
}

func TestCrawlVendor_CancelledContext(t *testing.T) {
	fetcher := &browser.StaticFetcher{Pages: testSite()}
	s := newTestScraper(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := s.CrawlVendor(ctx, "rotorgear", 0)
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, StateFailed, report.State)
}

func TestCrawlVendor_FetchErrorsAreRecorded(t *testing.T) {
	site := testSite()
	delete(site, testOrigin+"/products/velox-2207")

	fetcher := &browser.StaticFetcher{Pages: site}
	s := newTestScraper(t, fetcher)

	report, err := s.CrawlVendor(context.Background(), "rotorgear", 0)
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, report.State)
	assert.Equal(t, 3, report.Stats.ProductsEmitted)
	assert.GreaterOrEqual(t, report.Stats.FetchErrors, 1)
	assert.NotEmpty(t, report.Errors)
	assert.Greater(t, report.Stats.Retries, 0, "fetch errors are retryable and should be retried")
}

func TestClassifyProduct(t *testing.T) {
	s := newTestScraper(t, &browser.StaticFetcher{Pages: map[string]string{}})

	result := s.ClassifyProduct("Tattu R-Line 6S 1300mAh", "", nil)
	require.NotNil(t, result)
	assert.Equal(t, catalog.Battery, result.Category)
	assert.GreaterOrEqual(t, result.Confidence, 95.0)
}

func TestRecordFeedback(t *testing.T) {
	s := newTestScraper(t, &browser.StaticFetcher{Pages: map[string]string{}})

	s.RecordFeedback("Velox 2207", catalog.Motor, catalog.Motor, classify.VerdictCorrect)
	s.RecordFeedback("Mystery", catalog.Motor, catalog.Frame, classify.VerdictIncorrect)

	assert.Len(t, s.Feedback().Entries(), 2)
	assert.InDelta(t, 0.5, s.Feedback().Accuracy(), 0.001)
}

func TestConfig_CollectionBudget(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	tests := []struct {
		budget int
		want   int
	}{
		{100, 10}, // capped at max
		{50, 10},  // 20% = 10
		{20, 4},   // 20% = 4
		{10, 3},   // 20% = 2, raised to min
		{2, 2},    // min exceeds budget, clamped to budget
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, config.collectionBudget(tt.budget), "budget %d", tt.budget)
	}
}

func TestScraper_MetricsPopulated(t *testing.T) {
	fetcher := &browser.StaticFetcher{Pages: testSite()}
	s := newTestScraper(t, fetcher)

	_, err := s.CrawlVendor(context.Background(), "rotorgear", 0)
	require.NoError(t, err)

	snap := s.Metrics().Snapshot()
	assert.Equal(t, int64(8), snap.PagesFetched)
	assert.Equal(t, int64(4), snap.ProductsFound)
	assert.Equal(t, int64(2), snap.ProductsDiscarded)

	stats := s.ClassifierStats()
	assert.Equal(t, int64(4), stats.Total())
}
