// Package scraper provides the drone-parts catalog scraper: it crawls a
// vendor's shop, extracts product fields, and classifies every product
// into one of the six part categories.
package scraper

import (
	"time"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// ScrapedProduct is one fully processed product page.
type ScrapedProduct struct {
	URL         string `json:"url"`
	Vendor      string `json:"vendor"`
	Name        string `json:"name"`
	Price       float64 `json:"price"`
	Brand       string `json:"brand,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	InStock     bool   `json:"in_stock"`

	Category       catalog.Category  `json:"category"`
	Confidence     float64           `json:"confidence"`
	Method         string            `json:"classification_method"`
	Reasoning      []string          `json:"reasoning,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`

	ScrapedAt time.Time `json:"scraped_at"`
}

// RunState tracks where a crawl run is in its lifecycle.
type RunState string

const (
	StateIdle        RunState = "idle"
	StateSeeding     RunState = "seeding_collection_pages"
	StateDiscovering RunState = "discovering_product_links"
	StateBatching    RunState = "batch_fetching_products"
	StateCompleted   RunState = "completed"
	StateFailed      RunState = "failed"
)

// CrawlStats summarizes one run's activity.
type CrawlStats struct {
	PagesFetched      int           `json:"pages_fetched"`
	PagesDiscovered   int           `json:"pages_discovered"`
	CollectionFetches int           `json:"collection_fetches"`
	ProductsEmitted   int           `json:"products_emitted"`
	ProductsDiscarded int           `json:"products_discarded"`
	FetchErrors       int           `json:"fetch_errors"`
	Retries           int           `json:"retries"`
	Duration          time.Duration `json:"duration"`
}

// ReportError is one fetch failure recorded in the report.
type ReportError struct {
	URL       string    `json:"url"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// CrawlReport is the complete result of one vendor crawl.
type CrawlReport struct {
	RunID       string           `json:"run_id"`
	Vendor      string           `json:"vendor"`
	State       RunState         `json:"state"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at,omitempty"`
	Stats       CrawlStats       `json:"stats"`
	Products    []ScrapedProduct `json:"products"`
	Errors      []ReportError    `json:"errors,omitempty"`
}

// Sink receives products as they are emitted and the report at the end of
// a run. Implementations live in internal/output (JSON) and
// internal/store (bbolt journal).
type Sink interface {
	WriteProduct(product *ScrapedProduct) error
	WriteReport(report *CrawlReport) error
	Close() error
}
