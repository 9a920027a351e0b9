// Package store persists emitted products in a local bbolt journal so a
// downstream importer can pick them up after the run.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fpvcatalog/partscrawler/pkg/scraper"
)

var (
	bucketProducts = []byte("products")
	bucketReports  = []byte("reports")
)

// Journal is a bbolt-backed scraper.Sink. Products are keyed by
// vendor/url so re-running a vendor overwrites stale entries instead of
// duplicating them.
type Journal struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketProducts); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketReports)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal buckets: %w", err)
	}

	return &Journal{db: db, path: path}, nil
}

// WriteProduct appends one product to the journal.
func (j *Journal) WriteProduct(product *scraper.ScrapedProduct) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProducts).Put([]byte(product.Vendor+"/"+product.URL), data)
	})
}

// WriteReport stores the run report keyed by run ID.
func (j *Journal) WriteReport(report *scraper.CrawlReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReports).Put([]byte(report.RunID), data)
	})
}

// Products returns every journaled product for a vendor, in key order.
func (j *Journal) Products(vendorName string) ([]scraper.ScrapedProduct, error) {
	prefix := []byte(vendorName + "/")
	var products []scraper.ScrapedProduct

	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketProducts).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var p scraper.ScrapedProduct
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshal product %s: %w", k, err)
			}
			products = append(products, p)
		}
		return nil
	})
	return products, err
}

// Report returns a stored run report, or nil when the run is unknown.
func (j *Journal) Report(runID string) (*scraper.CrawlReport, error) {
	var report *scraper.CrawlReport

	err := j.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketReports).Get([]byte(runID))
		if data == nil {
			return nil
		}
		report = &scraper.CrawlReport{}
		return json.Unmarshal(data, report)
	})
	return report, err
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}
