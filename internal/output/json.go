// Package output writes scraped products and crawl reports as JSON.
package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/fpvcatalog/partscrawler/pkg/scraper"
)

// JSONWriter is the default sink: it streams one JSON line per product
// when streaming is enabled and writes the full report at the end of the
// run.
type JSONWriter struct {
	mu     sync.Mutex
	writer io.Writer
	pretty bool
	stream bool
	closed bool
}

// Config holds JSON writer configuration.
type Config struct {
	Pretty bool
	Stream bool
}

// NewJSONWriter creates a writer targeting w.
func NewJSONWriter(w io.Writer, config Config) *JSONWriter {
	return &JSONWriter{
		writer: w,
		pretty: config.Pretty,
		stream: config.Stream,
	}
}

// WriteProduct writes a single product as one JSON line. A no-op unless
// streaming is enabled.
func (j *JSONWriter) WriteProduct(product *scraper.ScrapedProduct) error {
	if !j.stream {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}

	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	if _, err := j.writer.Write(data); err != nil {
		return err
	}
	_, err = j.writer.Write([]byte("\n"))
	return err
}

// WriteReport writes the complete crawl report.
func (j *JSONWriter) WriteReport(report *scraper.CrawlReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}

	var data []byte
	var err error
	if j.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return err
	}

	if _, err := j.writer.Write(data); err != nil {
		return err
	}
	_, err = j.writer.Write([]byte("\n"))
	return err
}

// Close marks the writer closed. Further writes become no-ops; the
// underlying writer is owned by the caller and is not closed here.
func (j *JSONWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}
