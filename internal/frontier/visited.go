package frontier

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// VisitedSet tracks normalized URLs seen during one crawl run. A Bloom
// filter answers the common "never seen" case without touching the exact
// map; the map resolves the filter's false positives. Append-only for the
// duration of a run, reset by constructing a fresh set.
//
// Not safe for concurrent use on its own; the Frontier serializes access.
type VisitedSet struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewVisitedSet creates a visited set sized for the estimated URL count.
func NewVisitedSet(estimatedItems int) *VisitedSet {
	if estimatedItems < 1000 {
		estimatedItems = 1000
	}

	return &VisitedSet{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add records a URL as visited.
func (v *VisitedSet) Add(url string) {
	if _, exists := v.exact[url]; exists {
		return
	}
	v.filter.AddString(url)
	v.exact[url] = struct{}{}
}

// Contains checks whether a URL has been visited.
func (v *VisitedSet) Contains(url string) bool {
	if !v.filter.TestString(url) {
		return false
	}
	_, exists := v.exact[url]
	return exists
}

// Count returns the number of distinct visited URLs.
func (v *VisitedSet) Count() int {
	return len(v.exact)
}

// All returns the visited URLs in arbitrary order.
func (v *VisitedSet) All() []string {
	urls := make([]string, 0, len(v.exact))
	for url := range v.exact {
		urls = append(urls, url)
	}
	return urls
}
