// Package frontier maintains the crawl work queue and visited-URL set.
package frontier

import (
	"container/heap"
	"sync"

	"github.com/fpvcatalog/partscrawler/internal/vendor"
)

// Item is a unit of pending crawl work. Created when a link is discovered
// and consumed exactly once when dequeued.
type Item struct {
	URL       string
	Depth     int
	IsProduct bool

	seq int64
}

// pendingQueue implements heap.Interface. Lower depth pops first
// (breadth-first); within a depth, submission order is preserved.
type pendingQueue []*Item

func (pq pendingQueue) Len() int { return len(pq) }

func (pq pendingQueue) Less(i, j int) bool {
	if pq[i].Depth != pq[j].Depth {
		return pq[i].Depth < pq[j].Depth
	}
	return pq[i].seq < pq[j].seq
}

func (pq pendingQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *pendingQueue) Push(x interface{}) {
	*pq = append(*pq, x.(*Item))
}

func (pq *pendingQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[0 : n-1]
	return item
}

// Frontier holds the pending queue and the visited set for one crawl run.
// All operations are safe for concurrent use; the visited-set check is
// atomic relative to enqueue and dequeue, so concurrent workers can never
// fetch the same URL twice.
type Frontier struct {
	mu      sync.Mutex
	profile *vendor.Profile
	pending pendingQueue
	queued  map[string]struct{}
	visited *VisitedSet
	nextSeq int64
}

// New creates a frontier for one vendor run.
func New(profile *vendor.Profile) *Frontier {
	f := &Frontier{
		profile: profile,
		pending: make(pendingQueue, 0),
		queued:  make(map[string]struct{}),
		visited: NewVisitedSet(profile.MaxPages * 4),
	}
	heap.Init(&f.pending)
	return f
}

// Seed enqueues the given URLs at depth 0.
func (f *Frontier) Seed(urls []string) int {
	accepted := 0
	for _, u := range urls {
		if f.Offer(u, 0) {
			accepted++
		}
	}
	return accepted
}

// Offer normalizes the URL and enqueues it unless it is off-origin,
// excluded, beyond the depth cap, not crawlable, already visited, or
// already queued. Depth is rejected here, at offer time, so the budget is
// never wasted on a fetch that would be discarded afterwards.
func (f *Frontier) Offer(rawURL string, depth int) bool {
	if depth > f.profile.MaxDepth {
		return false
	}

	normalized, err := NormalizeURL(f.profile.Origin(), rawURL)
	if err != nil {
		return false
	}

	if !IsCrawlable(normalized) {
		return false
	}
	if !SameOrigin(f.profile.Origin(), normalized) {
		return false
	}
	if f.profile.IsExcluded(normalized) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited.Contains(normalized) {
		return false
	}
	if _, exists := f.queued[normalized]; exists {
		return false
	}

	f.nextSeq++
	item := &Item{
		URL:       normalized,
		Depth:     depth,
		IsProduct: f.profile.IsProductURL(normalized),
		seq:       f.nextSeq,
	}
	f.queued[normalized] = struct{}{}
	heap.Push(&f.pending, item)
	return true
}

// Next pops the next pending item and marks it visited. Returns false when
// the queue is empty.
func (f *Frontier) Next() (Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return Item{}, false
	}

	item := heap.Pop(&f.pending).(*Item)
	delete(f.queued, item.URL)
	f.visited.Add(item.URL)
	return *item, true
}

// Len returns the number of pending items.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// VisitedCount returns the number of URLs consumed so far this run.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Count()
}

// HasVisited reports whether a normalized URL was already consumed.
func (f *Frontier) HasVisited(normalizedURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Contains(normalizedURL)
}
