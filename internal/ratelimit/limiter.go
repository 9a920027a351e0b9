// Package ratelimit paces requests so vendor shops never see bursts.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter combines a global token bucket with per-vendor minimum delays.
// The global limit protects the machine running the crawl; the per-vendor
// delay honors each shop's configured politeness interval.
type Limiter struct {
	mu          sync.Mutex
	global      *rate.Limiter
	vendorDelay map[string]time.Duration
	lastRequest map[string]time.Time
}

// New creates a limiter with the given global requests-per-second cap.
func New(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		global:      rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		vendorDelay: make(map[string]time.Duration),
		lastRequest: make(map[string]time.Time),
	}
}

// SetVendorDelay sets the minimum interval between requests to a vendor.
func (l *Limiter) SetVendorDelay(vendor string, delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vendorDelay[vendor] = delay
}

// Wait blocks until a request to the vendor is allowed or the context is
// cancelled. The global bucket is consulted first, then the vendor's
// politeness interval.
func (l *Limiter) Wait(ctx context.Context, vendor string) error {
	if err := l.global.Wait(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	delay := l.vendorDelay[vendor]
	last, seen := l.lastRequest[vendor]
	l.mu.Unlock()

	if delay > 0 && seen {
		if remaining := delay - time.Since(last); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	l.mu.Lock()
	l.lastRequest[vendor] = time.Now()
	l.mu.Unlock()
	return nil
}

// Allow reports whether a request would be admitted right now, without
// blocking or consuming the vendor interval.
func (l *Limiter) Allow(vendor string) bool {
	if !l.global.Allow() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	delay := l.vendorDelay[vendor]
	last, seen := l.lastRequest[vendor]
	if delay > 0 && seen && time.Since(last) < delay {
		return false
	}
	return true
}

// SetGlobalRate updates the global cap.
func (l *Limiter) SetGlobalRate(requestsPerSecond float64, burst int) {
	l.global.SetLimit(rate.Limit(requestsPerSecond))
	l.global.SetBurst(burst)
}

// Stats describes the limiter's configuration.
type Stats struct {
	VendorCount int     `json:"vendor_count"`
	GlobalRate  float64 `json:"global_rate"`
}

// Stats returns a snapshot of the limiter state.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		VendorCount: len(l.vendorDelay),
		GlobalRate:  float64(l.global.Limit()),
	}
}
