// Package errors provides error types and retry handling for the parts crawler.
package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// FetchTimeout represents a page load that did not settle in time.
	FetchTimeout
	// FetchError represents a failed page load (network, DNS, connection).
	FetchError
	// Parse represents a selector or document parsing failure.
	Parse
	// InvalidProduct represents an extracted item that failed validation
	// (empty name or non-positive price). Items with this error are dropped
	// silently, never surfaced to the caller.
	InvalidProduct
	// Browser represents a rendering-context failure (launch, CDP).
	Browser
	// Scope represents a URL rejected by vendor scope rules.
	Scope
	// Vendor represents a misconfigured vendor profile. Aborts only that
	// vendor's crawl.
	Vendor
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case FetchTimeout:
		return "fetch_timeout"
	case FetchError:
		return "fetch_error"
	case Parse:
		return "parse"
	case InvalidProduct:
		return "invalid_product"
	case Browser:
		return "browser"
	case Scope:
		return "scope"
	case Vendor:
		return "vendor"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsRetryable returns whether errors of this type should be retried.
func (t ErrorType) IsRetryable() bool {
	switch t {
	case FetchTimeout, FetchError, Browser:
		return true
	default:
		return false
	}
}

// ScrapeError represents a categorized crawl or extraction error.
type ScrapeError struct {
	Type      ErrorType
	URL       string
	Vendor    string
	Operation string
	Message   string
	Cause     error
	Retryable bool
}

// Error implements the error interface.
func (e *ScrapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s on %s: %s (caused by: %v)",
			e.Type.String(), e.Operation, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error during %s on %s: %s",
		e.Type.String(), e.Operation, e.URL, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScrapeError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *ScrapeError) Is(target error) bool {
	t, ok := target.(*ScrapeError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a new ScrapeError.
func New(errType ErrorType, url, operation, message string, cause error) *ScrapeError {
	return &ScrapeError{
		Type:      errType,
		URL:       url,
		Operation: operation,
		Message:   message,
		Cause:     cause,
		Retryable: errType.IsRetryable(),
	}
}

// NewFetchTimeout creates a fetch timeout error.
func NewFetchTimeout(url string, cause error) *ScrapeError {
	return New(FetchTimeout, url, "fetch", "page load timed out", cause)
}

// NewFetchError creates a fetch error.
func NewFetchError(url string, cause error) *ScrapeError {
	return New(FetchError, url, "fetch", "page load failed", cause)
}

// NewParseError creates a parse error.
func NewParseError(url, operation string, cause error) *ScrapeError {
	err := New(Parse, url, operation, "parsing failed", cause)
	err.Retryable = false
	return err
}

// NewInvalidProduct creates an invalid-product error.
func NewInvalidProduct(url, reason string) *ScrapeError {
	err := New(InvalidProduct, url, "extract", reason, nil)
	err.Retryable = false
	return err
}

// NewBrowserError creates a browser error.
func NewBrowserError(url, operation string, cause error) *ScrapeError {
	return New(Browser, url, operation, "browser operation failed", cause)
}

// NewScopeError creates a scope error.
func NewScopeError(url, reason string) *ScrapeError {
	err := New(Scope, url, "scope_check", reason, nil)
	err.Retryable = false
	return err
}

// NewVendorError creates a vendor configuration error.
func NewVendorError(vendor, message string, cause error) *ScrapeError {
	err := New(Vendor, "", "configure", message, cause)
	err.Vendor = vendor
	err.Retryable = false
	return err
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(url, operation string) *ScrapeError {
	err := New(Cancelled, url, operation, "operation cancelled", nil)
	err.Retryable = false
	return err
}

// Categorize determines the error type from a generic error.
func Categorize(err error, url string) *ScrapeError {
	if err == nil {
		return nil
	}

	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr
	}

	if strings.Contains(err.Error(), "context canceled") {
		return NewCancelledError(url, "fetch")
	}

	if isTimeout(err) {
		return NewFetchTimeout(url, err)
	}

	if isNetworkError(err) {
		return NewFetchError(url, err)
	}

	return New(Unknown, url, "fetch", err.Error(), err)
}

// isTimeout checks if an error is a timeout.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context deadline")
}

// isNetworkError checks if an error is network-related.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp")
}

// IsRetryable checks if an error should be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr.Retryable
	}

	return isTimeout(err) || isNetworkError(err)
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr.Type
	}
	return Unknown
}
