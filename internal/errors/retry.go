package errors

import (
	"context"
	"time"
)

// RetryConfig configures retry behavior for page fetches.
type RetryConfig struct {
	MaxRetries     int           // Maximum number of retries (0 = no retries)
	BackoffStep    time.Duration // Backoff grows linearly: attempt * BackoffStep
	RetryableTypes []ErrorType   // Error types that should be retried
}

// DefaultRetryConfig returns the standard fetch retry budget: three
// attempts with linearly increasing backoff (1s, 2s, 3s).
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BackoffStep: time.Second,
		RetryableTypes: []ErrorType{
			FetchTimeout,
			FetchError,
			Browser,
		},
	}
}

// Retrier implements retry logic with linear backoff.
type Retrier struct {
	config RetryConfig
}

// NewRetrier creates a new retrier.
func NewRetrier(config RetryConfig) *Retrier {
	if config.BackoffStep <= 0 {
		config.BackoffStep = time.Second
	}
	return &Retrier{config: config}
}

// NewDefaultRetrier creates a retrier with default configuration.
func NewDefaultRetrier() *Retrier {
	return NewRetrier(DefaultRetryConfig())
}

// RetryFunc is a function that can be retried.
type RetryFunc func(ctx context.Context) error

// RetryResult holds the result of a retry operation.
type RetryResult struct {
	Attempts  int           // Number of attempts made
	LastError error         // The last error encountered
	Duration  time.Duration // Total time spent including backoff
	Success   bool          // Whether the operation succeeded
}

// Do executes the function, retrying on retryable errors. After attempt n
// fails it sleeps n * BackoffStep before trying again.
func (r *Retrier) Do(ctx context.Context, operation, url string, fn RetryFunc) *RetryResult {
	result := &RetryResult{}
	start := time.Now()

	var lastErr error

	for attempt := 1; attempt <= r.config.MaxRetries+1; attempt++ {
		result.Attempts++

		err := fn(ctx)
		if err == nil {
			result.Success = true
			result.Duration = time.Since(start)
			return result
		}

		lastErr = err

		if ctx.Err() != nil {
			result.LastError = NewCancelledError(url, operation)
			result.Duration = time.Since(start)
			return result
		}

		if attempt > r.config.MaxRetries || !r.shouldRetry(err) {
			break
		}

		select {
		case <-ctx.Done():
			result.LastError = NewCancelledError(url, operation)
			result.Duration = time.Since(start)
			return result
		case <-time.After(time.Duration(attempt) * r.config.BackoffStep):
		}
	}

	result.LastError = lastErr
	result.Duration = time.Since(start)
	return result
}

// shouldRetry checks if an error should be retried.
func (r *Retrier) shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	errType := GetErrorType(err)
	for _, t := range r.config.RetryableTypes {
		if errType == t {
			return true
		}
	}

	return IsRetryable(err)
}

// DoWithResult executes a function that returns a value and error.
func DoWithResult[T any](ctx context.Context, r *Retrier, operation, url string, fn func(ctx context.Context) (T, error)) (T, *RetryResult) {
	var result T
	var lastErr error

	retryResult := r.Do(ctx, operation, url, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		lastErr = err
		return err
	})

	if !retryResult.Success {
		retryResult.LastError = lastErr
	}

	return result, retryResult
}
