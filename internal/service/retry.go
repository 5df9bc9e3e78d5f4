package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/observability"
)

const (
	retryMaxAttempts = 3
	retryBaseDelay   = 100 * time.Millisecond
)

// withRetry runs fn, retrying with exponential backoff (base 100ms, 3
// attempts, jitter) only when fn fails with a domain.KindTransport error.
// Any other error kind is returned immediately without a retry.
func withRetry(ctx context.Context, operation string, fn func() error) error {
	var err error
	for attempt := 0; attempt < retryMaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if domain.AsKind(err) != domain.KindTransport {
			return err
		}
		if attempt == retryMaxAttempts-1 {
			break
		}
		observability.RepositoryRetries.WithLabelValues(operation).Inc()

		delay := retryBaseDelay * time.Duration(1<<attempt)
		jitter := time.Duration(rand.Int63n(int64(delay)))
		select {
		case <-time.After(delay + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return domain.NewError(domain.KindTransport, "repository operation failed after retries", err)
}
