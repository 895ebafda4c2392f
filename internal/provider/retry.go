package provider

import (
	"context"
	"time"
)

// retrying wraps a ReasoningService with a fixed number of retry attempts
// and linear backoff. Retries stop early when the context is done.
type retrying struct {
	inner    ReasoningService
	attempts int
	backoff  time.Duration
}

// WithRetry wraps svc so that failed calls are retried up to attempts
// times in total. attempts <= 1 returns svc unchanged.
func WithRetry(svc ReasoningService, attempts int) ReasoningService {
	if attempts <= 1 {
		return svc
	}
	return &retrying{inner: svc, attempts: attempts, backoff: time.Second}
}

func (r *retrying) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}
		completion, err := r.inner.Complete(ctx, req)
		if err == nil {
			return completion, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
