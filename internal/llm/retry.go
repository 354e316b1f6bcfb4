package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type retryClient struct {
	Client
	maxAttempts int
	baseDelay   time.Duration
}

// Retry wraps a client with exponential-backoff retries. Errors wrapped in
// PermanentError are returned immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return func(next Client) Client {
		return &retryClient{Client: next, maxAttempts: maxAttempts, baseDelay: baseDelay}
	}
}

func (r *retryClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var lastErr error
	delay := r.baseDelay
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		out, err := r.Client.GenerateJSON(ctx, prompt, input)
		if err == nil {
			return out, nil
		}
		var perm *PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		lastErr = err
	}
	return nil, lastErr
}
