package llm

import (
	"context"
	"encoding/json"
	"time"
)

// bucket throttles to at most rps requests per second, with a burst of
// pre-filled tokens. A nil bucket never blocks.
type bucket struct {
	tokens  chan struct{}
	done    chan struct{}
	refill  *time.Ticker
	stopped bool
}

func newBucket(rps float64, burst int) *bucket {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	period := time.Duration(float64(time.Second) / rps)
	if period < time.Millisecond {
		period = time.Millisecond
	}
	b := &bucket{
		tokens: make(chan struct{}, burst),
		done:   make(chan struct{}),
		refill: time.NewTicker(period),
	}
	for len(b.tokens) < burst {
		b.tokens <- struct{}{}
	}
	go b.run()
	return b
}

func (b *bucket) run() {
	for {
		select {
		case <-b.refill.C:
			select {
			case b.tokens <- struct{}{}:
			default:
			}
		case <-b.done:
			b.refill.Stop()
			return
		}
	}
}

func (b *bucket) acquire(ctx context.Context) error {
	if b == nil {
		return nil
	}
	select {
	case <-b.tokens:
		return nil
	case <-b.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *bucket) stop() {
	if b == nil || b.stopped {
		return
	}
	b.stopped = true
	close(b.done)
}

type rateLimitedClient struct {
	Client
	limiter *bucket
}

// RateLimit throttles GenerateJSON calls to rps requests per second with the
// given burst capacity. With rps <= 0 the middleware is a no-op.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		return &rateLimitedClient{Client: next, limiter: newBucket(rps, burst)}
	}
}

func (r *rateLimitedClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := r.limiter.acquire(ctx); err != nil {
		return nil, err
	}
	return r.Client.GenerateJSON(ctx, prompt, input)
}

func (r *rateLimitedClient) Close() error {
	r.limiter.stop()
	return r.Client.Close()
}
