package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mcpforge/internal/tester"
)

// flakyClient fails a fixed number of times, then succeeds.
type flakyClient struct {
	failures int
	calls    int
}

func (f *flakyClient) Name() string                { return "flaky" }
func (f *flakyClient) Close() error                { return nil }
func (f *flakyClient) CountTokens(text string) int { return CountTokens(text) }
func (f *flakyClient) TokenCapacity() int          { return 1024 }
func (f *flakyClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient")
	}
	return json.RawMessage(`{}`), nil
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	base := &flakyClient{failures: 2}
	cli := Chain(base, Retry(3, time.Millisecond))

	raw, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, raw, json.RawMessage(`{}`))
	tester.Eq(t, base.calls, 3)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	base := &flakyClient{failures: 10}
	cli := Chain(base, Retry(2, time.Millisecond))

	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.True(t, err != nil)
	tester.Eq(t, base.calls, 2)
}

// permClient always fails with a permanent error.
type permClient struct{ calls int }

func (p *permClient) Name() string                { return "perm" }
func (p *permClient) Close() error                { return nil }
func (p *permClient) CountTokens(text string) int { return CountTokens(text) }
func (p *permClient) TokenCapacity() int          { return 1024 }
func (p *permClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	p.calls++
	return nil, NewPermanentError(errors.New("context_length_exceeded"))
}

func TestRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	base := &permClient{}
	cli := Chain(base, Retry(5, time.Millisecond))

	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.True(t, err != nil)
	tester.Eq(t, base.calls, 1)
}

func TestFakeClient_RoutesBySection(t *testing.T) {
	fake := NewFakeClient()
	fake.Set("metadata", json.RawMessage(`{"name":"x"}`))

	ctx := WithSection(context.Background(), "metadata")
	raw, err := fake.GenerateJSON(ctx, "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, raw, json.RawMessage(`{"name":"x"}`))
	tester.Eq(t, fake.Calls, []string{"metadata"})
}

func TestFakeClient_DefaultsPerSection(t *testing.T) {
	fake := NewFakeClient()
	ctx := WithSection(context.Background(), "entrypoint")
	raw, err := fake.GenerateJSON(ctx, "p", nil)
	tester.NoErr(t, err)
	var out struct {
		Command string   `json:"command"`
		Args    []string `json:"args"`
	}
	tester.NoErr(t, json.Unmarshal(raw, &out))
	tester.Eq(t, out.Command, "node")
}

func TestRateLimit_SpacesRequests(t *testing.T) {
	base := &flakyClient{}
	cli := Chain(base, RateLimit(10, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := cli.GenerateJSON(ctx, "p", nil)
		tester.NoErr(t, err)
	}
	// burst=1 at 10 rps: two refills needed, >=~200ms total.
	tester.True(t, time.Since(start) >= 150*time.Millisecond)
}
