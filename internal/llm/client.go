package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Client is the provider-facing LLM interface. Implementations focus on the
// API call itself; cross-cutting concerns (retries, rate limiting, logging)
// are applied via Middleware.
type Client interface {
	Name() string
	Close() error
	CountTokens(text string) int
	TokenCapacity() int
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}

// Middleware wraps a Client with additional behavior.
type Middleware func(Client) Client

// Chain applies middlewares so the first listed is the outermost layer.
func Chain(base Client, mws ...Middleware) Client {
	out := base
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// TrimToBudget cuts text down until c.CountTokens fits within budget tokens.
// The cut is proportional and re-measured, so any monotonic counter works.
func TrimToBudget(c Client, text string, budget int) string {
	if c == nil || budget <= 0 {
		return text
	}
	n := c.CountTokens(text)
	if n <= budget {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && c.CountTokens(string(runes)) > budget {
		keep := len(runes) * budget / n
		if keep >= len(runes) {
			keep = len(runes) - 1
		}
		runes = runes[:keep]
		n = c.CountTokens(string(runes))
	}
	return string(runes)
}

// CountTokens provides a rough token count for text, used to trim oversized
// analysis payloads before prompting. Counts whitespace-delimited words with
// a character-based fallback.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	words := strings.Fields(text)
	if len(words) > 0 {
		return len(words)
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
