package llm

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitHeaders holds normalized provider rate-limit signals. For Groq the
// request fields are per day and the token fields per minute.
type RateLimitHeaders struct {
	RetryAfterSeconds int
	LimitRequests     int
	LimitTokens       int
	RemainingRequests int
	RemainingTokens   int
	ResetRequests     time.Duration
	ResetTokens       time.Duration
}

// parseRateLimitHeaders reads the retry-after and x-ratelimit-* response
// headers. found is false when none were present.
func parseRateLimitHeaders(h http.Header) (out RateLimitHeaders, found bool) {
	readInt := func(key string, dst *int) {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return
		}
		*dst = n
		found = true
	}
	readDur := func(key string, dst *time.Duration) {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return
		}
		*dst = d
		found = true
	}

	readInt("retry-after", &out.RetryAfterSeconds)
	readInt("x-ratelimit-limit-requests", &out.LimitRequests)
	readInt("x-ratelimit-limit-tokens", &out.LimitTokens)
	readInt("x-ratelimit-remaining-requests", &out.RemainingRequests)
	readInt("x-ratelimit-remaining-tokens", &out.RemainingTokens)
	readDur("x-ratelimit-reset-requests", &out.ResetRequests)
	readDur("x-ratelimit-reset-tokens", &out.ResetTokens)
	return out, found
}
