package llm

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// WithLogging logs request size, latency and errors. Provide a custom logger
// or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{Client: next, log: logger}
	}
}

type logging struct {
	Client
	log *log.Logger
}

func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	l.log.Printf("LLM request (%s): %d bytes", SectionFrom(ctx), len(prompt)+len(in))
	start := time.Now()
	raw, err := l.Client.GenerateJSON(ctx, prompt, input)
	if err != nil {
		l.log.Printf("LLM error (%s) after %s: %v", SectionFrom(ctx), time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	l.log.Printf("LLM response (%s): %d bytes in %s", SectionFrom(ctx), len(raw), time.Since(start).Round(time.Millisecond))
	return raw, nil
}
