package llm

import "context"

type ctxKeySection struct{}

// WithSection tags the context with the descriptor section being generated
// (metadata, source, build, config, entrypoint, env, fix). Used by logging
// middleware and the fake client.
func WithSection(ctx context.Context, section string) context.Context {
	return context.WithValue(ctx, ctxKeySection{}, section)
}

// SectionFrom returns the section string stored in the context.
func SectionFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeySection{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
