// Package oracle decides whether a descriptor actually works: it installs,
// builds and launches the server the way the descriptor says to, and reports
// pass/fail with the captured output. The validator feeds failures back to
// the fix agent.
package oracle

import (
	"context"
	"os"
	"strings"

	"mcpforge/internal/artifact"
	"mcpforge/internal/manifest"
)

// Result is one oracle verdict.
type Result struct {
	Passed bool
	Output string // combined stdout/stderr of the failing (or passing) step
}

// Oracle tests a descriptor against the cloned repository in repoDir.
type Oracle interface {
	Test(ctx context.Context, m *manifest.Manifest, repoDir string) (*Result, error)
}

// PlaceholderEnv builds test values for the descriptor's config fields. Real
// values from the process environment win; otherwise the placeholder depends
// on the field: numbers get "12345", URL-ish variables get a syntactically
// valid URL, everything else gets "TEST_VALUE".
func PlaceholderEnv(cfg map[string]artifact.ConfigField) map[string]string {
	out := map[string]string{}
	for _, f := range cfg {
		if f.Env == "" {
			continue
		}
		switch {
		case os.Getenv(f.Env) != "":
			out[f.Env] = os.Getenv(f.Env)
		case f.Default != "":
			out[f.Env] = f.Default
		case f.Type == "number" || f.Type == "integer":
			out[f.Env] = "12345"
		case strings.Contains(strings.ToLower(f.Env), "url"):
			out[f.Env] = "https://example.com"
		default:
			out[f.Env] = "TEST_VALUE"
		}
	}
	return out
}
