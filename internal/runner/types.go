// Package runner executes section workers. A worker declares what it needs
// (upstream section keys), how to build its input, and how its output is
// cached; the runner resolves dependencies, reuses cached outputs when the
// input fingerprint matches, and fans independent workers out in parallel.
package runner

import (
	"context"

	"mcpforge/internal/artifact"
	"mcpforge/internal/llm"
	"mcpforge/internal/scan"
)

// Env is the shared environment passed to builders and workers.
type Env struct {
	Repo     string
	Branch   string
	RepoRoot string
	RunID    string

	Analysis *scan.Analysis
	Store    artifact.Store
	Resolver Resolver

	LLM llm.Client

	// ModelSalt invalidates cached outputs when the model changes.
	ModelSalt string
	// ForceFrom re-runs the named worker and invalidates its downstream.
	ForceFrom string
	DepsUsage DepsUsageMode
}

// WorkerSpec declares what a section worker needs, not how the app calls it.
type WorkerSpec struct {
	Key         string // e.g. "metadata"
	Description string

	BuildInput  func(ctx context.Context, deps Deps) (any, error)
	Run         func(ctx context.Context, in any, env *Env) (any, error)
	Fingerprint func(in any, env *Env) string
	Requires    []string
	Downstream  []string // computed by the registry
	Strategy    CacheStrategy
}

// CacheStrategy abstracts artifact persistence policies.
type CacheStrategy interface {
	// TryLoad returns (out, true) on a cache hit.
	TryLoad(ctx context.Context, spec WorkerSpec, env *Env, inputFP string) (any, bool)
	// Save persists the result and its metadata.
	Save(ctx context.Context, spec WorkerSpec, env *Env, out any, inputFP string) error
	// Invalidate removes outputs for this worker.
	Invalidate(ctx context.Context, spec WorkerSpec, env *Env) error
}

// Resolver looks up worker specs by key.
type Resolver interface {
	Get(key string) (WorkerSpec, bool)
}
