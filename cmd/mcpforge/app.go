package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mcpforge/internal/artifact"
	"mcpforge/internal/catalog"
	"mcpforge/internal/clone"
	"mcpforge/internal/config"
	"mcpforge/internal/llm"
	"mcpforge/internal/manifest"
	"mcpforge/internal/oracle"
	"mcpforge/internal/runner"
	"mcpforge/internal/scan"
	"mcpforge/internal/validator"
)

// newLLMClient wires the provider with logging, retry and rate limiting.
func newLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	var base llm.Client
	var err error
	switch cfg.Provider {
	case "fake":
		base = llm.NewFakeClient()
	case "groq":
		base, err = llm.NewGroqClient(cfg.APIKey, cfg.Model, 0)
	case "gemini":
		base, err = llm.NewGeminiClient(ctx, cfg.Model, 0)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	mws := []llm.Middleware{
		llm.WithLogging(nil),
		llm.Retry(3, cfg.RetryBase),
	}
	if cfg.LLMRPS > 0 {
		mws = append(mws, llm.RateLimit(cfg.LLMRPS, cfg.LLMBurst))
	}
	return llm.Chain(base, mws...), nil
}

// newArtifactStore prefers the S3 store when ARTIFACT_S3_ENDPOINT is set.
func newArtifactStore(cfg config.Config) (artifact.Store, error) {
	if os.Getenv("ARTIFACT_S3_ENDPOINT") != "" {
		return artifact.NewS3Store(artifact.S3ConfigFromEnv())
	}
	return artifact.NewDiskStore(filepath.Join(cfg.WorkDir, "runs"))
}

func newOracle(spec string) (oracle.Oracle, error) {
	switch {
	case spec == "" || spec == "exec":
		return oracle.NewExecOracle(), nil
	case spec == "none":
		return nil, nil
	case strings.HasPrefix(spec, "script:"):
		return &oracle.ScriptOracle{Command: strings.TrimPrefix(spec, "script:")}, nil
	default:
		return nil, fmt.Errorf("unknown oracle %q (want exec, none or script:<command>)", spec)
	}
}

// generateOne runs the full pipeline for a single repository and returns the
// final descriptor plus the validation outcome (nil when testing is skipped).
func generateOne(ctx context.Context, cfg config.Config, cli llm.Client, store artifact.Store, ora oracle.Oracle, name, repoURL, branch, forceFrom string) (*manifest.Manifest, *validator.Outcome, error) {
	if name == "" {
		name = repoSlug(repoURL)
	}
	cloneDir := filepath.Join(cfg.WorkDir, "clones", name)
	_ = clone.Remove(cloneDir)
	res, err := clone.Clone(ctx, cloneDir, clone.Options{URL: repoURL, Branch: branch, Depth: 1})
	if err != nil {
		return nil, nil, err
	}

	analysis, err := scan.Analyze(res.Dir)
	if err != nil {
		return nil, nil, err
	}

	reg := runner.NewRegistry()
	env := &runner.Env{
		Repo:      repoURL,
		Branch:    res.Branch,
		RepoRoot:  res.Dir,
		RunID:     name,
		Analysis:  analysis,
		Store:     store,
		Resolver:  reg,
		LLM:       cli,
		ModelSalt: cfg.Provider + ":" + cfg.Model,
		ForceFrom: forceFrom,
	}
	if err := runner.RunAll(ctx, reg, env, cfg.Parallel); err != nil {
		return nil, nil, err
	}

	raw, err := store.Get(ctx, name, "manifest.yaml")
	if err != nil {
		return nil, nil, err
	}
	m, err := manifest.DecodeYAML(raw)
	if err != nil {
		return nil, nil, err
	}
	if ora == nil {
		return m, nil, nil
	}

	loop := &validator.Loop{
		LLM:           cli,
		Oracle:        ora,
		Store:         store,
		RunID:         name,
		MaxIterations: cfg.MaxIter,
		Analysis:      analysis.Format(),
	}
	out, err := loop.Validate(ctx, m, res.Dir)
	if err != nil {
		return nil, nil, err
	}
	return out.Manifest, out, nil
}

func writeDescriptor(outDir string, m *manifest.Manifest) (string, error) {
	raw, err := manifest.EncodeYAML(m)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, m.Name+".yaml")
	return path, os.WriteFile(path, raw, 0o644)
}

func saveToCatalog(cfg config.Config, m *manifest.Manifest, out *validator.Outcome) {
	store := catalog.NewFromEnv(cfg.Catalog)
	defer store.Close()
	raw, err := manifest.EncodeYAML(m)
	if err != nil {
		return
	}
	entry := catalog.Entry{Name: m.Name, Repository: m.Repository, Manifest: string(raw)}
	if out != nil {
		entry.Passed = out.Passed
		entry.Iterations = out.Iterations
	}
	if err := store.Put(entry); err != nil {
		log.Printf("catalog: save %s: %v", m.Name, err)
	}
}

func repoSlug(repoURL string) string {
	s := strings.TrimSuffix(repoURL, ".git")
	s = strings.TrimSuffix(s, "/")
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.ToLower(s)
}
