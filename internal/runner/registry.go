package runner

import (
	"context"
	"fmt"
	"sort"

	"mcpforge/internal/artifact"
	"mcpforge/internal/llm"
	"mcpforge/internal/manifest"
	"mcpforge/internal/pipeline"
)

// Registry holds the section worker specs and computes downstream edges.
type Registry struct {
	specs map[string]WorkerSpec
}

func (r *Registry) Get(key string) (WorkerSpec, bool) {
	s, ok := r.specs[normalizeKey(key)]
	return s, ok
}

// Keys returns all registered worker keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.specs))
	for k := range r.specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) register(spec WorkerSpec) {
	r.specs[normalizeKey(spec.Key)] = spec
}

func (r *Registry) computeDownstream() {
	for key, spec := range r.specs {
		for _, req := range spec.Requires {
			up, ok := r.specs[normalizeKey(req)]
			if !ok {
				continue
			}
			up.Downstream = append(up.Downstream, key)
			r.specs[normalizeKey(req)] = up
		}
	}
	for key, spec := range r.specs {
		sort.Strings(spec.Downstream)
		r.specs[key] = spec
	}
}

func analysisInput(env *Env) (repo, analysis string) {
	repo = env.Repo
	if env.Analysis != nil {
		analysis = env.Analysis.Format()
	}
	// Large repositories produce summaries beyond the model's window; keep
	// a quarter of the capacity free for the prompt and the reply.
	if env.LLM != nil && env.LLM.TokenCapacity() > 0 {
		analysis = llm.TrimToBudget(env.LLM, analysis, env.LLM.TokenCapacity()*3/4)
	}
	return repo, analysis
}

// NewRegistry wires the section workers. Metadata, source and config are
// independent; build depends on source, entrypoint on config+source+build,
// env on config+entrypoint, assemble on everything.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]WorkerSpec)}

	r.register(WorkerSpec{
		Key:         "metadata",
		Description: "name, description and discovery metadata",
		BuildInput: func(ctx context.Context, deps Deps) (any, error) {
			repo, analysis := analysisInput(deps.Env())
			return artifact.MetadataIn{Repo: repo, Branch: deps.Env().Branch, Analysis: analysis}, nil
		},
		Run: func(ctx context.Context, in any, env *Env) (any, error) {
			return (&pipeline.Metadata{LLM: env.LLM}).Run(ctx, in.(artifact.MetadataIn))
		},
		Fingerprint: func(in any, env *Env) string { return FingerprintJSON(in, env.ModelSalt) },
		Strategy:    JSONStrategy(),
	})

	r.register(WorkerSpec{
		Key:         "source",
		Description: "language, package manager and install command",
		BuildInput: func(ctx context.Context, deps Deps) (any, error) {
			repo, analysis := analysisInput(deps.Env())
			return artifact.SourceIn{Repo: repo, Analysis: analysis}, nil
		},
		Run: func(ctx context.Context, in any, env *Env) (any, error) {
			return (&pipeline.Source{LLM: env.LLM}).Run(ctx, in.(artifact.SourceIn))
		},
		Fingerprint: func(in any, env *Env) string { return FingerprintJSON(in, env.ModelSalt) },
		Strategy:    JSONStrategy(),
	})

	r.register(WorkerSpec{
		Key:         "build",
		Description: "build command and output location",
		Requires:    []string{"source"},
		BuildInput: func(ctx context.Context, deps Deps) (any, error) {
			var src artifact.SourceOut
			if err := deps.Artifact(ctx, "source", &src); err != nil {
				return nil, err
			}
			repo, analysis := analysisInput(deps.Env())
			return artifact.BuildIn{Repo: repo, Analysis: analysis, Source: &src}, nil
		},
		Run: func(ctx context.Context, in any, env *Env) (any, error) {
			return (&pipeline.Build{LLM: env.LLM}).Run(ctx, in.(artifact.BuildIn))
		},
		Fingerprint: func(in any, env *Env) string { return FingerprintJSON(in, env.ModelSalt) },
		Strategy:    JSONStrategy(),
	})

	r.register(WorkerSpec{
		Key:         "config",
		Description: "user-facing configuration fields",
		BuildInput: func(ctx context.Context, deps Deps) (any, error) {
			repo, analysis := analysisInput(deps.Env())
			return artifact.ConfigIn{Repo: repo, Analysis: analysis}, nil
		},
		Run: func(ctx context.Context, in any, env *Env) (any, error) {
			return (&pipeline.ConfigSection{LLM: env.LLM}).Run(ctx, in.(artifact.ConfigIn))
		},
		Fingerprint: func(in any, env *Env) string { return FingerprintJSON(in, env.ModelSalt) },
		Strategy:    JSONStrategy(),
	})

	r.register(WorkerSpec{
		Key:         "entrypoint",
		Description: "launch command for the built server",
		Requires:    []string{"config", "source", "build"},
		BuildInput: func(ctx context.Context, deps Deps) (any, error) {
			var cfg artifact.ConfigOut
			if err := deps.Artifact(ctx, "config", &cfg); err != nil {
				return nil, err
			}
			var src artifact.SourceOut
			if err := deps.Artifact(ctx, "source", &src); err != nil {
				return nil, err
			}
			var bld artifact.BuildOut
			if err := deps.Artifact(ctx, "build", &bld); err != nil {
				return nil, err
			}
			repo, analysis := analysisInput(deps.Env())
			return artifact.EntrypointIn{
				Repo:     repo,
				Analysis: analysis,
				Config:   cfg.Config,
				Source:   &src,
				Build:    &bld,
			}, nil
		},
		Run: func(ctx context.Context, in any, env *Env) (any, error) {
			return (&pipeline.Entrypoint{LLM: env.LLM}).Run(ctx, in.(artifact.EntrypointIn))
		},
		Fingerprint: func(in any, env *Env) string { return FingerprintJSON(in, env.ModelSalt) },
		Strategy:    JSONStrategy(),
	})

	r.register(WorkerSpec{
		Key:         "env",
		Description: "fixed runtime environment variables",
		Requires:    []string{"config", "entrypoint"},
		BuildInput: func(ctx context.Context, deps Deps) (any, error) {
			var cfg artifact.ConfigOut
			if err := deps.Artifact(ctx, "config", &cfg); err != nil {
				return nil, err
			}
			var ep artifact.EntrypointOut
			if err := deps.Artifact(ctx, "entrypoint", &ep); err != nil {
				return nil, err
			}
			repo, analysis := analysisInput(deps.Env())
			return artifact.EnvIn{
				Repo:       repo,
				Analysis:   analysis,
				Config:     cfg.Config,
				Entrypoint: &ep,
			}, nil
		},
		Run: func(ctx context.Context, in any, env *Env) (any, error) {
			return (&pipeline.Env{LLM: env.LLM}).Run(ctx, in.(artifact.EnvIn))
		},
		Fingerprint: func(in any, env *Env) string { return FingerprintJSON(in, env.ModelSalt) },
		Strategy:    JSONStrategy(),
	})

	r.register(WorkerSpec{
		Key:         "assemble",
		Description: "merge section outputs into the descriptor",
		Requires:    []string{"metadata", "source", "build", "config", "entrypoint", "env"},
		BuildInput: func(ctx context.Context, deps Deps) (any, error) {
			s := manifest.Sections{Repo: deps.Env().Repo, Branch: deps.Env().Branch}
			if err := deps.Artifact(ctx, "metadata", &s.Metadata); err != nil {
				return nil, err
			}
			if err := deps.Artifact(ctx, "source", &s.Source); err != nil {
				return nil, err
			}
			if err := deps.Artifact(ctx, "build", &s.Build); err != nil {
				return nil, err
			}
			if err := deps.Artifact(ctx, "config", &s.Config); err != nil {
				return nil, err
			}
			if err := deps.Artifact(ctx, "entrypoint", &s.Entrypoint); err != nil {
				return nil, err
			}
			if err := deps.Artifact(ctx, "env", &s.Env); err != nil {
				return nil, err
			}
			if s.Source.ProjectDir != "" && s.Source.ProjectDir != "." {
				s.Path = s.Source.ProjectDir
			}
			return s, nil
		},
		Run: func(ctx context.Context, in any, env *Env) (any, error) {
			m, err := manifest.Assemble(in.(manifest.Sections))
			if err != nil {
				return nil, err
			}
			raw, err := manifest.EncodeYAML(m)
			if err != nil {
				return nil, err
			}
			if err := env.Store.Put(ctx, env.RunID, "manifest.yaml", raw); err != nil {
				return nil, fmt.Errorf("persist descriptor: %w", err)
			}
			return m, nil
		},
		Fingerprint: func(in any, env *Env) string { return FingerprintJSON(in, env.ModelSalt) },
		Strategy:    NoCacheStrategy(),
	})

	r.computeDownstream()
	return r
}
