package runner

import (
	"context"
	"fmt"
	"log"
)

// ExecuteWorker resolves requirements, applies caching, runs the worker and
// invalidates downstream caches when forced.
func ExecuteWorker(ctx context.Context, spec WorkerSpec, env *Env) error {
	_, err := ExecuteWorkerWithResult(ctx, spec, env)
	return err
}

// ExecuteWorkerWithResult is ExecuteWorker returning the worker's output.
func ExecuteWorkerWithResult(ctx context.Context, spec WorkerSpec, env *Env) (any, error) {
	if len(spec.Requires) > 0 {
		visiting := make(map[string]bool)
		for _, r := range spec.Requires {
			if err := ensureArtifact(ctx, r, env, visiting); err != nil {
				return nil, err
			}
		}
	}

	deps := newDeps(env, spec.Key, spec.Requires)
	in, err := spec.BuildInput(ctx, deps)
	if err != nil {
		return nil, err
	}

	if unused := deps.verifyUsage(); len(unused) > 0 {
		switch env.DepsUsage {
		case DepsUsageIgnore:
		case DepsUsageWarn:
			log.Printf("WARNING: worker %s declared but did not use: %v", spec.Key, unused)
		default:
			return nil, fmt.Errorf("worker %s declared but did not use: %v", spec.Key, unused)
		}
	}

	fp := spec.Fingerprint(in, env)
	if out, ok := spec.Strategy.TryLoad(ctx, spec, env, fp); ok {
		return out, nil
	}

	out, err := spec.Run(ctx, in, env)
	if err != nil {
		return nil, err
	}
	if err := spec.Strategy.Save(ctx, spec, env, out, fp); err != nil {
		return nil, err
	}

	if env.ForceFrom != "" && normalizeKey(env.ForceFrom) == normalizeKey(spec.Key) && env.Resolver != nil {
		for _, d := range spec.Downstream {
			if ds, ok := env.Resolver.Get(d); ok {
				_ = ds.Strategy.Invalidate(ctx, ds, env)
			}
		}
	}
	return out, nil
}

// ensureArtifact makes sure a required worker's output exists, recursively
// building missing prerequisites. visiting guards against spec cycles.
func ensureArtifact(ctx context.Context, key string, env *Env, visiting map[string]bool) error {
	if env == nil || env.Resolver == nil {
		return fmt.Errorf("runner: resolver is not configured")
	}
	norm := normalizeKey(key)
	if norm == "" {
		return fmt.Errorf("runner: empty required worker key")
	}
	if _, err := env.Store.Get(ctx, env.RunID, norm+".json"); err == nil {
		return nil
	}
	spec, ok := env.Resolver.Get(norm)
	if !ok {
		return fmt.Errorf("runner: unknown required worker %s", key)
	}
	if visiting[norm] {
		return fmt.Errorf("runner: cyclic worker dependency detected at %s", spec.Key)
	}
	visiting[norm] = true
	defer delete(visiting, norm)
	for _, r := range spec.Requires {
		if err := ensureArtifact(ctx, r, env, visiting); err != nil {
			return err
		}
	}
	if err := ExecuteWorker(ctx, spec, env); err != nil {
		return fmt.Errorf("build required worker %s: %w", spec.Key, err)
	}
	return nil
}
