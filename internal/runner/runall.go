package runner

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent LLM-backed workers in one run.
const DefaultParallelism = 4

// RunAll executes every registered worker in dependency order. Workers whose
// requirements are satisfied run concurrently, bounded by parallelism.
func RunAll(ctx context.Context, reg *Registry, env *Env, parallelism int) error {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	waves, err := levelize(reg)
	if err != nil {
		return err
	}
	for _, wave := range waves {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)
		for _, key := range wave {
			spec, _ := reg.Get(key)
			g.Go(func() error {
				if err := ExecuteWorker(gctx, spec, env); err != nil {
					return fmt.Errorf("worker %s: %w", spec.Key, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// levelize groups workers into waves where each wave depends only on earlier
// ones. Reports a cycle when no progress is possible.
func levelize(reg *Registry) ([][]string, error) {
	done := make(map[string]bool)
	remaining := make(map[string][]string)
	for _, key := range reg.Keys() {
		spec, _ := reg.Get(key)
		reqs := make([]string, 0, len(spec.Requires))
		for _, r := range spec.Requires {
			reqs = append(reqs, normalizeKey(r))
		}
		remaining[key] = reqs
	}

	var waves [][]string
	for len(remaining) > 0 {
		var wave []string
		for key, reqs := range remaining {
			ready := true
			for _, r := range reqs {
				if !done[r] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, key)
			}
		}
		if len(wave) == 0 {
			keys := make([]string, 0, len(remaining))
			for k := range remaining {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("runner: dependency cycle among workers %v", keys)
		}
		sort.Strings(wave)
		for _, key := range wave {
			done[key] = true
			delete(remaining, key)
		}
		waves = append(waves, wave)
	}
	return waves, nil
}
