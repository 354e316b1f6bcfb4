package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DepsUsageMode controls how strictly declared dependency usage is enforced.
type DepsUsageMode int

const (
	DepsUsageError  DepsUsageMode = iota // unused Requires are errors
	DepsUsageWarn                        // log a warning instead
	DepsUsageIgnore                      // skip the check
)

// Deps controls access to upstream outputs during BuildInput. Requests for
// artifacts not declared in Requires fail, and usage is tracked so unused
// declarations surface.
type Deps interface {
	// Artifact loads a required worker's output into target.
	Artifact(ctx context.Context, key string, target any) error
	Repo() string
	Env() *Env
}

type depsImpl struct {
	env      *Env
	requires map[string]bool
	accessed map[string]bool
	key      string
}

func newDeps(env *Env, key string, requires []string) *depsImpl {
	reqMap := make(map[string]bool, len(requires))
	for _, r := range requires {
		reqMap[normalizeKey(r)] = true
	}
	return &depsImpl{
		env:      env,
		requires: reqMap,
		accessed: make(map[string]bool),
		key:      key,
	}
}

func (d *depsImpl) Artifact(ctx context.Context, key string, target any) error {
	norm := normalizeKey(key)
	if !d.requires[norm] {
		return fmt.Errorf("worker %q requested artifact %q not declared in Requires", d.key, key)
	}
	d.accessed[norm] = true

	raw, err := d.env.Store.Get(ctx, d.env.RunID, norm+".json")
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", norm, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode artifact %s: %w", norm, err)
	}
	return nil
}

func (d *depsImpl) Repo() string { return d.env.Repo }
func (d *depsImpl) Env() *Env    { return d.env }

// verifyUsage reports declared-but-unused requirements.
func (d *depsImpl) verifyUsage() []string {
	var unused []string
	for req := range d.requires {
		if !d.accessed[req] {
			unused = append(unused, req)
		}
	}
	sort.Strings(unused)
	return unused
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
