package runner

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"
)

type cacheMeta struct {
	Inputs    string    `json:"inputs"`
	Salt      string    `json:"salt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type jsonStrategy struct{}

// JSONStrategy caches worker output as <key>.json plus a <key>.meta.json
// holding the input fingerprint and model salt.
func JSONStrategy() CacheStrategy { return jsonStrategy{} }

func (jsonStrategy) TryLoad(ctx context.Context, spec WorkerSpec, env *Env, inputFP string) (any, bool) {
	if env.ForceFrom != "" && normalizeKey(env.ForceFrom) == normalizeKey(spec.Key) {
		return nil, false
	}
	mb, err := env.Store.Get(ctx, env.RunID, spec.Key+".meta.json")
	if err != nil {
		return nil, false
	}
	ob, err := env.Store.Get(ctx, env.RunID, spec.Key+".json")
	if err != nil {
		return nil, false
	}
	var m cacheMeta
	if json.Unmarshal(mb, &m) != nil || m.Inputs != inputFP || m.Salt != env.ModelSalt {
		return nil, false
	}
	var out any
	if json.Unmarshal(ob, &out) != nil {
		return nil, false
	}
	log.Printf("%s: using cache", strings.ToUpper(spec.Key))
	return out, true
}

func (jsonStrategy) Save(ctx context.Context, spec WorkerSpec, env *Env, out any, inputFP string) error {
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := env.Store.Put(ctx, env.RunID, spec.Key+".json", b); err != nil {
		return err
	}
	mb, _ := json.MarshalIndent(cacheMeta{Inputs: inputFP, Salt: env.ModelSalt, CreatedAt: time.Now()}, "", "  ")
	return env.Store.Put(ctx, env.RunID, spec.Key+".meta.json", mb)
}

func (jsonStrategy) Invalidate(ctx context.Context, spec WorkerSpec, env *Env) error {
	// Drop the data file too; presence checks read <key>.json directly.
	if err := env.Store.Delete(ctx, env.RunID, spec.Key+".json"); err != nil {
		return err
	}
	return env.Store.Delete(ctx, env.RunID, spec.Key+".meta.json")
}

type noCacheStrategy struct{}

// NoCacheStrategy always re-runs the worker but still persists its output
// for inspection.
func NoCacheStrategy() CacheStrategy { return noCacheStrategy{} }

func (noCacheStrategy) TryLoad(context.Context, WorkerSpec, *Env, string) (any, bool) {
	return nil, false
}

func (noCacheStrategy) Save(ctx context.Context, spec WorkerSpec, env *Env, out any, _ string) error {
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return env.Store.Put(ctx, env.RunID, spec.Key+".json", b)
}

func (noCacheStrategy) Invalidate(context.Context, WorkerSpec, *Env) error { return nil }
