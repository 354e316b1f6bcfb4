package oracle

import (
	"context"
	"sync"

	"mcpforge/internal/manifest"
)

// FakeOracle fails a fixed number of times and then passes. Used to exercise
// the validator loop in tests.
type FakeOracle struct {
	mu        sync.Mutex
	FailTimes int
	Failure   string // output reported on failure
	Calls     int
	Seen      []*manifest.Manifest
}

func (f *FakeOracle) Test(_ context.Context, m *manifest.Manifest, _ string) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Seen = append(f.Seen, m)
	if f.Calls <= f.FailTimes {
		out := f.Failure
		if out == "" {
			out = "simulated failure"
		}
		return &Result{Output: out}, nil
	}
	return &Result{Passed: true}, nil
}
