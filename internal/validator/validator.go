// Package validator drives the repair loop: test the descriptor, feed
// failures to the fix agent, and retry with the repaired descriptor until it
// passes or the iteration budget runs out. Every candidate is persisted so a
// run can be audited afterwards.
package validator

import (
	"context"
	"fmt"
	"log"

	"mcpforge/internal/artifact"
	"mcpforge/internal/llm"
	"mcpforge/internal/manifest"
	"mcpforge/internal/oracle"
	"mcpforge/internal/pipeline"
)

// DefaultMaxIterations bounds oracle attempts per descriptor.
const DefaultMaxIterations = 5

// Loop ties the fix agent to a test oracle.
type Loop struct {
	LLM           llm.Client
	Oracle        oracle.Oracle
	Store         artifact.Store
	RunID         string
	MaxIterations int
	Analysis      string // formatted repository analysis for the fix prompt
}

// Outcome reports how a validation run ended. Manifest is always the last
// descriptor that parsed and validated, even on failure.
type Outcome struct {
	Manifest   *manifest.Manifest
	Passed     bool
	Iterations int
	LastOutput string // oracle output of the final attempt
}

// Validate tests m against the repository in repoDir, repairing and retrying
// on failure. A fix agent error ends the loop early with the last good
// descriptor.
func (l *Loop) Validate(ctx context.Context, m *manifest.Manifest, repoDir string) (*Outcome, error) {
	maxIter := l.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	fix := &pipeline.Fix{LLM: l.LLM}
	out := &Outcome{Manifest: m}

	for i := 1; i <= maxIter; i++ {
		out.Iterations = i
		if err := l.saveCandidate(ctx, i, out.Manifest); err != nil {
			return nil, err
		}

		res, err := l.Oracle.Test(ctx, out.Manifest, repoDir)
		if err != nil {
			return nil, fmt.Errorf("oracle attempt %d: %w", i, err)
		}
		out.LastOutput = res.Output
		if res.Passed {
			out.Passed = true
			return out, nil
		}
		log.Printf("validate %s: attempt %d/%d failed", out.Manifest.Name, i, maxIter)
		if i == maxIter {
			break
		}

		raw, err := manifest.EncodeYAML(out.Manifest)
		if err != nil {
			return nil, err
		}
		repaired, err := fix.Run(ctx, artifact.FixIn{
			Repo:      out.Manifest.Repository,
			Analysis:  l.Analysis,
			Manifest:  string(raw),
			Error:     res.Output,
			Iteration: i,
		})
		if err != nil {
			// Keep the last descriptor that validated rather than losing the run.
			log.Printf("validate %s: fix agent gave up: %v", out.Manifest.Name, err)
			return out, nil
		}
		out.Manifest = repaired
	}
	return out, nil
}

func (l *Loop) saveCandidate(ctx context.Context, iteration int, m *manifest.Manifest) error {
	if l.Store == nil {
		return nil
	}
	raw, err := manifest.EncodeYAML(m)
	if err != nil {
		return err
	}
	return l.Store.Put(ctx, l.RunID, fmt.Sprintf("candidates/%04d.yaml", iteration), raw)
}
