package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"mcpforge/internal/manifest"
)

// ScriptOracle delegates the verdict to an external command, e.g. a docker
// based harness. The descriptor is written to a temp file and its path is
// passed via MCPFORGE_MANIFEST; the repo dir via MCPFORGE_REPO. Exit code
// zero is a pass.
type ScriptOracle struct {
	Command string
	Timeout time.Duration
}

func (o *ScriptOracle) Test(ctx context.Context, m *manifest.Manifest, repoDir string) (*Result, error) {
	raw, err := manifest.EncodeYAML(m)
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "mcpforge-oracle-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	manifestPath := filepath.Join(dir, "manifest.yaml")
	if err := os.WriteFile(manifestPath, raw, 0o644); err != nil {
		return nil, err
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", o.Command)
	cmd.Dir = repoDir
	cmd.Env = append(os.Environ(),
		"MCPFORGE_MANIFEST="+manifestPath,
		"MCPFORGE_REPO="+repoDir,
	)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return &Result{Output: fmt.Sprintf("oracle command timed out after %s\n%s", timeout, truncate(buf.String()))}, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return &Result{Output: truncate(buf.String())}, nil
		}
		return nil, runErr
	}
	return &Result{Passed: true, Output: truncate(buf.String())}, nil
}
