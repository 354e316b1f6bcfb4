package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mcpforge/internal/manifest"
)

// ExecOracle runs the descriptor's install, build and entrypoint steps as
// real subprocesses. A step that exits non-zero fails the descriptor; the
// entrypoint passes if the server is still alive after StartupGrace.
type ExecOracle struct {
	StepTimeout  time.Duration // per install/build step
	StartupGrace time.Duration // how long the entrypoint must stay alive
}

func NewExecOracle() *ExecOracle {
	return &ExecOracle{
		StepTimeout:  5 * time.Minute,
		StartupGrace: 10 * time.Second,
	}
}

func (o *ExecOracle) Test(ctx context.Context, m *manifest.Manifest, repoDir string) (*Result, error) {
	workDir := repoDir
	if m.Path != "" {
		workDir = filepath.Join(repoDir, filepath.FromSlash(m.Path))
	}
	env := mergedEnv(m)

	if m.InstallCommand != "" {
		if res, err := o.runStep(ctx, "install", m.InstallCommand, workDir, env); err != nil || !res.Passed {
			return res, err
		}
	}
	if m.Build != nil && m.Build.Command != "" {
		if res, err := o.runStep(ctx, "build", m.Build.Command, workDir, env); err != nil || !res.Passed {
			return res, err
		}
	}
	return o.probeEntrypoint(ctx, m, workDir, env)
}

func (o *ExecOracle) runStep(ctx context.Context, step, command, dir string, env []string) (*Result, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.StepTimeout)
	defer cancel()

	cmd := exec.CommandContext(stepCtx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = env
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if stepCtx.Err() == context.DeadlineExceeded {
		return &Result{Output: fmt.Sprintf("%s step timed out after %s\n%s", step, o.StepTimeout, truncate(buf.String()))}, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{Output: fmt.Sprintf("%s step failed (%s): %s\n%s", step, command, exitErr, truncate(buf.String()))}, nil
		}
		return nil, fmt.Errorf("%s step: %w", step, err)
	}
	return &Result{Passed: true, Output: truncate(buf.String())}, nil
}

// probeEntrypoint starts the server and treats surviving the grace period as
// a pass. MCP servers block on stdio, so a clean long-running process is the
// success signal, not exit code zero.
func (o *ExecOracle) probeEntrypoint(ctx context.Context, m *manifest.Manifest, dir string, env []string) (*Result, error) {
	cmd := exec.CommandContext(ctx, m.Entrypoint.Command, m.Entrypoint.Args...)
	cmd.Dir = dir
	cmd.Env = env
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return &Result{Output: fmt.Sprintf("entrypoint failed to start (%s): %v", m.Entrypoint.Command, err)}, nil
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		stdin.Close()
		if err != nil {
			return &Result{Output: fmt.Sprintf("entrypoint exited early: %v\n%s", err, truncate(buf.String()))}, nil
		}
		// Exiting zero immediately still means the server never served.
		return &Result{Output: fmt.Sprintf("entrypoint exited immediately\n%s", truncate(buf.String()))}, nil
	case <-time.After(o.StartupGrace):
		stdin.Close()
		_ = cmd.Process.Kill()
		<-done
		return &Result{Passed: true, Output: truncate(buf.String())}, nil
	case <-ctx.Done():
		stdin.Close()
		_ = cmd.Process.Kill()
		<-done
		return nil, ctx.Err()
	}
}

func mergedEnv(m *manifest.Manifest) []string {
	env := os.Environ()
	for k, v := range PlaceholderEnv(m.Config) {
		env = append(env, k+"="+v)
	}
	for k, v := range m.Env {
		env = append(env, k+"="+v)
	}
	return env
}

const maxOutput = 8192

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutput {
		return s[len(s)-maxOutput:]
	}
	return s
}
