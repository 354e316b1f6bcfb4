// Package clone fetches repositories for analysis.
package clone

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Options controls a clone.
type Options struct {
	URL    string
	Branch string // empty means remote default
	Depth  int    // 0 means full history
}

// Result reports where the repository landed and which branch was checked out.
type Result struct {
	Dir    string
	Branch string
}

// Clone fetches opts.URL into dir. When no branch is given the remote's
// default branch is used and reported back.
func Clone(ctx context.Context, dir string, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("clone: repository URL is required")
	}
	cloneOpts := &git.CloneOptions{
		URL:   opts.URL,
		Depth: opts.Depth,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", opts.URL, err)
	}

	branch := opts.Branch
	if branch == "" {
		head, err := repo.Head()
		if err != nil {
			return nil, fmt.Errorf("resolve HEAD of %s: %w", opts.URL, err)
		}
		branch = branchName(head)
	}
	return &Result{Dir: dir, Branch: branch}, nil
}

// branchName names the checked-out revision. A detached HEAD has no branch,
// so the short commit hash stands in.
func branchName(head *plumbing.Reference) string {
	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return head.Hash().String()[:7]
}

// Remove deletes a previously cloned working tree.
func Remove(dir string) error {
	return os.RemoveAll(dir)
}
