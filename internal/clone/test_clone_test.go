package clone

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mcpforge/internal/tester"
)

// initFixtureRepo builds a one-commit repository on disk to clone from.
func initFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	tester.NoErr(t, err)
	tester.NoErr(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# fixture\n"), 0o644))
	wt, err := repo.Worktree()
	tester.NoErr(t, err)
	_, err = wt.Add("README.md")
	tester.NoErr(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "fixture", Email: "fixture@example.com"},
	})
	tester.NoErr(t, err)
	return dir
}

func TestClone_DefaultBranch(t *testing.T) {
	src := initFixtureRepo(t)
	dst := filepath.Join(t.TempDir(), "work")

	res, err := Clone(context.Background(), dst, Options{URL: src})
	tester.NoErr(t, err)
	tester.Eq(t, res.Dir, dst)
	tester.True(t, res.Branch != "")

	_, err = os.Stat(filepath.Join(dst, "README.md"))
	tester.NoErr(t, err)
}

func TestBranchName_DetachedHead(t *testing.T) {
	hash := plumbing.NewHash("0123456789abcdef0123456789abcdef01234567")

	detached := plumbing.NewHashReference(plumbing.HEAD, hash)
	tester.Eq(t, branchName(detached), "0123456")

	onBranch := plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), hash)
	tester.Eq(t, branchName(onBranch), "main")
}

func TestClone_MissingURL(t *testing.T) {
	_, err := Clone(context.Background(), t.TempDir(), Options{})
	tester.ErrContains(t, err, "URL is required")
}

func TestRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	tester.NoErr(t, os.MkdirAll(dir, 0o755))
	tester.NoErr(t, Remove(dir))
	_, err := os.Stat(dir)
	tester.True(t, os.IsNotExist(err))
}
