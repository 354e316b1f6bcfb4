package artifact

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mcpforge/internal/safeio"
)

// DiskStore persists artifacts as files under a root directory, one
// subdirectory per run. All IO goes through a root-locked SafeFS.
type DiskStore struct {
	fs *safeio.SafeFS
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	sfs, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, err
	}
	return &DiskStore{fs: sfs}, nil
}

func (s *DiskStore) Put(_ context.Context, runID, path string, content []byte) error {
	key, err := validateKey(runID, path)
	if err != nil {
		return err
	}
	return s.fs.WriteFile(key, content)
}

func (s *DiskStore) Get(_ context.Context, runID, path string) ([]byte, error) {
	key, err := validateKey(runID, path)
	if err != nil {
		return nil, err
	}
	raw, err := s.fs.ReadFile(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (s *DiskStore) Delete(_ context.Context, runID, path string) error {
	key, err := validateKey(runID, path)
	if err != nil {
		return err
	}
	return s.fs.Remove(key)
}

func (s *DiskStore) List(_ context.Context, runID string) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, ErrNotFound
	}
	var paths []string
	err := s.fs.Walk(runID, func(rel string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
