// Package catalog persists generated descriptors. With CATALOG_PG_DSN set it
// uses Postgres and keeps a small LRU of decoded entries; otherwise entries
// live in a single JSON file, which is enough for local batch runs.
package catalog

import (
	"os"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is one cataloged descriptor.
type Entry struct {
	Name       string    `json:"name"`
	Repository string    `json:"repository"`
	Manifest   string    `json:"manifest"` // descriptor YAML
	Passed     bool      `json:"passed"`   // oracle verdict at generation time
	Iterations int       `json:"iterations"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Store struct {
	path string
	db   *pgBackend

	loadOnce sync.Once
	mu       sync.RWMutex
	byName   map[string]Entry

	cache *lru.Cache[string, Entry]
}

// New creates a file-backed store at path.
func New(path string) *Store {
	return &Store{
		path:   path,
		byName: make(map[string]Entry),
	}
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := openPG(dsn)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, Entry](1024)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv prefers CATALOG_PG_DSN and falls back to the file store.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("CATALOG_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put inserts or replaces an entry keyed by name.
func (s *Store) Put(e Entry) error {
	e.UpdatedAt = time.Now().UTC()
	if s.db != nil {
		if err := s.db.put(e); err != nil {
			return err
		}
		s.cache.Remove(e.Name)
		return nil
	}
	s.ensureLoadedFile()
	s.mu.Lock()
	s.byName[e.Name] = e
	s.mu.Unlock()
	return s.saveFile()
}

// Get returns the entry for name.
func (s *Store) Get(name string) (Entry, bool, error) {
	if s.db != nil {
		if e, ok := s.cache.Get(name); ok {
			return e, true, nil
		}
		e, ok, err := s.db.get(name)
		if err == nil && ok {
			s.cache.Add(name, e)
		}
		return e, ok, err
	}
	s.ensureLoadedFile()
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byName[name]
	return e, ok, nil
}

// List returns all entries sorted by name.
func (s *Store) List() ([]Entry, error) {
	if s.db != nil {
		return s.db.list()
	}
	s.ensureLoadedFile()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedEntries(s.byName), nil
}
