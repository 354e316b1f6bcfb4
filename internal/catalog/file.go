package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		raw, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var entries []Entry
		if json.Unmarshal(raw, &entries) != nil {
			return
		}
		s.mu.Lock()
		for _, e := range entries {
			s.byName[e.Name] = e
		}
		s.mu.Unlock()
	})
}

func (s *Store) saveFile() error {
	s.mu.RLock()
	entries := sortedEntries(s.byName)
	s.mu.RUnlock()

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func sortedEntries(byName map[string]Entry) []Entry {
	out := make([]Entry, 0, len(byName))
	for _, e := range byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
