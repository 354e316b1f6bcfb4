package artifact

import (
	"context"
	"testing"

	"mcpforge/internal/tester"
)

func TestMemoryStore_PutGetList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tester.NoErr(t, s.Put(ctx, "run1", "sections/metadata.json", []byte(`{"name":"a"}`)))
	tester.NoErr(t, s.Put(ctx, "run1", "sections/source.json", []byte(`{"language":"go"}`)))
	tester.NoErr(t, s.Put(ctx, "run2", "sections/metadata.json", []byte(`{"name":"b"}`)))

	raw, err := s.Get(ctx, "run1", "sections/metadata.json")
	tester.NoErr(t, err)
	tester.Eq(t, string(raw), `{"name":"a"}`)

	paths, err := s.List(ctx, "run1")
	tester.NoErr(t, err)
	tester.Eq(t, paths, []string{"sections/metadata.json", "sections/source.json"})
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "run1", "nope.json")
	tester.Eq(t, err, ErrNotFound)
}

func TestMemoryStore_RejectsEmptyKey(t *testing.T) {
	s := NewMemoryStore()
	tester.ErrContains(t, s.Put(context.Background(), "", "a.json", nil), "run id")
	tester.ErrContains(t, s.Put(context.Background(), "run1", "", nil), "path")
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tester.NoErr(t, s.Put(ctx, "run1", "build.json", []byte(`{}`)))
	tester.NoErr(t, s.Delete(ctx, "run1", "build.json"))
	_, err := s.Get(ctx, "run1", "build.json")
	tester.Eq(t, err, ErrNotFound)

	// Deleting what is already gone is fine.
	tester.NoErr(t, s.Delete(ctx, "run1", "build.json"))
}

func TestDiskStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	tester.NoErr(t, err)

	tester.NoErr(t, s.Put(ctx, "run1", "candidates/0001.yaml", []byte("name: a\n")))
	raw, err := s.Get(ctx, "run1", "candidates/0001.yaml")
	tester.NoErr(t, err)
	tester.Eq(t, string(raw), "name: a\n")

	paths, err := s.List(ctx, "run1")
	tester.NoErr(t, err)
	tester.Eq(t, paths, []string{"candidates/0001.yaml"})
}

func TestDiskStore_ListMissingRun(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	tester.NoErr(t, err)
	paths, err := s.List(context.Background(), "never-ran")
	tester.NoErr(t, err)
	tester.Eq(t, len(paths), 0)
}

func TestDiskStore_GetMissing(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	tester.NoErr(t, err)
	_, err = s.Get(context.Background(), "run1", "nope.json")
	tester.Eq(t, err, ErrNotFound)
}

func TestDiskStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	tester.NoErr(t, err)

	tester.NoErr(t, s.Put(ctx, "run1", "build.json", []byte(`{}`)))
	tester.NoErr(t, s.Delete(ctx, "run1", "build.json"))
	_, err = s.Get(ctx, "run1", "build.json")
	tester.Eq(t, err, ErrNotFound)
	tester.NoErr(t, s.Delete(ctx, "run1", "build.json"))
}
