package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcpforge/internal/tester"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	tester.NoErr(t, os.MkdirAll(filepath.Dir(p), 0o755))
	tester.NoErr(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestAnalyze_NodeRepo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{
  "name": "@example/server",
  "main": "dist/index.js",
  "scripts": {"build": "tsc", "start": "node dist/index.js"},
  "dependencies": {"@modelcontextprotocol/sdk": "^1.0.0"}
}`)
	writeFile(t, root, "src/index.ts", "export {}\n")
	writeFile(t, root, "README.md", "# Example\n\n![logo](logo.png)\n\nUsage notes.")
	tester.NoErr(t, os.MkdirAll(filepath.Join(root, "node_modules", "junk"), 0o755))
	tester.NoErr(t, os.MkdirAll(filepath.Join(root, "dist"), 0o755))

	a, err := Analyze(root)
	tester.NoErr(t, err)
	tester.Eq(t, a.Language, "typescript")
	tester.Eq(t, a.PackageJSON.Name, "@example/server")
	tester.Eq(t, a.PackageJSON.Scripts["build"], "tsc")
	tester.Eq(t, a.BuildDirs, []string{"dist"})
	tester.True(t, strings.Contains(a.ReadmeSnippet, "Usage notes."))
	tester.False(t, strings.Contains(a.ReadmeSnippet, "logo.png"))
	for _, f := range a.Files {
		tester.False(t, strings.HasPrefix(f.Path, "node_modules/"), f.Path)
	}
}

func TestAnalyze_SkipsBuildOutputContents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"srv"}`)
	writeFile(t, root, "dist/index.js", "generated\n")
	writeFile(t, root, "dist/chunk.js", "generated\n")

	a, err := Analyze(root)
	tester.NoErr(t, err)
	tester.Eq(t, a.BuildDirs, []string{"dist"})
	for _, f := range a.Files {
		tester.False(t, strings.HasPrefix(f.Path, "dist/"), f.Path)
	}
}

func TestAnalyze_ReadmeFallbacks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README", "plain readme text")
	writeFile(t, root, "main.py", "x = 1\n")

	a, err := Analyze(root)
	tester.NoErr(t, err)
	tester.Eq(t, a.ReadmeSnippet, "plain readme text")

	// A README.md wins over a bare README regardless of walk order.
	writeFile(t, root, "README.md", "# markdown readme")
	a, err = Analyze(root)
	tester.NoErr(t, err)
	tester.Eq(t, a.ReadmeSnippet, "# markdown readme")
}

func TestAnalyze_PythonRepo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", "mcp>=1.0\n# comment\n\nhttpx\n")
	writeFile(t, root, "server.py", "print('hi')\n")

	a, err := Analyze(root)
	tester.NoErr(t, err)
	tester.Eq(t, a.Language, "python")
	tester.Eq(t, a.Requirements, []string{"mcp>=1.0", "httpx"})
}

func TestAnalyze_GoRepo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/server\n\ngo 1.22\n")
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "Dockerfile", "FROM golang:1.22\n")

	a, err := Analyze(root)
	tester.NoErr(t, err)
	tester.Eq(t, a.Language, "go")
	tester.Eq(t, a.GoModule, "example.com/server")
	tester.True(t, a.HasDockerfile)
}

func TestAnalyze_LanguageFallbackByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1\n")
	writeFile(t, root, "b.py", "y = 2\n")
	writeFile(t, root, "notes.txt", "text\n")

	a, err := Analyze(root)
	tester.NoErr(t, err)
	tester.Eq(t, a.Language, "python")
}

func TestFormat_ContainsKeyFacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"srv","scripts":{"build":"tsc"}}`)
	writeFile(t, root, "index.js", "")

	a, err := Analyze(root)
	tester.NoErr(t, err)
	out := a.Format()
	tester.True(t, strings.Contains(out, "package.json name: srv"))
	tester.True(t, strings.Contains(out, "build: tsc"))
	tester.True(t, strings.Contains(out, "index.js"))
}
